package portal

import "strings"

// DefaultBaseURL is the portal all sample data is hosted on.
const DefaultBaseURL = "https://www.arcgis.com"

// ItemDataURL returns the data download endpoint for the portal item with the
// given ID. Distinct IDs always map to distinct URLs.
func ItemDataURL(base, itemID string) string {
	return strings.TrimSuffix(base, "/") + "/sharing/rest/content/items/" + itemID + "/data"
}
