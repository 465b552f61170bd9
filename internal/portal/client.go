package portal

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/pkg/errors"
)

// Payload is the data response for a single portal item: the
// server-suggested filename and the raw response body. The caller owns Body
// and must close it.
type Payload struct {
	ItemID   string
	Filename string
	Body     io.ReadCloser
}

// Client downloads portal item data over HTTP.
type Client struct {
	BaseURL   string
	UserAgent string

	client *http.Client
}

// NewClient returns a client for the portal at base. A nil httpClient means
// http.DefaultClient.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: base, client: httpClient}
}

// Get fetches the data payload for one portal item. The request is bound to
// ctx, so cancelling ctx aborts an in-flight transfer.
func (c *Client) Get(ctx context.Context, itemID string) (*Payload, error) {
	u := ItemDataURL(c.BaseURL, itemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "http.NewRequest")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch item %v", itemID)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Errorf("fetch item %v: unexpected status %v", itemID, resp.Status)
	}

	return &Payload{
		ItemID:   itemID,
		Filename: suggestedFilename(resp),
		Body:     resp.Body,
	}, nil
}

// suggestedFilename extracts the server-suggested filename from the
// Content-Disposition header, falling back to the last URL path segment.
func suggestedFilename(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return path.Base(name)
			}
		}
	}
	return path.Base(resp.Request.URL.Path)
}
