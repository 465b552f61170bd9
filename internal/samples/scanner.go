package samples

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MetadataFile is the fixed name of the per-sample metadata file.
const MetadataFile = "README.metadata.json"

// DependencyManifest is the subset of a sample's metadata file read by this
// tool: the portal item IDs the sample needs locally to run offline.
type DependencyManifest struct {
	OfflineData []string `json:"offline_data"`
}

// Scan enumerates the immediate subdirectories of root, skipping hidden
// entries, and collects the portal item IDs declared by each sample's
// metadata file. A sample with a missing or malformed metadata file
// contributes no IDs. The returned slice preserves directory order and may
// contain duplicates; an unreadable root is an error.
func Scan(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list samples directory %v", root)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		m, err := readManifest(filepath.Join(root, entry.Name(), MetadataFile))
		if err != nil {
			log.Debugf("skipping sample %v: %v", entry.Name(), err)
			continue
		}
		ids = append(ids, m.OfflineData...)
	}

	return ids, nil
}

func readManifest(path string) (*DependencyManifest, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "ReadFile")
	}

	m := &DependencyManifest{}
	if err := json.Unmarshal(buf, m); err != nil {
		return nil, errors.Wrap(err, "json.Unmarshal")
	}

	return m, nil
}
