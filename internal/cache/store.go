package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/markyjordan/portalsync/internal/fs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ManifestFile is the name of the persisted cache manifest inside the
// download directory.
const ManifestFile = "downloaded_items.json"

// Store persists the cache manifest at a well-known path inside the download
// directory.
type Store struct {
	path string
}

// NewStore returns a store rooted at downloadDir.
func NewStore(downloadDir string) *Store {
	return &Store{path: filepath.Join(downloadDir, ManifestFile)}
}

// Path returns the location of the manifest file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted manifest. A missing or unparsable file is not an
// error: the run proceeds as if nothing had been downloaded before.
func (s *Store) Load() Manifest {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("unable to read cache manifest %v: %v", s.path, err)
		}
		return Manifest{}
	}

	m := Manifest{}
	if err := json.Unmarshal(buf, &m); err != nil {
		log.Warnf("ignoring corrupt cache manifest %v: %v", s.path, err)
		return Manifest{}
	}

	return m
}

// Save atomically rewrites the manifest file with m: the new content is
// written to a temporary file in the same directory and renamed over the old
// manifest, so a crashed run never leaves a half-written manifest behind.
func (s *Store) Save(m Manifest) error {
	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	tmp, err := fs.TempFile(filepath.Dir(s.path), "manifest-")
	if err != nil {
		return errors.Wrap(err, "TempFile")
	}

	if _, err := tmp.Write(append(buf, '\n')); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmp.Name())
		return errors.Wrap(err, "Write")
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrap(err, "Close")
	}

	if err := fs.Rename(tmp.Name(), s.path); err != nil {
		_ = fs.Remove(tmp.Name())
		return errors.Wrap(err, "Rename")
	}

	return nil
}
