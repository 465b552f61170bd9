package fetch

import (
	"context"
	"encoding/hex"
	"io"
	"path/filepath"
	"sync"

	"github.com/markyjordan/portalsync/internal/cache"
	"github.com/markyjordan/portalsync/internal/fs"
	"github.com/markyjordan/portalsync/internal/portal"
	sha256 "github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Getter fetches the data payload of a single portal item.
type Getter interface {
	Get(ctx context.Context, itemID string) (*portal.Payload, error)
}

// Fetcher downloads portal items into per-item directories under a download
// directory, accumulating the canonical filename of each item in an
// in-memory manifest.
type Fetcher struct {
	getter Getter
	dir    string

	mu       sync.Mutex
	manifest cache.Manifest
}

// New returns a fetcher writing below downloadDir. loaded is the manifest
// state from the previous run; successful downloads are added on top of a
// copy of it.
func New(getter Getter, downloadDir string, loaded cache.Manifest) *Fetcher {
	return &Fetcher{getter: getter, dir: downloadDir, manifest: loaded.Clone()}
}

// Pending returns the unique IDs from ids that are recorded in neither the
// cache manifest nor on disk, in first-seen order. An existing destination
// directory counts as downloaded even when the manifest has no entry for it.
func (f *Fetcher) Pending(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var pending []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if name, ok := f.manifest[id]; ok {
			log.Debugf("item %v recorded in cache manifest as %v, skipping", id, name)
			continue
		}
		if fs.DirExists(filepath.Join(f.dir, id)) {
			log.Infof("item %v already downloaded, skipping", id)
			continue
		}
		pending = append(pending, id)
	}
	return pending
}

// Run downloads every pending item from ids concurrently and returns the
// resulting manifest. The first failing item cancels all in-flight siblings
// and its error is returned; the returned manifest must not be persisted in
// that case.
func (f *Fetcher) Run(ctx context.Context, ids []string) (cache.Manifest, error) {
	pending := f.Pending(ids)

	// Destination directories are created up front. A failure here points at
	// a systemic filesystem problem, not a per-item one.
	for _, id := range pending {
		if err := fs.Mkdir(filepath.Join(f.dir, id), 0755); err != nil {
			return f.snapshot(), errors.Wrapf(err, "unable to create directory for item %v", id)
		}
	}

	wg, wgCtx := errgroup.WithContext(ctx)
	for _, id := range pending {
		id := id
		wg.Go(func() error {
			return f.fetchOne(wgCtx, id)
		})
	}

	err := wg.Wait()
	return f.snapshot(), err
}

func (f *Fetcher) fetchOne(ctx context.Context, id string) error {
	log.Infof("downloading item %v", id)

	payload, err := f.getter.Get(ctx, id)
	if err != nil {
		return err
	}
	defer func() { _ = payload.Body.Close() }()

	destDir := filepath.Join(f.dir, id)

	tmp, err := fs.TempFile(destDir, ".download-")
	if err != nil {
		return errors.Wrap(err, "TempFile")
	}
	defer func() { _ = fs.RemoveIfExists(tmp.Name()) }()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), payload.Body)
	if err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "transfer of item %v", id)
	}

	name, err := materialize(tmp, size, payload.Filename, destDir)
	if err != nil {
		return errors.Wrapf(err, "item %v", id)
	}

	f.record(id, name)
	log.Infof("item %v done, name: %v, bytes: %d, sha256: %v",
		id, name, size, hex.EncodeToString(hash.Sum(nil)))
	return nil
}

func (f *Fetcher) record(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manifest[id] = name
}

func (f *Fetcher) snapshot() cache.Manifest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manifest.Clone()
}
