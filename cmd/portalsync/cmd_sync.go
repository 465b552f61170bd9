package main

import (
	"context"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/markyjordan/portalsync/internal/cache"
	"github.com/markyjordan/portalsync/internal/fetch"
	"github.com/markyjordan/portalsync/internal/fs"
	"github.com/markyjordan/portalsync/internal/portal"
	"github.com/markyjordan/portalsync/internal/samples"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cmdSync = &cobra.Command{
	Use:   "sync SAMPLES_DIR DOWNLOAD_DIR",
	Short: "Download the offline data declared by all samples",
	Long: `
The "sync" command scans SAMPLES_DIR for per-sample metadata files, downloads
every declared portal item that is not yet present under DOWNLOAD_DIR, and
updates the cache manifest.

EXIT STATUS
===========

Exit status is 0 if the command was successful (including when every item was
already downloaded), and 1 if there was any fatal error.
`,
	DisableAutoGenTag: true,
	Args:              cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), args[0], args[1], syncOptions)
	},
}

// SyncOptions bundles all options for the sync command.
type SyncOptions struct {
	PortalURL string
}

var syncOptions SyncOptions

func init() {
	cmdRoot.AddCommand(cmdSync)

	f := cmdSync.Flags()
	f.StringVar(&syncOptions.PortalURL, "portal", portal.DefaultBaseURL, "base URL of the portal hosting the item data")
}

// lockFile guards the download directory against concurrent runs.
const lockFile = ".portalsync.lock"

func runSync(ctx context.Context, samplesDir, downloadDir string, opts SyncOptions) error {
	if err := fs.MkdirAll(downloadDir, 0755); err != nil {
		return errors.Wrapf(err, "unable to create download directory %v", downloadDir)
	}

	lock := flock.New(filepath.Join(downloadDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, "unable to lock download directory")
	}
	if !locked {
		return errors.Errorf("download directory %v is locked by another run", downloadDir)
	}
	defer func() { _ = lock.Unlock() }()

	ids, err := samples.Scan(samplesDir)
	if err != nil {
		return err
	}
	log.Infof("found %d offline data declarations in %v", len(ids), samplesDir)

	store := cache.NewStore(downloadDir)
	loaded := store.Load()

	client := portal.NewClient(opts.PortalURL, nil)
	client.UserAgent = "portalsync/" + version

	f := fetch.New(client, downloadDir, loaded)
	final, err := f.Run(ctx, ids)
	if err != nil {
		return err
	}

	if final.Equal(loaded) {
		log.Infof("cache manifest unchanged")
		return nil
	}
	if err := store.Save(final); err != nil {
		return errors.Wrapf(err, "unable to write cache manifest %v", store.Path())
	}

	return nil
}
