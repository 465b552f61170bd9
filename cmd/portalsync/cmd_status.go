package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/markyjordan/portalsync/internal/cache"
	"github.com/markyjordan/portalsync/internal/fs"
	"github.com/markyjordan/portalsync/internal/samples"
	"github.com/spf13/cobra"
)

var cmdStatus = &cobra.Command{
	Use:   "status SAMPLES_DIR DOWNLOAD_DIR",
	Short: "Show the download state of every declared item",
	Long: `
The "status" command scans SAMPLES_DIR like "sync" does, but performs no
downloads. For each unique portal item it prints one of:

  cached   the item directory exists and the cache manifest records it
  present  the item directory exists but the cache manifest has no entry
  missing  the cache manifest records the item but its directory is gone
  pending  the item would be downloaded by the next "sync"

EXIT STATUS
===========

Exit status is 0 if the command was successful, and 1 if there was any error.
`,
	DisableAutoGenTag: true,
	Args:              cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	cmdRoot.AddCommand(cmdStatus)
}

func runStatus(w io.Writer, samplesDir, downloadDir string) error {
	ids, err := samples.Scan(samplesDir)
	if err != nil {
		return err
	}

	manifest := cache.NewStore(downloadDir).Load()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		exists := fs.DirExists(filepath.Join(downloadDir, id))
		switch {
		case exists && manifest[id] != "":
			fmt.Fprintf(w, "%s  cached   %s\n", id, manifest[id])
		case exists:
			fmt.Fprintf(w, "%s  present\n", id)
		case manifest[id] != "":
			fmt.Fprintf(w, "%s  missing  %s\n", id, manifest[id])
		default:
			fmt.Fprintf(w, "%s  pending\n", id)
		}
	}

	return nil
}
