package fetch

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/klauspost/compress/zip"
	"github.com/markyjordan/portalsync/internal/fs"
	"github.com/pkg/errors"
)

// materialize turns the downloaded bytes in tmp into their canonical layout
// under destDir and returns the canonical filename. Plain payloads are moved
// as-is under the server-suggested name. A single-entry archive collapses to
// its inner file; a multi-entry archive is extracted into a subdirectory
// named after the archive. Stale content at the target path is removed
// first. tmp is closed in all cases.
func materialize(tmp *os.File, size int64, suggested, destDir string) (string, error) {
	archive, err := isArchive(tmp, suggested)
	if err != nil {
		_ = tmp.Close()
		return "", err
	}

	if !archive {
		if err := tmp.Close(); err != nil {
			return "", errors.Wrap(err, "Close")
		}
		target := filepath.Join(destDir, suggested)
		if err := fs.RemoveIfExists(target); err != nil {
			return "", errors.Wrap(err, "RemoveIfExists")
		}
		if err := fs.Rename(tmp.Name(), target); err != nil {
			return "", errors.Wrap(err, "Rename")
		}
		return suggested, nil
	}

	defer func() { _ = tmp.Close() }()
	return unpack(tmp, size, suggested, destDir)
}

// isArchive classifies the payload by the suggested filename's extension.
// When the name carries no extension the first bytes of tmp are sniffed
// instead, so an archive served without a usable filename is still unpacked.
func isArchive(tmp *os.File, suggested string) (bool, error) {
	ext := filepath.Ext(suggested)
	if ext != "" {
		return strings.EqualFold(ext, ".zip"), nil
	}

	head := make([]byte, 262)
	n, err := tmp.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "ReadAt")
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false, errors.Wrap(err, "filetype.Match")
	}
	return kind.Extension == "zip", nil
}

func unpack(tmp *os.File, size int64, suggested, destDir string) (string, error) {
	zr, err := zip.NewReader(tmp, size)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read archive %v", suggested)
	}

	var files []*zip.File
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		files = append(files, entry)
	}

	switch len(files) {
	case 0:
		return "", errors.Errorf("archive %v contains no files", suggested)
	case 1:
		// The consumer sees the inner file, not the archive.
		name := path.Base(files[0].Name)
		target := filepath.Join(destDir, name)
		if err := fs.RemoveIfExists(target); err != nil {
			return "", errors.Wrap(err, "RemoveIfExists")
		}
		if err := extractEntry(files[0], target); err != nil {
			return "", err
		}
		return name, nil
	default:
		target := filepath.Join(destDir, suggested)
		if err := fs.RemoveIfExists(target); err != nil {
			return "", errors.Wrap(err, "RemoveIfExists")
		}
		if err := extractAll(zr, target); err != nil {
			return "", err
		}
		return suggested, nil
	}
}

func extractAll(zr *zip.Reader, target string) error {
	for _, entry := range zr.File {
		if !filepath.IsLocal(filepath.FromSlash(entry.Name)) {
			return errors.Errorf("archive entry %v has an illegal path", entry.Name)
		}

		dest := filepath.Join(target, filepath.FromSlash(entry.Name))
		if entry.FileInfo().IsDir() {
			if err := fs.MkdirAll(dest, 0755); err != nil {
				return errors.Wrap(err, "MkdirAll")
			}
			continue
		}

		if err := fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.Wrap(err, "MkdirAll")
		}
		if err := extractEntry(entry, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry *zip.File, dest string) error {
	rc, err := entry.Open()
	if err != nil {
		return errors.Wrapf(err, "unable to open archive entry %v", entry.Name)
	}
	defer func() { _ = rc.Close() }()

	out, err := fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "OpenFile")
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "unable to extract archive entry %v", entry.Name)
	}
	return errors.Wrap(out.Close(), "Close")
}
