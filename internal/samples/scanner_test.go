package samples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, root, name, metadata string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if metadata != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(metadata), 0644))
	}
}

func TestScanCollectsDeclaredItems(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "display-map", `{"offline_data": ["A1", "A2"]}`)
	writeSample(t, root, "show-route", `{"offline_data": ["A2"]}`)

	ids, err := Scan(root)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2", "A2"}, ids)
}

func TestScanSkipsMalformedMetadata(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, "good", `{"offline_data": ["A1"]}`)
	writeSample(t, root, "broken", `{"offline_data": [`)
	writeSample(t, root, "no-metadata", "")
	writeSample(t, root, "no-declarations", `{"title": "sample without offline data"}`)

	ids, err := Scan(root)
	require.NoError(t, err)
	require.Equal(t, []string{"A1"}, ids)
}

func TestScanSkipsHiddenAndNonDirectoryEntries(t *testing.T) {
	root := t.TempDir()
	writeSample(t, root, ".git", `{"offline_data": ["HIDDEN"]}`)
	writeSample(t, root, "visible", `{"offline_data": ["A1"]}`)
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0644))

	ids, err := Scan(root)
	require.NoError(t, err)
	require.Equal(t, []string{"A1"}, ids)
}

func TestScanFailsOnUnreadableRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
