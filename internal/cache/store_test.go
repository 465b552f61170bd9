package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	require.Equal(t, Manifest{}, s.Load())
}

func TestStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("not json{"), 0644))

	s := NewStore(dir)
	require.Equal(t, Manifest{}, s.Load())
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	m := Manifest{"A1": "foo.tif", "A2": "data.zip"}
	require.NoError(t, s.Save(m))
	require.Equal(t, m, s.Load())

	// The atomic rewrite must not leave temporary files behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ManifestFile, entries[0].Name())
}

func TestStoreSaveReplacesPreviousManifest(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.Save(Manifest{"A1": "old.tif"}))
	require.NoError(t, s.Save(Manifest{"A1": "new.tif", "A2": "x.csv"}))
	require.Equal(t, Manifest{"A1": "new.tif", "A2": "x.csv"}, s.Load())
}

func TestManifestEqual(t *testing.T) {
	a := Manifest{"A1": "foo"}
	require.True(t, a.Equal(Manifest{"A1": "foo"}))
	require.False(t, a.Equal(Manifest{"A1": "bar"}))
	require.False(t, a.Equal(Manifest{}))
	require.False(t, a.Equal(Manifest{"A1": "foo", "A2": "bar"}))
	require.True(t, Manifest{}.Equal(Manifest{}))
}

func TestManifestCloneIsIndependent(t *testing.T) {
	a := Manifest{"A1": "foo"}
	b := a.Clone()
	b["A2"] = "bar"

	require.Equal(t, Manifest{"A1": "foo"}, a)
	require.Equal(t, Manifest{"A1": "foo", "A2": "bar"}, b)
}
