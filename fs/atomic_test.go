package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tunedl/fs"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cover.jpeg")

	require.NoError(t, fs.WriteFileAtomic(path, []byte("first")))
	require.NoError(t, fs.WriteFileAtomic(path, []byte("second")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files must be left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	err := fs.WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "cover.jpeg"), []byte("x"))
	require.Error(t, err)
}

func TestCoverRoundTrip(t *testing.T) {
	t.Parallel()

	cover := fs.DirFrom(t.TempDir()).Cover("Abbey Road")
	require.NoError(t, cover.Write([]byte{0xff, 0xd8, 0xff}))

	exists, err := cover.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	b, err := os.ReadFile(cover.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, b)
}

func TestRemovePartKeepsOtherWriters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dest := filepath.Join(dir, "Song [Live].mp3")
	mine := fs.PartPath(dest, "4f7c2f0e-6c0a-4d3b-9a57-2f1a0f1f9a01")
	other := fs.PartPath(dest, "9b1d6e4a-2c3f-4b8e-8f0d-7e5c1a2b3c4d")

	require.NoError(t, os.WriteFile(mine+".mp3", []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(mine+".webm.part", []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(other+".mp3", []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0o600))

	require.NoError(t, fs.RemovePart(mine))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Song [Live].mp3", filepath.Base(other) + ".mp3"}, names)
}
