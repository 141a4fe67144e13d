package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/shardwallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, model.ErrIO)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = ReadFile(empty)
	assert.ErrorIs(t, err, model.ErrFormat)

	full := filepath.Join(dir, "full")
	require.NoError(t, os.WriteFile(full, []byte{1, 2, 3}, 0o600))
	data, err := ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wallet.key")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), false))
	assert.True(t, Exists(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = WriteFileAtomic(path, []byte("two"), false)
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	require.NoError(t, WriteFileAtomic(path, []byte("two"), true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "wallet.key"), []byte("x"), false)
	assert.ErrorIs(t, err, model.ErrIO)
}

func TestWriteFilesAtomic(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "w.key.1"), filepath.Join(dir, "w.key.2")}

	require.NoError(t, WriteFilesAtomic(paths, [][]byte{[]byte("a1"), []byte("a2")}, false))
	require.NoError(t, WriteFilesAtomic(paths, [][]byte{[]byte("b1"), []byte("b2")}, true))

	for i, want := range []string{"b1", "b2"} {
		data, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp or backup files left behind")

	err = WriteFilesAtomic(paths, [][]byte{[]byte("x")}, true)
	assert.Error(t, err)
}

func TestWriteFilesAtomic_RollsBackCreated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w.key.1")

	// the second publication of the same path fails after the first succeeded
	err := WriteFilesAtomic([]string{path, path}, [][]byte{[]byte("a"), []byte("b")}, false)
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.NoFileExists(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFilesAtomic_ForcedKeepsPreviousSet(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "w.key.1")
	second := filepath.Join(dir, "w.key.2")
	require.NoError(t, os.WriteFile(first, []byte("old"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(second, "child"), 0o700))

	err := WriteFilesAtomic([]string{first, second}, [][]byte{[]byte("new1"), []byte("new2")}, true)
	assert.ErrorIs(t, err, model.ErrIO)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.DirExists(t, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
