package mocks

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_ReadWrite(t *testing.T) {
	fs := NewFileSystem()

	_, err := fs.ReadFile("/home/dev/.gitconfig")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, fs.WriteFile("/home/dev/.ssh/id_ed25519", []byte("key"), 0o600))

	data, err := fs.ReadFile("/home/dev/.ssh/id_ed25519")
	require.NoError(t, err)
	assert.Equal(t, "key", string(data))
	assert.Equal(t, "key", fs.Content("/home/dev/.ssh/id_ed25519"))

	mode, ok := fs.Mode("/home/dev/.ssh/id_ed25519")
	require.True(t, ok)
	assert.Equal(t, os.FileMode(0o600), mode)
	assert.True(t, fs.IsDir("/home/dev/.ssh"))
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/etc/wsl.conf", "[boot]\nsystemd=true\n")
	fs.AddDir("/mnt/c")

	assert.True(t, fs.Exists("/etc/wsl.conf"))
	assert.True(t, fs.Exists("/mnt/c"))
	assert.False(t, fs.IsDir("/etc/wsl.conf"))

	require.NoError(t, fs.Remove("/etc/wsl.conf"))
	assert.False(t, fs.Exists("/etc/wsl.conf"))
}

func TestFileSystem_ReadFileReturnsCopy(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/tmp/a", "abc")

	data, err := fs.ReadFile("/tmp/a")
	require.NoError(t, err)
	data[0] = 'x'

	assert.Equal(t, "abc", fs.Content("/tmp/a"))
}

func TestFileSystem_Reset(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/tmp/a", "abc")
	require.NoError(t, fs.MkdirAll("/tmp/b", 0o755))

	fs.Reset()

	assert.False(t, fs.Exists("/tmp/a"))
	assert.False(t, fs.Exists("/tmp/b"))
}
