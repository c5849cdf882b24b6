package fileurl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstExist(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(present, []byte("a: 1"), 0o600))

	assert.Equal(t, present, FirstExist(filepath.Join(dir, "missing.yaml"), "", present))
	assert.Empty(t, FirstExist(filepath.Join(dir, "missing.yaml")))
	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(present))
}

func TestWriteNew(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "config", "config.yaml")

	require.NoError(t, WriteNew(dst, []byte("server: {}"), 0o600))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "server: {}", string(b))

	// 已存在的文件不会被覆盖
	err = WriteNew(dst, []byte("other"), 0o600)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestGetExePath(t *testing.T) {
	assert.True(t, IsDir(GetExePath()))
}
