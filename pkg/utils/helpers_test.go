package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInSlice(t *testing.T) {
	assert.True(t, InSlice("b", []string{"a", "b"}))
	assert.False(t, InSlice("c", []string{"a", "b"}))
	assert.False(t, InSlice("a", nil))
}

func TestListDirSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_60.jpg", "frame_0.jpg", "frame_30.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	names, err := ListDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"frame_0.jpg", "frame_30.jpg", "frame_60.jpg"}, names)

	_, err = ListDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSafeJoin(t *testing.T) {
	p, err := SafeJoin("/data", "frame_0.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "frame_0.jpg"), p)

	for _, bad := range []string{"", "../etc/passwd", "a/b", ".."} {
		_, err := SafeJoin("/data", bad)
		assert.Error(t, err, bad)
	}
}
