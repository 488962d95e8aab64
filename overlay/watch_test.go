package overlay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.png")
	other := filepath.Join(dir, "other.png")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	changed := make(chan string, 16)
	w, err := Watch(path, func(p string) { changed <- p }, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, w.Close()) }()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

	select {
	case got := <-changed:
		assert.Equal(t, w.Path(), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification for overlay file")
	}
}

func TestWatchCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "o.png")
	w, err := Watch(path, func(string) {}, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
