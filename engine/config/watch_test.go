package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ring.toml")
	require.NoError(t, os.WriteFile(path, []byte("view = \"showroom\"\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	var width atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) {
			// A truncated file decodes as the default view; only count complete documents.
			if cfg.View == ViewShowroom {
				width.Store(int64(cfg.Width))
			}
		})
	}()

	// Keep writing until the watcher is up and has seen one.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("view = \"showroom\"\nwidth = 640\n"), 0o644)
		return width.Load() == 640
	}, 5*time.Second, 20*time.Millisecond)

	// Invalid documents are skipped, the previous value stays.
	require.NoError(t, os.WriteFile(path, []byte("view = \"nope\"\n"), 0o644))
	// Other files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("view = \"showroom\"\nwidth = 1\n"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(640), width.Load())

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), fmt.Sprint(err))
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "ring.toml"), func(*Config) {})
	assert.Error(t, err)
}
