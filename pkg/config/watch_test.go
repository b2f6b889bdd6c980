package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/nodegraph/pkg/log"
)

// waitFor rewrites path with data until a reload with the wanted node
// size arrives. The watch may not be installed on the first write.
func waitFor(t *testing.T, path, data string, size float64, got <-chan File) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	for {
		select {
		case f := <-got:
			if f.Node.Size == size {
				return
			}
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(data), 0644))
		case <-deadline:
			t.Fatalf("no reload with node size %v", size)
		}
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodegraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("node:\n  size: 20\n"), 0644))

	ctx, cancel := context.WithCancel(log.Discard(context.Background()))
	got := make(chan File, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(f File) { got <- f })
	}()

	waitFor(t, path, "node:\n  size: 30\n", 30, got)

	// A broken file is skipped and the next good one still arrives.
	require.NoError(t, os.WriteFile(path, []byte("node: ["), 0644))
	waitFor(t, path, "node:\n  size: 40\n", 40, got)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "x.yaml"), func(File) {})
	assert.Error(t, err)
}
