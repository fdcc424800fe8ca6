package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDeliversDebouncedBurst(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	want := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc-%d.pdf", i))
		require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
		want[path] = struct{}{}
	}

	got := map[string]struct{}{}
	deadline := time.After(5 * time.Second)
	for len(got) < len(want) {
		select {
		case p := <-events:
			got[p] = struct{}{}
		case <-deadline:
			t.Fatalf("timed out, received %d of %d events", len(got), len(want))
		}
	}
	assert.Equal(t, want, got)
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}
