package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Snapshot watcher: detect writes, renames and new files; coalesce bursts;
// ignore siblings; stop cleanly.
// =============================================================================

const testDebounce = 30 * time.Millisecond

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, path string) <-chan string {
	t.Helper()
	w, err := NewWatcher(testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(path, func(p string) { changed <- p }))
	time.Sleep(50 * time.Millisecond)
	return changed
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snap, []byte("{}"), 0644))

	changed := startWatcher(t, snap)
	require.NoError(t, os.WriteFile(snap, []byte(`{"tabs":[]}`), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for write")
	assert.Equal(t, snap, path)
}

func TestWatcher_FileCreatedLater(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")

	changed := startWatcher(t, snap)
	require.NoError(t, os.WriteFile(snap, []byte("{}"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for create")
	assert.Equal(t, snap, path)
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snap, []byte("{}"), 0644))

	changed := startWatcher(t, snap)
	tmp := filepath.Join(dir, "snapshot.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"tabs":[]}`), 0644))
	require.NoError(t, os.Rename(tmp, snap))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for rename onto target")
	assert.Equal(t, snap, path)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")

	changed := startWatcher(t, snap)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "sibling files must not trigger")
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snap, []byte("{}"), 0644))

	w, err := NewWatcher(200 * time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	calls := 0
	require.NoError(t, w.Watch(snap, func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(snap, []byte("{}"), 0644))
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(600 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()
	snap := filepath.Join(dir, "snapshot.json")

	w, err := NewWatcher(testDebounce)
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	require.NoError(t, w.Watch(snap, func(string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Stop())

	os.WriteFile(snap, []byte("{}"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 0, callCount, "callbacks fired after Stop()")
	mu.Unlock()

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}
