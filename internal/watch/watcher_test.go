package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imgview/internal/errors"
	"imgview/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, debounce time.Duration) (*Watcher, chan string) {
	t.Helper()
	changes := make(chan string, 16)
	w, err := New(nil, debounce, func(dir string) { changes <- dir })
	require.NoError(t, err, "New watcher creation failed")
	t.Cleanup(w.Stop)
	return w, changes
}

func expectChange(t *testing.T, changes <-chan string, dir string) {
	t.Helper()
	select {
	case got := <-changes:
		assert.Equal(t, dir, got)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for directory change")
	}
}

func expectNoChange(t *testing.T, changes <-chan string, wait time.Duration) {
	t.Helper()
	select {
	case got := <-changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(wait):
	}
}

func TestWatcherReportsImageChanges(t *testing.T) {
	dir := t.TempDir()
	w, changes := newTestWatcher(t, 20*time.Millisecond)

	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	assert.Equal(t, dir, w.Directory())

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	testutils.CreateImageFiles(t, dir, "new.PNG")
	expectChange(t, changes, dir)

	require.NoError(t, os.Remove(filepath.Join(dir, "new.PNG")))
	expectChange(t, changes, dir)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, changes := newTestWatcher(t, 20*time.Millisecond)
	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())
	time.Sleep(100 * time.Millisecond)

	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"notes.txt": "hello"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.png"), 0755))
	expectNoChange(t, changes, 300*time.Millisecond)
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	w, changes := newTestWatcher(t, 250*time.Millisecond)
	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Start())
	time.Sleep(100 * time.Millisecond)

	testutils.CreateImageFiles(t, dir, "a.png", "b.gif", "c.bmp", "d.jpg")
	expectChange(t, changes, dir)
	expectNoChange(t, changes, 500*time.Millisecond)
}

func TestWatcherReplacesDirectory(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	w, changes := newTestWatcher(t, 20*time.Millisecond)

	require.NoError(t, w.Watch(first))
	require.NoError(t, w.Start())
	require.NoError(t, w.Watch(second))
	assert.Equal(t, second, w.Directory())
	time.Sleep(100 * time.Millisecond)

	testutils.CreateImageFiles(t, first, "old.png")
	expectNoChange(t, changes, 200*time.Millisecond)

	testutils.CreateImageFiles(t, second, "new.png")
	expectChange(t, changes, second)
}

func TestWatchErrors(t *testing.T) {
	w, _ := newTestWatcher(t, time.Millisecond)

	err := w.Watch(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.IsFileNotFound(err))

	file := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	err = w.Watch(file)
	assert.Equal(t, errors.InvalidPath, errors.KindOf(err))
}

func TestWatcherStop(t *testing.T) {
	w, _ := newTestWatcher(t, time.Millisecond)
	require.NoError(t, w.Start())
	assert.Error(t, w.Start(), "second Start should fail")

	w.Stop()
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Start())
	assert.Error(t, w.Watch(t.TempDir()))
	w.Stop()
}
