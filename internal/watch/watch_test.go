package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_RunsAfterMatchingChange(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32

	w, err := NewWatcher(dir, func() error {
		calls.Add(1)
		return nil
	},
		WithFilter(func(name string) bool { return strings.HasSuffix(name, ".yaml") }),
		WithDebounce(20*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	assert.Equal(t, int32(1), calls.Load(), "callback runs once on start")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20240101000000-a.yaml"), []byte("up: []\n"), 0o644))

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), func() error { return nil })
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), func() error { return nil })
	assert.Error(t, err)
}
