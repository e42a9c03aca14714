package definitions

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sections": []}`), 0o644))

	reloaded := make(chan string, 1)
	w, err := NewWatcher(path, 20*time.Millisecond, func(p string) {
		select {
		case reloaded <- p:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"sections": [{"title": "New"}]}`), 0o644))

	select {
	case p := <-reloaded:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sections": []}`), 0o644))

	reloaded := make(chan string, 1)
	w, err := NewWatcher(path, 20*time.Millisecond, func(p string) {
		select {
		case reloaded <- p:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case p := <-reloaded:
		t.Fatalf("unexpected reload for %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RequiresPath(t *testing.T) {
	_, err := NewWatcher("", 0, nil)
	assert.Error(t, err)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	w, err := NewWatcher(path, 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	assert.NotPanics(t, func() { w.Stop() })
}
