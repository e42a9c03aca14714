package definitions

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// ReloadFunc is called after the definitions file changes on disk. The
// caller is expected to reload the document and replace the registry table
// wholesale.
type ReloadFunc func(path string)

// Watcher monitors the definitions file and triggers reloads. Editors
// often write through renames, so the parent directory is watched and
// events are debounced until the file is stable.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onReload ReloadFunc
	done     chan struct{}
	timerMu  sync.Mutex
	timer    *time.Timer
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the definitions file at path.
func NewWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("definitions path is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{
		watcher:  fsw,
		path:     filepath.Clean(path),
		debounce: debounce,
		onReload: onReload,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The event loop runs on its own goroutine until
// Stop is called.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch definitions directory: %w", err)
	}
	go w.eventLoop()
	log.Info().Str("path", w.path).Msg("Definitions watcher started")
	return nil
}

// Stop stops the watcher and cancels any pending reload.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})
	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Definitions watcher error")
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		log.Info().Str("path", w.path).Msg("Definitions file changed, reloading")
		if w.onReload != nil {
			w.onReload(w.path)
		}
	})
}
