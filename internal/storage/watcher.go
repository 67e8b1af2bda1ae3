package storage

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"xiaozhou/internal/logging"
	"xiaozhou/internal/persona"
)

// KeyReloadHandler receives freshly loaded key overrides when the keys
// blob changes on disk.
type KeyReloadHandler func([]persona.KeyOverride)

// KeyWatcher reloads persona key overrides when the keys file is edited
// outside the application. Writes are debounced because editors fire
// several events per save.
type KeyWatcher struct {
	manager  *Manager
	fw       *fsnotify.Watcher
	onReload KeyReloadHandler
	debounce time.Duration

	mu       sync.Mutex
	pending  *time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

// NewKeyWatcher starts watching the manager's data directory for changes
// to the keys blob.
func NewKeyWatcher(manager *Manager, onReload KeyReloadHandler) (*KeyWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(manager.dataDir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &KeyWatcher{
		manager:  manager,
		fw:       fw,
		onReload: onReload,
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *KeyWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != keysFile {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logging.Debug("key watcher error", "error", err)
		}
	}
}

func (w *KeyWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		overrides := w.manager.LoadKeyOverrides()
		logging.Info("reloaded persona key overrides", "count", len(overrides))
		w.onReload(overrides)
	})
}

// Stop shuts the watcher down.
func (w *KeyWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.pending != nil {
			w.pending.Stop()
		}
		w.mu.Unlock()
		w.fw.Close()
	})
}
