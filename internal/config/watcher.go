package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 2 * time.Second

// Watcher reloads the configuration when the file changes on disk and
// hands the new configuration to a callback. Editors often replace the
// file rather than writing in place, so the parent directory is watched
// and events are filtered by name.
type Watcher struct {
	configPath string
	onReload   func(*Config)

	watcher    *fsnotify.Watcher
	reloadChan chan struct{}
	stopChan   chan struct{}

	mu      sync.Mutex
	pending *time.Timer
	started bool
}

// NewWatcher creates a watcher for configPath. onReload is invoked with
// each successfully loaded configuration; reloads that fail validation
// are logged and dropped.
func NewWatcher(configPath string, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		configPath: configPath,
		onReload:   onReload,
		watcher:    fsw,
		reloadChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are handled on a
// background goroutine until Stop is called.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.loop()
	slog.Info("Watching configuration file for changes", "path", w.configPath)
}

// Stop ends watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
	w.watcher.Close()

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) loop() {
	base := filepath.Base(w.configPath)
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.triggerReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", "error", err)
		case <-w.reloadChan:
			w.reload()
		}
	}
}

// triggerReload debounces bursts of filesystem events into a single
// reload.
func (w *Watcher) triggerReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(reloadDebounce, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) reload() {
	cfg, err := Load(w.configPath)
	if err != nil {
		slog.Warn("Config reload failed, keeping previous configuration", "error", err)
		return
	}
	slog.Info("Configuration reloaded", "path", w.configPath)
	w.onReload(cfg)
}
