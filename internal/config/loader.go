package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Loader loads the configuration and hot-reloads it when the file changes.
// Only the reloadable subset (injection delay, overlay backend, log level)
// takes effect without a restart; OnChange subscribers decide what to apply.
type Loader struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	cancel   context.CancelFunc
}

// NewLoader creates a loader for the configuration at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Config returns the most recently loaded configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnChange registers a callback invoked after a successful reload.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	l.mu.Unlock()
}

// Watch starts watching the config file for changes. Reload failures keep
// the previous configuration and are reported through errFn.
func (l *Loader) Watch(ctx context.Context, errFn func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors replace files rather than write in place.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	l.watcher = watcher
	l.cancel = cancel

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(l.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(l.path)
				if err != nil {
					if errFn != nil {
						errFn(fmt.Errorf("config reload: %w", err))
					}
					continue
				}
				l.mu.Lock()
				l.config = cfg
				callbacks := make([]func(*Config), len(l.onChange))
				copy(callbacks, l.onChange)
				l.mu.Unlock()
				for _, fn := range callbacks {
					fn(cfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if errFn != nil {
					errFn(err)
				}
			}
		}
	}()
	return nil
}

// Close stops watching.
func (l *Loader) Close() error {
	if l.cancel != nil {
		l.cancel()
	}
	return nil
}
