package transform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/slok/opsdesk/internal/log"
)

// WatcherConfig is the configuration of the definitions file watcher.
type WatcherConfig struct {
	Source *FileSource
	// OnChange is called after the definitions were invalidated. Optional.
	OnChange func(ctx context.Context)
	Logger   log.Logger
}

func (c *WatcherConfig) defaults() error {
	if c.Source == nil {
		return fmt.Errorf("source is required")
	}
	if c.OnChange == nil {
		c.OnChange = func(context.Context) {}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "transform.Watcher"})
	return nil
}

// Watcher invalidates a FileSource when its file changes on disk.
type Watcher struct {
	source   *FileSource
	onChange func(ctx context.Context)
	logger   log.Logger
}

// NewWatcher returns a new definitions file watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Watcher{
		source:   cfg.Source,
		onChange: cfg.OnChange,
		logger:   cfg.Logger,
	}, nil
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, editors replace files instead of writing them in place.
	path, err := filepath.Abs(w.source.Path())
	if err != nil {
		return fmt.Errorf("could not resolve %q: %w", w.source.Path(), err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("could not watch %q: %w", filepath.Dir(path), err)
	}

	w.source.setWatched(true)
	defer w.source.setWatched(false)

	w.logger.Infof("Watching transform definitions at %s", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debugf("Transform definitions changed (%s)", event.Op)
				w.source.Invalidate()
				w.onChange(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("fsnotify error: %s", err)
		}
	}
}
