package watcher

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/logging"
)

// Reloader reloads the dictionaries backed by a file.
type Reloader interface {
	Reload(ctx context.Context, path string) ([]language.Tag, error)
}

// ReloadFunc is called after a successful reload.
type ReloadFunc func(path string, tags []language.Tag)

// ReloadHandler returns a ChangeHandler that reloads sources through r when
// they are created or modified. Deleted files keep their loaded dictionary.
func ReloadHandler(ctx context.Context, r Reloader, sources []string, logger logging.Logger, onReload ReloadFunc) ChangeHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("watcher")

	byAbs := make(map[string]string, len(sources))
	for _, src := range sources {
		if abs, err := cleanPath(src); err == nil {
			byAbs[abs] = src
		}
	}

	return func(events []ChangeEvent) error {
		collector := errors.NewCollector()
		for _, event := range events {
			if event.Type == EventTypeDeleted || event.Type == EventTypeRenamed {
				logger.Info(ctx, "Dictionary file went away, keeping loaded copy", "path", event.Path)
				continue
			}
			abs, err := cleanPath(event.Path)
			if err != nil {
				continue
			}
			src, ok := byAbs[abs]
			if !ok {
				continue
			}

			tags, err := r.Reload(ctx, src)
			if err != nil {
				collector.Add(err)
				continue
			}
			logger.Info(ctx, "Dictionary reloaded", "path", src, "languages", len(tags))
			if onReload != nil {
				onReload(src, tags)
			}
		}
		return collector.Err()
	}
}

// WatchSources starts a watcher that reloads sources through r until ctx is
// done. The caller stops the returned watcher.
func WatchSources(ctx context.Context, r Reloader, sources []string, delay time.Duration, logger logging.Logger, onReload ReloadFunc) (*FileWatcher, error) {
	fw, err := NewFileWatcher(delay, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(NoBackupFilter)
	fw.AddFilter(PathsFilter(sources...))
	fw.AddHandler(ReloadHandler(ctx, r, sources, logger, onReload))

	if err := fw.AddFiles(sources...); err != nil {
		fw.Stop()
		return nil, err
	}
	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return nil, err
	}
	return fw, nil
}
