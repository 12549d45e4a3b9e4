package reference

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle is how long a file must be quiet before it is re-ingested.
const watchSettle = 500 * time.Millisecond

// Watch re-ingests files whenever they are written or recreated, until ctx
// is done. Parent directories are watched so editors that replace files on
// save are followed.
func (in *Ingester) Watch(ctx context.Context, paths ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		tracked[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchSettle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if !tracked[name] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[name] = time.Now()

		case <-ticker.C:
			for name, at := range pending {
				if time.Since(at) < watchSettle {
					continue
				}
				delete(pending, name)
				if _, err := in.IngestFiles(ctx, name); err != nil {
					in.logger.Warn("re-ingest failed", "path", name, "error", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
