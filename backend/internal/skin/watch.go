package skin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates the cache whenever a file under <data>/skins changes,
// so edited images show up without a restart. It blocks until ctx is done.
func Watch(ctx context.Context, dataDir string, c *Cache) error {
	root := filepath.Join(dataDir, "skins")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("skins dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("skin watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read %s: %w", root, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(root, e.Name())); err != nil {
				log.Warnf("watch skin %s: %v", e.Name(), err)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New skin folders get watched too.
			if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == root {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						log.Warnf("watch skin %s: %v", ev.Name, err)
					}
				}
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			log.Debugf("skin files changed: %s", ev)
			c.Invalidate()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnf("skin watcher: %v", err)
		}
	}
}
