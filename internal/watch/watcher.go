package watch

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"ask_analytics/config"
)

// Handler receives the path of a newly dropped chat export file.
type Handler func(ctx context.Context, path string)

// Watcher monitors the export directory for new chat export files and
// hands each one to the handler. Exports are JSON dumps of day lists,
// typically dropped by a scheduled job.
type Watcher struct {
	cfg     config.Config
	handler Handler
}

func New(cfg config.Config, handler Handler) *Watcher {
	return &Watcher{cfg: cfg, handler: handler}
}

func (w *Watcher) Start(ctx context.Context) error {
	if w.cfg.ExportDir == "" {
		log.Println("export watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
					if isExport(evt.Name) {
						w.handler(ctx, evt.Name)
					}
				}
			case err := <-watcher.Errors:
				log.Printf("watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(w.cfg.ExportDir)
}

func isExport(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// Backfill hands every export already present in the directory to the
// handler, for catching up after a restart.
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := filepath.Glob(filepath.Join(w.cfg.ExportDir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isExport(e) {
			w.handler(ctx, e)
		}
	}
	return nil
}
