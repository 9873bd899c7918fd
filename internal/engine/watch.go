package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback receives the outcome of every watcher-driven run.
type WatchCallback func(res BatchResult)

// watchDebounce coalesces the burst of write events a single save produces.
const watchDebounce = 200 * time.Millisecond

// Watch renders thumbnails into destDir for .json, .lottie and .zip files
// created or modified in dir until ctx is cancelled.
func (t *Thumbnailer) Watch(ctx context.Context, dir, destDir string, cb WatchCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	t.logger.Info("watcher: started", slog.String("dir", dir))

	dests := newDestinations(destDir)
	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			for src := range pending {
				delete(pending, src)
				if _, err := os.Stat(src); err != nil {
					continue
				}
				res := BatchResult{Source: src}
				if res.Destination, res.Err = dests.claim(src); res.Err == nil {
					res.Err = t.Generate(ctx, Request{Source: src, Destination: res.Destination}, &res.Item)
				}
				if cb != nil {
					cb(res)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !watchable(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(watchDebounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func watchable(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".lottie", ".zip":
		return true
	}
	return false
}
