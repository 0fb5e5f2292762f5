package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with a freshly loaded Table each
// time the file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself: an atomic save
// (write a temp file, rename it over path) replaces the inode, and a watch on
// the old inode would silently stop firing.
//
// If a reload fails (file mid-write, bad CSV), the error is logged and passed
// to onFailure (which may be nil); onChange is not called, so the previous
// table stays active.
func Watch(ctx context.Context, path string, onChange func(*Table), onFailure func(error)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("dataset: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("dataset: watch %q: %w", dir, err)
	}

	slog.Info("dataset: watching for changes", "path", path)

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
			// A rename into place arrives as Create on the directory watch.
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Warn("dataset: file moved away, keeping previous table", "path", path)
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			t, err := Load(path)
			if err != nil {
				slog.Error("dataset: reload failed, keeping previous table",
					"path", path, "err", err)
				if onFailure != nil {
					onFailure(err)
				}
				continue
			}

			slog.Info("dataset: reloaded", "path", path, "rows", t.Len(), "fingerprint", t.Fingerprint)
			onChange(t)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("dataset: watcher error", "err", err)
		}
	}
}
