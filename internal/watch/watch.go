// Package watch reruns work when a file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 100 * time.Millisecond

// relevantOps are the operations that can change a file's content. Editors
// often replace files by rename, so create and rename count as changes.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watch calls fn after path changes, once per burst of changes: fn runs when
// debounce has passed without a further change. Calls to fn are sequential.
//
// Watch blocks until ctx is done and then returns nil. It returns an error if
// the watcher cannot be set up or fails.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(context.Context)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// The directory is watched so the file survives being replaced.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&relevantOps == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", path, err)

		case <-timer.C:
			fn(ctx)
		}
	}
}
