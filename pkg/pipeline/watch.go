package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before
// converting again.
const DefaultDebounce = 200 * time.Millisecond

// WatchFunc receives the outcome of each conversion run by Watch.
type WatchFunc func(*Result, error)

// Watch converts opts once, then again whenever a file under the input's
// directory changes, until ctx is cancelled. Bursts of events are collapsed
// into one conversion after debounce. Files written by the previous
// conversion are ignored so that writing next to the input does not loop.
//
// Conversion errors are passed to fn with a nil Result and do not stop
// watching. Files a failed run wrote are still ignored. Watch returns an
// error only if the watcher cannot be set up.
func (r *Runner) Watch(ctx context.Context, opts Options, debounce time.Duration, fn WatchFunc) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := filepath.Dir(opts.Input)
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	r.Logger.Info("watching for changes", "dir", root)

	written := make(map[string]bool)
	run := func() {
		res, err := r.Convert(ctx, opts)
		clear(written)
		if res != nil {
			for _, f := range res.Files {
				written[absPath(f)] = true
			}
		}
		if err != nil {
			res = nil
		}
		fn(res, err)
	}
	run()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.Logger.Debug("watcher stopped")
			return nil

		case <-fire:
			fire = nil
			run()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addDirsRecursive(w, ev.Name); err != nil {
						r.Logger.Warn("watch new directory", "path", ev.Name, "err", err)
					}
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if written[absPath(ev.Name)] {
				continue
			}
			r.Logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.Logger.Error("watcher", "err", err)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}
