// Package watch re-runs an action when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options tunes File.
type Options struct {
	// Debounce collapses bursts of events (editors often write twice).
	Debounce time.Duration
	// OnError receives watcher errors and errors returned by the action.
	OnError func(error)
	// OnReady is called once the watch is registered.
	OnReady func()
}

// File calls onChange after path is written or recreated, until ctx is
// done. The parent directory is watched so that editors replacing the file
// through a rename are still seen.
func File(ctx context.Context, path string, onChange func() error, opt Options) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if opt.OnReady != nil {
		opt.OnReady()
	}
	if opt.Debounce <= 0 {
		opt.Debounce = 100 * time.Millisecond
	}
	report := func(err error) {
		if err != nil && opt.OnError != nil {
			opt.OnError(err)
		}
	}

	base := filepath.Base(abs)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(opt.Debounce)
			} else {
				timer.Reset(opt.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			report(onChange())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			report(err)
		}
	}
}
