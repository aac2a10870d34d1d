package daemon

import (
	"context"
	"os"
	"path/filepath"

	"codeberg.org/mutker/rogctl/internal/errors"
	"codeberg.org/mutker/rogctl/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher calls a function whenever a single file is written or replaced.
// It watches the parent directory, since the state store replaces the file
// by renaming a temporary one over it.
type Watcher struct {
	fsw      *fsnotify.Watcher
	filename string
	notify   func()
}

// Watch starts watching filename. The parent directory is created if
// needed.
func Watch(filename string, notify func()) (*Watcher, error) {
	errFactory := errors.New()
	filename = filepath.Clean(filename)
	dir := filepath.Dir(filename)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errFactory.Wrap(ErrWatchState, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errFactory.Wrap(ErrWatchState, err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errFactory.Wrap(ErrWatchState, err)
	}

	return &Watcher{
		fsw:      fsw,
		filename: filename,
		notify:   notify,
	}, nil
}

// Run delivers notifications until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.filename {
				continue
			}
			logger.Debug().Str("event", event.String()).Msg("State file event")
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return errors.New().Wrap(ErrWatchState, err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
