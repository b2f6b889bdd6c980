package config

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"

	"github.com/ha1tch/nodegraph/pkg/log"
)

// burstWait lets a sequence of events from one save settle before the
// file is read.
const burstWait = 16 * time.Millisecond

// Watch calls onChange with the reloaded settings each time the file at
// path changes, until ctx is done. The directory is watched rather than
// the file so that editors which replace the file on save are seen.
// Invalid files are logged and skipped; the previous settings stay.
func Watch(ctx context.Context, path string, onChange func(File)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	burst := time.NewTimer(0)
	<-burst.C
	pending := false

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			if filepath.Clean(ev.Name) != path || ev.Op == fsnotify.Chmod {
				continue
			}
			log.Debug(ctx, "config event", slog.F("event", ev.String()))
			pending = true
			burst.Reset(burstWait)
		case <-burst.C:
			if !pending {
				continue
			}
			pending = false
			cfg, err := Load(path)
			if err != nil {
				log.Warn(ctx, "ignoring config change", slog.F("path", path), slog.Error(err))
				continue
			}
			log.Info(ctx, "config reloaded", slog.F("path", path))
			onChange(cfg)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Warn(ctx, "fsnotify error", slog.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
