package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/zatchheems/yactatt/util"
)

// Watch reports writes to cfile into changes. Editors often replace the
// file instead of writing it, so the parent directory is watched and
// events are filtered by name. The returned function stops watching.
func Watch(cfile string, changes *util.Mailbox[string]) (func(), error) {
	abs, err := filepath.Abs(cfile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfile, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					slog.Debug("Config file changed", "file", event.Name, "op", event.Op.String())
					changes.Put(abs)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("File watcher error", "error", err)
			}
		}
	}()

	return func() {
		watcher.Close()
		<-done
	}, nil
}
