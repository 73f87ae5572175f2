package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors a configuration file and invokes onChange with the
// re-parsed configuration whenever the file is written. Files that fail to
// parse or validate are skipped; the previous configuration stays in
// effect. The returned function stops the watcher.
func Watch(path string, onChange func(*Config)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory rather than the file so atomic rename-style
	// rewrites keep being observed.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				evAbs, err := filepath.Abs(ev.Name)
				if err != nil || evAbs != abs {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					continue
				}
				onChange(cfg)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}
