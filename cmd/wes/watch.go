package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wesleylang/wesley/config"
)

// watchFiles evaluates the files once, then re-runs the whole set whenever
// one of them changes. Rapid bursts of events are debounced to a single
// run. Each run gets a fresh interpreter so stale definitions do not leak
// between runs.
func watchFiles(files []string, cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Watch directories rather than files: editors that write via rename
	// drop the file watch on save.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	run := func() {
		runFiles(files)
	}
	run()
	fmt.Printf("Watching %d file(s) for changes...\n", len(files))

	debounce := time.Duration(cfg.WatchDebounceMS) * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			fmt.Println("Change detected, re-running...")
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Println("Watch error:", err)
		}
	}
}
