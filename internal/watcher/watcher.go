/*
* Debounced filesystem watcher
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package watcher monitors a directory tree and requests rescans after
// changes have settled.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
)

// Trigger requests a rescan. Paths are the changed entries, sorted.
type Trigger struct {
	Paths []string
	Time  time.Time
}

// Watcher watches every directory under a root.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	logger    *logging.Logger

	ignoreMu sync.RWMutex
	ignore   map[string]struct{}

	triggers chan Trigger
	errors   chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for root. A burst of changes produces one trigger
// once no event has arrived for debounce.
func New(root string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		root:      absRoot,
		debounce:  debounce,
		logger:    logger.WithComponent("watcher"),
		ignore:    make(map[string]struct{}),
		triggers:  make(chan Trigger, 1),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}, nil
}

// Ignore drops events for the given files, such as the history database
// or the report written under the watched root.
func (w *Watcher) Ignore(paths ...string) {
	w.ignoreMu.Lock()
	defer w.ignoreMu.Unlock()
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore[abs] = struct{}{}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	w.ignoreMu.RLock()
	defer w.ignoreMu.RUnlock()
	_, ok := w.ignore[path]
	return ok
}

// Triggers returns the channel of rescan requests. A request is dropped
// while a previous one is still unread.
func (w *Watcher) Triggers() <-chan Trigger {
	return w.triggers
}

// Errors returns the channel of errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start adds every directory under the root and begins the event loop.
func (w *Watcher) Start() error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.triggers)
	close(w.errors)
	return w.fsWatcher.Close()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("Cannot watch path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("Cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Cannot watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case now := <-timerC:
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			pending = make(map[string]struct{})

			w.logger.Debug("Changes settled", "paths", len(paths))
			select {
			case w.triggers <- Trigger{Paths: paths, Time: now}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}
