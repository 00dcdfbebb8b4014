// Copyright 2024 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fswatch reports changes to a single file on disk.
//
// Ninja truncates and rewrites its build log on some invocations and
// appends on others, and editors and build wrappers may replace files by
// renaming over them. Watching the file directly would silently stop
// after a replace, so the watcher watches the parent directory instead
// and filters events by file name. Bursts of writes are coalesced into a
// single notification.
package fswatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Delay to wait for more events before notifying. Ninja writes the build
// log one line per finished step, so a busy build produces long bursts.
const debounceDelay = 100 * time.Millisecond

// Watcher delivers a value on Events every time the watched file settles
// after being written, created, or renamed into place.
type Watcher struct {
	// Events receives after each burst of changes to the file. It has a
	// buffer of one; notifications arriving while the receiver is busy
	// collapse into a single pending one.
	Events chan struct{}

	name    string
	watcher *fsnotify.Watcher
}

// NewWatcher watches path, which must name a file whose parent directory
// exists. The file itself need not exist yet.
func NewWatcher(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fsnotify: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		Events:  make(chan struct{}, 1),
		name:    filepath.Base(path),
		watcher: watcher,
	}, nil
}

// Run delivers notifications until ctx is canceled or the underlying
// watcher fails. It always returns a non-nil error; after cancellation
// that error is ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// The timer starts disarmed. The first relevant event arms it, and
	// each following event pushes it back by the full delay.
	debounce := time.NewTimer(debounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("event channel closed while watching %s", w.name)
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !debounce.Stop() {
				// Drain without blocking; the tick may already have
				// been consumed by an earlier loop iteration.
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(debounceDelay)
		case <-debounce.C:
			select {
			case w.Events <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("error channel closed while watching %s", w.name)
			}
			return fmt.Errorf("watching %s: %w", w.name, err)
		}
	}
}
