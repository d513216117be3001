// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uplink

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/sirsonik/CubeSat-Samples/internal/sequence"
)

// Watcher watches a directory for newly-dropped sequence files, decodes
// them, and sends the result on a channel (see Run). This stands in for the
// "ground station issues an uploaded command sequence" leg of spec §2's
// data flow without needing the real radio link layer (explicitly out of
// scope, spec §1).
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching dir for sequence file writes.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, watcher: fw}, nil
}

// Sequence is one decoded uplinked sequence, named after its source file.
type Sequence struct {
	Path     string
	Exit     sequence.CompoundCondition
	Commands []sequence.Command
}

// Run watches until ctx is canceled, sending a decoded Sequence on ch for
// every *.yaml/*.yml file created or written in the watched directory. A
// file that fails to decode is logged and skipped rather than sent.
func (w *Watcher) Run(ctx context.Context, ch chan<- Sequence) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			ext := filepath.Ext(ev.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			exit, commands, err := LoadSequenceFile(ev.Name)
			if err != nil {
				log.Printf("uplink: decode %s: %v", ev.Name, err)
				continue
			}
			select {
			case ch <- Sequence{Path: ev.Name, Exit: exit, Commands: commands}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("uplink: watch %s: %v", w.dir, err)
		}
	}
}
