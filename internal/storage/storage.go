// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package storage drains the linear telemetry buffer to per-day .TEL files
// on removable storage (C4, spec §4.4).
package storage

import (
	"fmt"
	"log"

	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// Flusher drains a buf.Buffer into per-day files through a drivers.SD.
type Flusher struct {
	sd drivers.SD
}

// NewFlusher returns a Flusher writing through sd.
func NewFlusher(sd drivers.SD) *Flusher {
	return &Flusher{sd: sd}
}

// fileName formats the per-day telemetry file name for a block's epoch:
// floor(epoch/86400) as 8 zero-padded decimal digits, suffixed .TEL (spec
// §6).
func fileName(epoch uint32) string {
	return fmt.Sprintf("%08d.TEL", epoch/86400)
}

// Flush drains b, appending every queued block's raw byte image to its
// per-day file, opening a new file each time the day (floor(epoch/86400))
// changes between successive entries (spec §4.4). A per-entry open
// failure is logged and that entry is skipped, but the drain continues
// (spec §7b: at-most-once, may-drop semantics) — the buffer is always
// fully cleared on return, even if some entries could not be written.
//
// The source reopens a file handle on every day change rather than
// caching one open handle per day (spec §9 design note); this keeps the
// same intent — one file per day — without depending on how many distinct
// days appear in a single drain.
func (f *Flusher) Flush(b *buf.Buffer) error {
	var (
		cur      drivers.SDFile
		curName  string
		firstErr error
	)
	closeCur := func() {
		if cur != nil {
			if err := cur.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("storage: close %s: %w", curName, err)
			}
			cur = nil
		}
	}
	defer closeCur()

	var block buf.Block
	for b.Count() > 0 {
		if err := b.Get(&block); err != nil {
			break
		}
		name := fileName(block.Epoch)
		if cur == nil || name != curName {
			closeCur()
			fh, err := f.sd.OpenAppend(name)
			if err != nil {
				log.Printf("storage: open %s failed, skipping entry: %v", name, err)
				if firstErr == nil {
					firstErr = fmt.Errorf("storage: open %s: %w", name, err)
				}
				continue
			}
			cur, curName = fh, name
		}
		enc, err := block.MarshalBinary()
		if err != nil {
			continue
		}
		if _, err := cur.Write(enc); err != nil {
			log.Printf("storage: write %s failed: %v", curName, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("storage: write %s: %w", curName, err)
			}
		}
	}
	b.Clear()
	return firstErr
}
