// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package storage

import (
	"os"
	"path/filepath"

	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// FileSD implements drivers.SD over a plain directory on whatever
// filesystem the host already provides, standing in for the out-of-scope
// FAT/SD-card driver (spec §1) the same way the original hardware's SD
// card presents itself to the core: a flat namespace of append-only files.
type FileSD struct {
	dir string
}

// NewFileSD returns a FileSD rooted at dir. It does not create dir;
// OpenAppend creates it on first use.
func NewFileSD(dir string) *FileSD {
	return &FileSD{dir: dir}
}

// OpenAppend implements drivers.SD.
func (f *FileSD) OpenAppend(name string) (drivers.SDFile, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(f.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// SelfCheck implements drivers.SD, reporting whether the backing directory
// is reachable (invoked by the CHECK_SD_CARD sequence opcode).
func (f *FileSD) SelfCheck() error {
	_, err := os.Stat(f.dir)
	return err
}

// Reformat implements drivers.SD by wiping and recreating the backing
// directory (invoked by the REFORMAT_SD sequence opcode).
func (f *FileSD) Reformat() error {
	if err := os.RemoveAll(f.dir); err != nil {
		return err
	}
	return os.MkdirAll(f.dir, 0o755)
}
