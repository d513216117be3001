// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSDOpenAppendCreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tel")
	sd := NewFileSD(dir)

	fh, err := sd.OpenAppend("00000000.TEL")
	require.NoError(t, err)
	_, err = fh.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, fh.Close())

	got, err := os.ReadFile(filepath.Join(dir, "00000000.TEL"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileSDReformatWipesDirectory(t *testing.T) {
	dir := t.TempDir()
	sd := NewFileSD(dir)

	fh, err := sd.OpenAppend("00000000.TEL")
	require.NoError(t, err)
	require.NoError(t, fh.Close())

	require.NoError(t, sd.Reformat())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSDSelfCheckFailsOnMissingDir(t *testing.T) {
	sd := NewFileSD(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, sd.SelfCheck())
}
