// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uplink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherDeliversDecodedSequence(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan Sequence, 1)
	go w.Run(ctx, ch)

	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSequence), 0o644))

	select {
	case got := <-ch:
		require.Equal(t, path, got.Path)
		require.Len(t, got.Commands, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for uplinked sequence")
	}
}
