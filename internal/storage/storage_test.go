// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/drivers/drivertest"
)

// S4 (spec §8): push 8 blocks with these epochs; expect three files with
// 2/4/2 blocks and an empty buffer afterward.
func TestFlushRollsOverByDay(t *testing.T) {
	sd := drivertest.NewSD()
	f := NewFlusher(sd)

	var b buf.Buffer
	epochs := []uint32{86399, 86399, 86400, 86400, 86400, 172799, 172800, 172800}
	for _, e := range epochs {
		require.NoError(t, b.Put(buf.Block{Epoch: e}))
	}

	require.NoError(t, f.Flush(&b))

	assert.Equal(t, 0, b.Count())
	assert.Len(t, sd.Files["00000000.TEL"], 2*92)
	assert.Len(t, sd.Files["00000001.TEL"], 4*92)
	assert.Len(t, sd.Files["00000002.TEL"], 2*92)
}

func TestFlushPerEntryOpenFailureSkipsButContinues(t *testing.T) {
	sd := drivertest.NewSD()
	f := NewFlusher(sd)

	var b buf.Buffer
	require.NoError(t, b.Put(buf.Block{Epoch: 0}))
	require.NoError(t, b.Put(buf.Block{Epoch: 86400}))

	sd.OpenErr = assert.AnError
	err := f.Flush(&b)
	assert.Error(t, err)
	assert.Equal(t, 0, b.Count(), "buffer must end empty even when every open failed")
}

func TestFlushPreservesEntryByteImage(t *testing.T) {
	sd := drivertest.NewSD()
	f := NewFlusher(sd)

	var b buf.Buffer
	block := buf.Block{Epoch: 5}
	block.Readings[0] = 0x0ABC
	require.NoError(t, b.Put(block))

	require.NoError(t, f.Flush(&b))

	want, _ := block.MarshalBinary()
	assert.Equal(t, want, sd.Files["00000000.TEL"])
}
