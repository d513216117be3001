// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package buf implements the fixed-capacity linear (FIFO) telemetry buffer
// (spec §3, §4.2, C2): acquisition (package telemetry) appends blocks to
// it, SD flush (package storage) drains it in order.
package buf

import (
	"encoding/binary"
	"errors"
)

// NumSensors is N from spec §3: readings per telemetry block.
const NumSensors = 44

// Capacity is C from spec §3: the buffer's flush threshold and hard limit.
const Capacity = 8

// blockSize is the encoded size of one Block: epoch(4) + NumSensors*2.
const blockSize = 4 + NumSensors*2

// ErrFull is returned by Put when the buffer is already at Capacity. The
// acquisition loop always flushes at count>=Capacity before a Put could
// ever observe this (spec §4.3 step 5), so in practice this is a
// programming-error guard, not a normal code path (spec §9 Open Questions).
var ErrFull = errors.New("buf: buffer is full")

// ErrEmpty is returned by Get and Peek on an empty buffer.
var ErrEmpty = errors.New("buf: buffer is empty")

// Block is one telemetry reading record (spec §3): an epoch and N=44
// 12-bit sensor counts, stored as 16-bit values. Immutable once appended.
type Block struct {
	Epoch    uint32
	Readings [NumSensors]uint16
}

// Day returns the day-of-epoch bucket this block belongs to (spec §4.4):
// floor(epoch / 86400).
func (b Block) Day() uint32 { return b.Epoch / 86400 }

// MarshalBinary encodes the block as epoch (u32 BE) followed by the N
// readings (u16 BE each) — the exact on-disk layout of a .TEL file entry
// (spec §6).
func (b Block) MarshalBinary() ([]byte, error) {
	out := make([]byte, blockSize)
	binary.BigEndian.PutUint32(out[0:4], b.Epoch)
	for i, r := range b.Readings {
		binary.BigEndian.PutUint16(out[4+i*2:4+i*2+2], r)
	}
	return out, nil
}

// UnmarshalBinary decodes a block previously produced by MarshalBinary.
func (b *Block) UnmarshalBinary(data []byte) error {
	if len(data) != blockSize {
		return errors.New("buf: invalid block length")
	}
	b.Epoch = binary.BigEndian.Uint32(data[0:4])
	for i := range b.Readings {
		b.Readings[i] = binary.BigEndian.Uint16(data[4+i*2 : 4+i*2+2])
	}
	return nil
}

// Buffer is the fixed-capacity FIFO queue of telemetry blocks (spec §3,
// §4.2). Head and Tail range over [0, 2*Capacity) rather than
// [0, Capacity) so that Count = (Head - Tail) mod 2*Capacity distinguishes
// a full buffer (Count == Capacity) from an empty one (Count == 0) even
// though both map to the same slot index modulo Capacity.
type Buffer struct {
	Head, Tail uint8
	Blocks     [Capacity]Block
}

// Count returns the number of blocks currently queued.
func (b Buffer) Count() int {
	return int((uint16(b.Head) - uint16(b.Tail) + 2*Capacity) % (2 * Capacity))
}

// Put appends a block, returning ErrFull if the buffer is already at
// Capacity.
func (b *Buffer) Put(block Block) error {
	if b.Count() >= Capacity {
		return ErrFull
	}
	b.Blocks[b.Head%Capacity] = block
	b.Head = uint8((uint16(b.Head) + 1) % (2 * Capacity))
	return nil
}

// Get pops the oldest block into out, returning ErrEmpty if the buffer has
// nothing queued.
func (b *Buffer) Get(out *Block) error {
	if b.Count() == 0 {
		return ErrEmpty
	}
	*out = b.Blocks[b.Tail%Capacity]
	b.Tail = uint8((uint16(b.Tail) + 1) % (2 * Capacity))
	return nil
}

// Peek non-destructively reads the oldest (tail) block.
func (b Buffer) Peek() (Block, error) {
	if b.Count() == 0 {
		return Block{}, ErrEmpty
	}
	return b.Blocks[b.Tail%Capacity], nil
}

// Clear empties the buffer without touching the stored block data (the
// slots are simply no longer reachable until overwritten by Put).
func (b *Buffer) Clear() {
	b.Head = 0
	b.Tail = 0
}

// encodedSize is Head(1) + Tail(1) + Capacity*blockSize.
const encodedSize = 2 + Capacity*blockSize

// MarshalBinary encodes the buffer, including unused slots, to a fixed-size
// blob so it fits a state.Cell.
func (b Buffer) MarshalBinary() ([]byte, error) {
	out := make([]byte, encodedSize)
	out[0] = b.Head
	out[1] = b.Tail
	for i, blk := range b.Blocks {
		enc, _ := blk.MarshalBinary()
		copy(out[2+i*blockSize:], enc)
	}
	return out, nil
}

// UnmarshalBinary decodes a buffer previously produced by MarshalBinary.
func (b *Buffer) UnmarshalBinary(data []byte) error {
	if len(data) != encodedSize {
		return errors.New("buf: invalid buffer length")
	}
	b.Head = data[0]
	b.Tail = data[1]
	for i := range b.Blocks {
		if err := b.Blocks[i].UnmarshalBinary(data[2+i*blockSize : 2+(i+1)*blockSize]); err != nil {
			return err
		}
	}
	return nil
}
