// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package respoll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S5 (spec §8): fill the queue with 66 entries, 40 PENDING at head then 26
// IMMEDIATE. Enqueue a new IMMEDIATE. Expect size still 66, the first
// (lowest-index) IMMEDIATE removed, and the new entry appended.
func TestEnqueueOverflowEvictsOldestImmediate(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 40; i++ {
		q.Enqueue(Entry{CmdID: uint16(i), Type: Pending, Status: PendingStatus})
	}
	for i := 40; i < 66; i++ {
		q.Enqueue(Entry{CmdID: uint16(i), Type: Immediate, Status: 0})
	}
	require.Equal(t, MaxEntries, q.Len())

	q.Enqueue(Entry{CmdID: 999, Type: Immediate, Status: 1})

	require.Equal(t, MaxEntries, q.Len())
	entries := q.Entries()
	// cmd_id 40 was the first IMMEDIATE; it must be gone.
	for _, e := range entries {
		assert.NotEqual(t, uint16(40), e.CmdID)
	}
	assert.Equal(t, uint16(999), entries[len(entries)-1].CmdID)
}

func TestEnqueueOverflowDropsWhenAllPending(t *testing.T) {
	q := NewQueue()
	for i := 0; i < MaxEntries; i++ {
		q.Enqueue(Entry{CmdID: uint16(i), Type: Pending, Status: PendingStatus})
	}
	q.Enqueue(Entry{CmdID: 999, Type: Immediate, Status: 0})

	assert.Equal(t, MaxEntries, q.Len(), "a new entry must be dropped, not evict a PENDING entry")
	for _, e := range q.Entries() {
		assert.NotEqual(t, uint16(999), e.CmdID)
	}
}

func TestUserDeleteOutcomes(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{CmdID: 1, Type: Immediate})
	q.Enqueue(Entry{CmdID: 2, Type: Pending, Status: PendingStatus})
	q.Enqueue(Entry{CmdID: 3, Type: PendingComplete})

	assert.NoError(t, q.UserDelete(1))
	assert.ErrorIs(t, q.UserDelete(2), ErrIsPending)
	assert.NoError(t, q.UserDelete(3))
	assert.ErrorIs(t, q.UserDelete(1), ErrNotFound)
}

func TestUpdatePendingIsAtomicReplace(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{CmdID: 5, Type: Pending, Status: PendingStatus})

	q.UpdatePending(Entry{CmdID: 5, Epoch: 100, Type: PendingComplete, Status: 0})

	require.Equal(t, 1, q.Len())
	got := q.Entries()[0]
	assert.Equal(t, PendingComplete, got.Type)
	assert.EqualValues(t, 0, got.Status)
}

// S1-adjacent (spec §8 invariant 8): after Abort, no PENDING entry
// remains, and every former PENDING has a PENDING_COMPLETE counterpart
// with status == (uint8)(-s).
func TestAbortClearsAllPending(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{CmdID: 10, Type: Pending, Status: PendingStatus})
	q.Enqueue(Entry{CmdID: 11, Type: Pending, Status: PendingStatus})
	q.Enqueue(Entry{CmdID: 12, Type: Immediate, Status: 0})

	q.Abort(1, 500)

	var sawMarker bool
	for _, e := range q.Entries() {
		assert.NotEqual(t, Pending, e.Type, "no PENDING entry may remain after abort")
		if e.CmdID == AbortMarkerCmdID {
			sawMarker = true
			assert.EqualValues(t, 0xFF, e.Status)
		}
		if e.CmdID == 10 || e.CmdID == 11 {
			assert.Equal(t, PendingComplete, e.Type)
			assert.EqualValues(t, 0xFF, e.Status)
		}
	}
	assert.True(t, sawMarker)
}

func TestSerializeRoundTrip(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{CmdID: 7, Epoch: 12345, Type: Immediate, Status: 9})
	q.Enqueue(Entry{CmdID: 8, Epoch: 54321, Type: Pending, Status: PendingStatus})

	out := q.Serialize()
	require.Len(t, out, 2*entrySize)

	cmdID := uint16(out[0])<<8 | uint16(out[1])
	status := out[2]
	epoch := uint32(out[3])<<24 | uint32(out[4])<<16 | uint32(out[5])<<8 | uint32(out[6])
	assert.EqualValues(t, 7, cmdID)
	assert.EqualValues(t, 9, status)
	assert.EqualValues(t, 12345, epoch)
}

func TestQueueMarshalRoundTrip(t *testing.T) {
	q := NewQueue()
	q.Enqueue(Entry{CmdID: 1, Epoch: 2, Type: PendingComplete, Status: 3})
	q.Enqueue(Entry{CmdID: 4, Epoch: 5, Type: Pending, Status: PendingStatus})

	enc, err := q.MarshalBinary()
	require.NoError(t, err)

	var got Queue
	require.NoError(t, got.UnmarshalBinary(enc))
	assert.Equal(t, q.Entries(), got.Entries())
}
