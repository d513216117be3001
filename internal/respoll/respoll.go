// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package respoll implements the bounded response-poll queue (C7, spec
// §4.7): a ground-facing record of outcomes for immediate and pending
// commands, with a deletion discipline that never auto-evicts a still-
// pending entry.
package respoll

import (
	"encoding/binary"
	"errors"
)

// MaxEntries is the queue's fixed capacity (spec §3).
const MaxEntries = 66

// AbortMarkerCmdID is the reserved cmd_id used for abort-marker entries
// (spec §3, §6).
const AbortMarkerCmdID = 0xFFFE

// ClearAllCmdID is the reserved cmd_id ground uses to request the
// response-poll-clear command (spec §6); the core does not interpret it
// itself — it is listed here for callers that implement that command.
const ClearAllCmdID = 0xFFFF

// PendingStatus is the sentinel status value meaning "pending, not yet
// executed" (spec §3, §6).
const PendingStatus = 42

// Type classifies a response-poll entry. It is never transmitted over the
// downlink (spec §4.7 Serialize): PENDING is distinguished on the wire
// solely by Status == PendingStatus.
type Type uint8

const (
	Immediate Type = iota
	Pending
	PendingComplete
)

// Entry is one response-poll record (spec §3).
type Entry struct {
	CmdID  uint16
	Epoch  uint32
	Type   Type
	Status uint8
}

// ErrNotFound is returned by UserDelete when no entry matches the
// requested cmd_id (spec: NOT_FOUND, wire value 0xFF).
var ErrNotFound = errors.New("respoll: cmd_id not found")

// ErrIsPending is returned by UserDelete when the matching entry is still
// PENDING and therefore not user-deletable (spec: IS_PENDING, wire value
// 0xFE).
var ErrIsPending = errors.New("respoll: entry is pending")

// Queue is the bounded response-poll queue (C7, spec §4.7).
type Queue struct {
	entries []Entry
}

// NewQueue returns an empty response-poll queue.
func NewQueue() *Queue {
	return &Queue{entries: make([]Entry, 0, MaxEntries)}
}

// Len reports the current entry count.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns a copy of the queue's entries in insertion order, for
// inspection by tests and the downlink path.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Enqueue appends entry. If the queue is already at MaxEntries, it first
// scans head-to-tail for the oldest IMMEDIATE entry and removes it to make
// room; if every entry is PENDING or PENDING_COMPLETE, the new entry is
// dropped silently rather than evicting a pending one (spec §4.7, §8
// invariant 6).
func (q *Queue) Enqueue(e Entry) {
	if len(q.entries) >= MaxEntries {
		idx := -1
		for i, cur := range q.entries {
			if cur.Type == Immediate {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		q.removeAt(idx)
	}
	q.entries = append(q.entries, e)
}

// removeAt deletes the entry at index i, shifting later entries down.
func (q *Queue) removeAt(i int) {
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
}

// UserDelete removes the first entry matching cmdID if it is deletable by
// a ground-issued delete command: IMMEDIATE and PENDING_COMPLETE entries
// may be deleted, PENDING entries may not (spec §4.7).
func (q *Queue) UserDelete(cmdID uint16) error {
	for i, e := range q.entries {
		if e.CmdID != cmdID {
			continue
		}
		if e.Type == Pending {
			return ErrIsPending
		}
		q.removeAt(i)
		return nil
	}
	return ErrNotFound
}

// SysDelete removes the entry at index unconditionally, shifting later
// entries down; index must be in range [0, Len()), otherwise ErrNotFound
// is returned.
func (q *Queue) SysDelete(index int) error {
	if index < 0 || index >= len(q.entries) {
		return ErrNotFound
	}
	q.removeAt(index)
	return nil
}

// UpdatePending removes the first entry whose cmd_id matches entry.CmdID,
// regardless of its current type, then enqueues entry — the mechanism
// used to promote a PENDING entry to PENDING_COMPLETE (spec §4.7). The
// removal happens before the insertion, so a ground observer never sees
// both the old and new entry for the same cmd_id at once (spec §5).
func (q *Queue) UpdatePending(entry Entry) {
	for i, e := range q.entries {
		if e.CmdID == entry.CmdID {
			q.removeAt(i)
			break
		}
	}
	q.Enqueue(entry)
}

// negateStatus computes the two's-complement negation of an exit-condition
// classification code, the encoding used for abort causes (spec §6).
func negateStatus(status uint8) uint8 {
	return uint8(-int8(status))
}

// Abort enqueues an abort-marker entry and re-marks every still-PENDING
// entry as PENDING_COMPLETE with the negated status (spec §4.7, §8
// invariant 8). status is the exit-condition classification (1..5); the
// marker and every re-marked entry carry its two's-complement negation.
//
// The scan re-examines the same index after each in-place update rather
// than advancing unconditionally: UpdatePending's remove-then-enqueue can
// shift a later PENDING entry into the slot just vacated, and a single
// forward pass would skip it whenever two PENDING entries were adjacent
// (mirroring respPollAbort in the original firmware).
func (q *Queue) Abort(status uint8, epoch uint32) {
	neg := negateStatus(status)
	q.Enqueue(Entry{CmdID: AbortMarkerCmdID, Epoch: epoch, Type: PendingComplete, Status: neg})

	for i := 0; i < len(q.entries); i++ {
		e := q.entries[i]
		if e.Type != Pending || e.Status != PendingStatus {
			continue
		}
		q.UpdatePending(Entry{CmdID: e.CmdID, Epoch: epoch, Type: PendingComplete, Status: neg})
		i--
	}
}

// entrySize is the wire encoding of one entry: cmd_id(2) | status(1) |
// epoch(4), big-endian (spec §4.7, §6).
const entrySize = 7

// Serialize packs every queued entry as 7 bytes big-endian, in insertion
// order. The entry Type is never transmitted — PENDING is recognizable on
// the wire solely by Status == PendingStatus (spec §4.7). No length header
// is emitted; per spec §9, the caller (link layer) is responsible for
// framing.
func (q *Queue) Serialize() []byte {
	out := make([]byte, len(q.entries)*entrySize)
	for i, e := range q.entries {
		off := i * entrySize
		binary.BigEndian.PutUint16(out[off:off+2], e.CmdID)
		out[off+2] = e.Status
		binary.BigEndian.PutUint32(out[off+3:off+7], e.Epoch)
	}
	return out
}

// cellEntrySize additionally round-trips Type, which Serialize omits.
const cellEntrySize = entrySize + 1

// cellSize is the state-cell encoding size: a count byte plus MaxEntries
// fixed-size slots (unused slots encode as zero entries).
const cellSize = 1 + MaxEntries*cellEntrySize

// MarshalBinary encodes the queue for state.Cell use.
func (q Queue) MarshalBinary() ([]byte, error) {
	out := make([]byte, cellSize)
	out[0] = uint8(len(q.entries))
	for i, e := range q.entries {
		off := 1 + i*cellEntrySize
		binary.BigEndian.PutUint16(out[off:off+2], e.CmdID)
		binary.BigEndian.PutUint32(out[off+2:off+6], e.Epoch)
		out[off+6] = uint8(e.Type)
		out[off+7] = e.Status
	}
	return out, nil
}

// UnmarshalBinary decodes a queue previously produced by MarshalBinary.
func (q *Queue) UnmarshalBinary(data []byte) error {
	if len(data) != cellSize {
		return errors.New("respoll: invalid queue length")
	}
	n := int(data[0])
	if n > MaxEntries {
		return errors.New("respoll: invalid queue count")
	}
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		off := 1 + i*cellEntrySize
		entries[i] = Entry{
			CmdID:  binary.BigEndian.Uint16(data[off : off+2]),
			Epoch:  binary.BigEndian.Uint32(data[off+2 : off+6]),
			Type:   Type(data[off+6]),
			Status: data[off+7],
		}
	}
	q.entries = entries
	return nil
}
