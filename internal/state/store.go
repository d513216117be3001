// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package state implements the triple-replicated global state store (spec
// §4.1, C1): every mutable structure in the core lives behind a Cell, and
// every read or write to a Cell first reconciles its three replicas by
// per-bit majority vote, masking any single-bit upset between
// reconciliations.
//
// The original C firmware (sirsonik/CubeSat-Samples, Globals.h) keeps one
// giant triple-replicated struct and reaches into it with an
// offset-and-size macro (G_SET/G_CPY). Per spec §9's design note, this is
// reimplemented here as a typed state-cell abstraction instead: each
// subsystem gets its own Cell[T] holding a fixed-size encoding of its own
// state, so no package ever holds a raw pointer into replicated memory —
// only short-lived value copies, taken out, mutated, and written back.
package state

import (
	"encoding"
	"errors"
	"sync"
)

// ErrOutOfRange is returned when a raw read or write would run past the end
// of a store's backing region (spec §4.1).
var ErrOutOfRange = errors.New("state: offset+size exceeds store size")

// RawStore holds three byte-identical-on-commit replicas of a fixed-size
// region and reconciles them by per-bit majority vote. It is the mechanism
// beneath Cell; most callers should use Cell instead of RawStore directly.
type RawStore struct {
	mu       sync.Mutex
	size     int
	replicas [3][]byte

	// OnSettle, if set, is invoked after every reconciliation pass (Settle,
	// Read and Write all route through settleLocked). Lets a caller count
	// actual reconciliations without this package depending on a metrics
	// library.
	OnSettle func()
}

// NewRawStore allocates a RawStore of the given size, all replicas zeroed.
func NewRawStore(size int) *RawStore {
	s := &RawStore{size: size}
	for i := range s.replicas {
		s.replicas[i] = make([]byte, size)
	}
	return s
}

// majority computes the per-bit majority of three equal-length byte slices.
// For bits a, b, c the majority is (a&b)|(b&c)|(a&c): true whenever at
// least two of the three inputs agree.
func majority(a, b, c []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = (a[i] & b[i]) | (b[i] & c[i]) | (a[i] & c[i])
	}
	return out
}

// Settle reconciles the three replicas in place (spec: SettleGlobal). It is
// safe to call opportunistically; Read and Write already settle before
// touching the backing bytes.
func (s *RawStore) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleLocked()
}

func (s *RawStore) settleLocked() {
	m := majority(s.replicas[0], s.replicas[1], s.replicas[2])
	copy(s.replicas[0], m)
	copy(s.replicas[1], m)
	copy(s.replicas[2], m)
	if s.OnSettle != nil {
		s.OnSettle()
	}
}

// Read reconciles, then copies size bytes starting at offset out of the
// (now byte-identical) replicas.
func (s *RawStore) Read(offset, size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 || size < 0 || offset+size > s.size {
		return nil, ErrOutOfRange
	}
	s.settleLocked()
	out := make([]byte, size)
	copy(out, s.replicas[0][offset:offset+size])
	return out, nil
}

// Write reconciles, then writes src into all three replicas at offset.
// Writing the same bytes into every replica trivially reestablishes the
// byte-equal postcondition (spec §8 invariant 1).
func (s *RawStore) Write(offset int, src []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 || offset+len(src) > s.size {
		return ErrOutOfRange
	}
	s.settleLocked()
	for i := range s.replicas {
		copy(s.replicas[i][offset:offset+len(src)], src)
	}
	return nil
}

// ReadAll reads the entire region.
func (s *RawStore) ReadAll() []byte {
	b, err := s.Read(0, s.size)
	if err != nil {
		// s.size never exceeds itself; unreachable.
		panic(err)
	}
	return b
}

// WriteAll overwrites the entire region.
func (s *RawStore) WriteAll(b []byte) error {
	if len(b) != s.size {
		return ErrOutOfRange
	}
	return s.Write(0, b)
}

// Size returns the region size in bytes.
func (s *RawStore) Size() int { return s.size }

// Replica returns a copy of one of the three replicas (index 0..2) without
// reconciling first. Intended for tests that need to inject a single-bit
// upset and then observe reconciliation correct it (spec §8 scenario S3).
func (s *RawStore) Replica(index int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.size)
	copy(out, s.replicas[index])
	return out
}

// SetReplica overwrites one replica directly, bypassing reconciliation.
// Test-only: production code always goes through Write.
func (s *RawStore) SetReplica(index int, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.replicas[index], b)
}

// binaryValue constrains a pointer-to-T to implement binary (de)serialization.
// This is the standard Go generics trick for "T has a pointer-receiver
// method set": PT is declared as *T plus the required interfaces, so
// PT(&value) always type-checks.
type binaryValue[T any] interface {
	*T
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Cell is a typed, triple-replicated slot for one subsystem's state. T is
// the value type (e.g. buf.Buffer, respoll.Queue); PT must be *T and must
// implement MarshalBinary/UnmarshalBinary with a fixed output length.
type Cell[T any, PT binaryValue[T]] struct {
	store *RawStore
}

// NewCell creates a Cell seeded with initial, sized to its encoded length.
func NewCell[T any, PT binaryValue[T]](initial T) *Cell[T, PT] {
	b, err := PT(&initial).MarshalBinary()
	if err != nil {
		panic("state: initial value failed to encode: " + err.Error())
	}
	s := NewRawStore(len(b))
	if err := s.WriteAll(b); err != nil {
		panic(err)
	}
	return &Cell[T, PT]{store: s}
}

// Read reconciles and decodes the current value.
func (c *Cell[T, PT]) Read() (T, error) {
	var out T
	if err := PT(&out).UnmarshalBinary(c.store.ReadAll()); err != nil {
		return out, err
	}
	return out, nil
}

// Update reads the current value, applies fn to a mutable copy, and writes
// the result back. fn returning an error aborts the write: the cell is left
// unchanged. This is the store's "read-modify-write" contract (spec §4.3
// step 4, §4.1): no caller ever holds a long-lived reference into the cell,
// only the short-lived copy passed to fn.
func (c *Cell[T, PT]) Update(fn func(*T) error) error {
	cur, err := c.Read()
	if err != nil {
		return err
	}
	if err := fn(&cur); err != nil {
		return err
	}
	b, err := PT(&cur).MarshalBinary()
	if err != nil {
		return err
	}
	return c.store.WriteAll(b)
}

// Settle reconciles the cell's replicas without reading or writing a value.
func (c *Cell[T, PT]) Settle() { c.store.Settle() }

// Raw exposes the underlying RawStore, for tests that need to inject a
// single-bit upset directly into one replica.
func (c *Cell[T, PT]) Raw() *RawStore { return c.store }
