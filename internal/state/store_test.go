// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3 (spec §8): replicas A=0x00, B=0xFF, C=0xFF for one byte. Read after
// SettleGlobal returns 0xFF; all three replicas become 0xFF.
func TestRawStoreSettleMajorityVote(t *testing.T) {
	s := NewRawStore(1)
	s.SetReplica(0, []byte{0x00})
	s.SetReplica(1, []byte{0xFF})
	s.SetReplica(2, []byte{0xFF})

	s.Settle()

	for i := 0; i < 3; i++ {
		assert.Equal(t, []byte{0xFF}, s.Replica(i), "replica %d", i)
	}
}

func TestRawStoreSettleMasksSingleBitUpset(t *testing.T) {
	s := NewRawStore(1)
	s.SetReplica(0, []byte{0b1010_1010})
	s.SetReplica(1, []byte{0b1010_1010})
	// Single bit flip in replica 2.
	s.SetReplica(2, []byte{0b1010_1011})

	got, err := s.Read(0, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(0b1010_1010), got[0])
	for i := 0; i < 3; i++ {
		assert.Equal(t, byte(0b1010_1010), s.Replica(i)[0])
	}
}

func TestRawStoreWriteEstablishesByteEquality(t *testing.T) {
	s := NewRawStore(4)
	require.NoError(t, s.Write(0, []byte{1, 2, 3, 4}))
	for i := 1; i < 3; i++ {
		assert.Equal(t, s.Replica(0), s.Replica(i))
	}
}

func TestRawStoreOutOfRange(t *testing.T) {
	s := NewRawStore(4)
	_, err := s.Read(2, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, s.Write(2, []byte{1, 2, 3}), ErrOutOfRange)
}

// counter is a minimal binaryValue-conformant type used to exercise Cell.
type counter struct {
	N uint32
}

func (c *counter) MarshalBinary() ([]byte, error) {
	return []byte{byte(c.N >> 24), byte(c.N >> 16), byte(c.N >> 8), byte(c.N)}, nil
}

func (c *counter) UnmarshalBinary(b []byte) error {
	c.N = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return nil
}

func TestCellUpdateRoundTrips(t *testing.T) {
	cell := NewCell[counter](counter{N: 1})

	require.NoError(t, cell.Update(func(c *counter) error {
		c.N += 41
		return nil
	}))

	got, err := cell.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 42, got.N)
}

func TestCellUpdateAbortsOnError(t *testing.T) {
	cell := NewCell[counter](counter{N: 7})
	sentinel := assert.AnError

	err := cell.Update(func(c *counter) error {
		c.N = 999
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	got, _ := cell.Read()
	assert.EqualValues(t, 7, got.N, "value must be unchanged after an aborted update")
}
