// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package beacon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitFillsNominal(t *testing.T) {
	var m Message
	m.Init()
	for i, c := range m {
		assert.Equal(t, byte('A'), c, "position %d", i)
	}
}

// Boundary values anchored at the alphabet's structurally forced edges
// (spec §8): the first and last letter, and the first and last digit.
func TestIntToBeaconCharBoundaries(t *testing.T) {
	assert.Equal(t, byte('A'), intToBeaconChar(0))
	assert.Equal(t, byte('Z'), intToBeaconChar(23))
	assert.Equal(t, byte('0'), intToBeaconChar(24))
	assert.Equal(t, byte('9'), intToBeaconChar(33))
	assert.Equal(t, byte('A'), intToBeaconChar(34), "out of range guards to nominal")
	assert.Equal(t, byte('A'), intToBeaconChar(1000))
}

// Invariant 5 (spec §8): monotone nondecreasing and bijective onto the
// 34-symbol alphabet.
func TestIntToBeaconCharMonotoneAndBijective(t *testing.T) {
	// Alphabet order puts every letter below every digit.
	rank := func(c byte) int {
		if c <= '9' {
			return int(c) + 256
		}
		return int(c)
	}
	seen := map[byte]bool{}
	prev := byte(0)
	for v := 0; v < 34; v++ {
		c := intToBeaconChar(v)
		assert.False(t, seen[c], "value %d produced a duplicate char %q", v, c)
		seen[c] = true
		if v > 0 {
			assert.Greater(t, rank(c), rank(prev), "must be strictly increasing in alphabet order at %d", v)
		}
		prev = c
	}
	assert.Len(t, seen, 34)
}

func TestIntToBeaconCharInverseRoundTrips(t *testing.T) {
	for v := 0; v < 34; v++ {
		c := intToBeaconChar(v)
		assert.Equal(t, v, beaconCharToInt(c))
	}
}

func TestTempCharBoundaries(t *testing.T) {
	assert.Equal(t, byte('A'), tempChar(0))
	assert.Equal(t, byte('A'), tempChar(1385))
	assert.Equal(t, byte('9'), tempChar(1385+32*33))
	assert.Equal(t, byte('9'), tempChar(65535), "clamps at the top")
}

// S6 (spec §8): updateSingle bumps E to F, rejects out-of-alphabet chars
// silently, and accepts a plain digit unchanged.
func TestUpdateSingleScenarioS6(t *testing.T) {
	var m Message
	m.Init()

	require := func(err error) { assert.NoError(t, err) }

	require(m.UpdateSingle(SCBattV, 'E'))
	assert.Equal(t, byte('F'), m[SCBattV])

	require(m.UpdateSingle(SCBattV, '*'))
	assert.Equal(t, byte('F'), m[SCBattV], "invalid char must leave the position unchanged")

	require(m.UpdateSingle(SCBattV, '5'))
	assert.Equal(t, byte('5'), m[SCBattV])
}

func TestUpdateSingleBumpsTToU(t *testing.T) {
	var m Message
	m.Init()
	assert.NoError(t, m.UpdateSingle(0, 'T'))
	assert.Equal(t, byte('U'), m[0])
}

// Invariant 4 (spec §8): every character after any update is a member of
// the restricted alphabet.
func TestUpdateTelemetryProducesOnlyAlphabetChars(t *testing.T) {
	var m Message
	m.Init()
	var reading [44]uint16
	for i := range reading {
		reading[i] = uint16(i * 97 % 4096)
	}
	m.UpdateTelemetry(reading)

	for i, c := range m {
		assert.Contains(t, alphabet, string(c), "position %d produced %q outside the alphabet", i, c)
	}
}
