// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"encoding/binary"
	"errors"

	"github.com/sirsonik/CubeSat-Samples/internal/buf"
)

// AnomalyRingSize is the number of slots in the anomaly ring (spec §3).
const AnomalyRingSize = 5

// BattRingSize is the number of recent battery-temperature samples kept
// for delta computation (spec §3).
const BattRingSize = 3

// SensorAggregate is the running statistics kept for one sensor: sample
// count, observed extrema with their epochs, and a running mean (spec §3).
type SensorAggregate struct {
	N       uint32
	HiVal   uint16
	HiTime  uint32
	LowVal  uint16
	LowTime uint32
	Avg     uint16
}

// update folds one new reading into the aggregate (spec §3, §4.5): the
// first sample seeds both extrema (the Open Questions fix for the source's
// low=0 bug, spec §9); afterwards a tie or new extreme updates the
// timestamp too, so ties record the most recent occurrence.
func (s *SensorAggregate) update(v uint16, epoch uint32) {
	if s.N == 0 {
		s.HiVal, s.HiTime = v, epoch
		s.LowVal, s.LowTime = v, epoch
	} else {
		if v >= s.HiVal {
			s.HiVal, s.HiTime = v, epoch
		}
		if v <= s.LowVal {
			s.LowVal, s.LowTime = v, epoch
		}
	}
	acc := uint32(s.Avg)*uint32(s.N) + uint32(v)
	s.N++
	s.Avg = uint16(acc / uint32(s.N))
}

// AnomalyEntry is one slot of the anomaly ring.
type AnomalyEntry struct {
	Info uint16
	Time uint32
}

// Aggregator is the basic-telemetry aggregator (C5, spec §4.5): per-sensor
// running statistics, a battery-temperature delta ring, and an anomaly
// ring, exportable as a fixed-layout downlink blob.
type Aggregator struct {
	Sensors [buf.NumSensors]SensorAggregate

	BattRing      [BattRingSize]uint16
	BattSlot      uint8
	BattDeltaTemp uint16 // two's-complement int16 bit pattern

	Anomalies   [AnomalyRingSize]AnomalyEntry
	AnomalySlot uint8
}

// Store folds one telemetry block's readings into every sensor aggregate,
// and — every 10 seconds of mission epoch — into the battery-temperature
// delta ring (spec §4.5).
func (a *Aggregator) Store(block buf.Block, batteryIndex int) {
	for i, v := range block.Readings {
		a.Sensors[i].update(v, block.Epoch)
	}
	if block.Epoch%10 == 0 {
		a.storeBattDelta(block.Readings[batteryIndex])
	}
}

// storeBattDelta pushes one battery reading into the 3-slot ring and
// records delta = newest − (reading from 3 samples ago, same slot).
func (a *Aggregator) storeBattDelta(v uint16) {
	delta := int32(v) - int32(a.BattRing[a.BattSlot])
	a.BattRing[a.BattSlot] = v
	a.BattSlot = (a.BattSlot + 1) % BattRingSize
	a.BattDeltaTemp = uint16(int16(delta))
}

// StoreAnomaly records one anomaly occurrence into the ring, advancing the
// slot modulo AnomalyRingSize (spec §4.5).
func (a *Aggregator) StoreAnomaly(info uint16, epoch uint32) {
	a.Anomalies[a.AnomalySlot] = AnomalyEntry{Info: info, Time: epoch}
	a.AnomalySlot = (a.AnomalySlot + 1) % AnomalyRingSize
}

// Reset clears the aggregator but preserves the most recently observed
// battery temperature by replaying it three times into the delta ring, so
// the post-reset delta reads 0 instead of a garbage transient against a
// zeroed ring (spec §4.5, mirroring initBasicTelemetry in the original
// firmware).
func (a *Aggregator) Reset() {
	mostRecentSlot := (a.BattSlot + BattRingSize - 1) % BattRingSize
	recent := a.BattRing[mostRecentSlot]

	*a = Aggregator{}

	for i := 0; i < BattRingSize; i++ {
		a.storeBattDelta(recent)
	}
	// Each replay compared against a slot that still held zero; the ring
	// now holds recent in every slot, so the delta is 0.
	a.BattDeltaTemp = 0
}

// exportSize is the fixed downlink blob length: 44*14 + 2 + 1 + 5*6 = 649
// bytes (spec §6).
const exportSize = buf.NumSensors*14 + 2 + 1 + AnomalyRingSize*6

// Export serializes the aggregator as the basic-telemetry downlink blob
// (spec §6): per sensor hiVal|hiTime|lowVal|lowTime|avg, then
// battDeltaTemp, mainState (supplied by the caller, since operational
// state lives outside this package), then the anomaly ring.
func (a *Aggregator) Export(mainState uint8) []byte {
	out := make([]byte, 0, exportSize)
	var tmp [4]byte
	put16 := func(v uint16) {
		binary.BigEndian.PutUint16(tmp[:2], v)
		out = append(out, tmp[:2]...)
	}
	put32 := func(v uint32) {
		binary.BigEndian.PutUint32(tmp[:4], v)
		out = append(out, tmp[:4]...)
	}

	for _, s := range a.Sensors {
		put16(s.HiVal)
		put32(s.HiTime)
		put16(s.LowVal)
		put32(s.LowTime)
		put16(s.Avg)
	}
	put16(a.BattDeltaTemp)
	out = append(out, mainState)
	for _, an := range a.Anomalies {
		put16(an.Info)
		put32(an.Time)
	}
	return out
}

// cellSize is the internal state-cell encoding size (distinct from
// exportSize: it round-trips N and ring indices too, which the downlink
// blob intentionally omits).
const sensorCellSize = 4 + 2 + 4 + 2 + 4 + 2 // N, HiVal, HiTime, LowVal, LowTime, Avg
const cellSize = buf.NumSensors*sensorCellSize + BattRingSize*2 + 1 + 2 + AnomalyRingSize*6 + 1

// MarshalBinary encodes the full aggregator state for state.Cell use.
func (a Aggregator) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, cellSize)
	var tmp [4]byte
	put16 := func(v uint16) {
		binary.BigEndian.PutUint16(tmp[:2], v)
		out = append(out, tmp[:2]...)
	}
	put32 := func(v uint32) {
		binary.BigEndian.PutUint32(tmp[:4], v)
		out = append(out, tmp[:4]...)
	}

	for _, s := range a.Sensors {
		put32(s.N)
		put16(s.HiVal)
		put32(s.HiTime)
		put16(s.LowVal)
		put32(s.LowTime)
		put16(s.Avg)
	}
	for _, v := range a.BattRing {
		put16(v)
	}
	out = append(out, a.BattSlot)
	put16(a.BattDeltaTemp)
	for _, an := range a.Anomalies {
		put16(an.Info)
		put32(an.Time)
	}
	out = append(out, a.AnomalySlot)
	return out, nil
}

// UnmarshalBinary decodes an aggregator previously produced by
// MarshalBinary.
func (a *Aggregator) UnmarshalBinary(data []byte) error {
	if len(data) != cellSize {
		return errors.New("telemetry: invalid aggregator length")
	}
	off := 0
	get16 := func() uint16 {
		v := binary.BigEndian.Uint16(data[off : off+2])
		off += 2
		return v
	}
	get32 := func() uint32 {
		v := binary.BigEndian.Uint32(data[off : off+4])
		off += 4
		return v
	}

	for i := range a.Sensors {
		a.Sensors[i].N = get32()
		a.Sensors[i].HiVal = get16()
		a.Sensors[i].HiTime = get32()
		a.Sensors[i].LowVal = get16()
		a.Sensors[i].LowTime = get32()
		a.Sensors[i].Avg = get16()
	}
	for i := range a.BattRing {
		a.BattRing[i] = get16()
	}
	a.BattSlot = data[off]
	off++
	a.BattDeltaTemp = get16()
	for i := range a.Anomalies {
		a.Anomalies[i].Info = get16()
		a.Anomalies[i].Time = get32()
	}
	a.AnomalySlot = data[off]
	off++
	return nil
}
