// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package drivers defines the narrow interfaces the flight-software core
// uses to reach hardware it does not itself implement: ADCs, the RTC, the
// SD card, the radio link and the switch/PCA bank. Real I²C/SPI/FAT/timer
// drivers, the radio frame codec and the command-parser dispatch tables are
// explicitly out of scope for the core (spec §1); this package is the seam
// between the core and those external collaborators.
package drivers

import "errors"

// ErrReadFailed is returned by an ADC or RTC read that could not complete.
// Acquisition treats this as a driver failure (spec §7a): it zeroes the
// affected channels and continues.
var ErrReadFailed = errors.New("drivers: read failed")

// ADCGroup is one addressable bank of analog channels, read together in a
// single bus transaction. A satellite has several of these wired to
// different subsystems (power board, payload, radio); Acquire (in
// package telemetry) walks a fixed, ordered list of ADCGroups to fill one
// telemetry block.
type ADCGroup interface {
	// Channels reports how many channels this group exposes.
	Channels() int
	// Read samples every channel in this group, in order, returning raw
	// 16-bit counts with the device's address bits still present in the
	// high nibble; the caller strips them down to 12 bits. On failure it
	// returns ErrReadFailed and the output must be treated as unusable for
	// every channel in this group.
	Read() ([]uint16, error)
}

// RTC is the satellite's real-time clock. Time is read once per tick and
// reused for every downstream computation that needs "now", per spec §4.3
// step 1 and §4.8 step 1.
type RTC interface {
	// Now returns the current wall-clock time as reported by the RTC
	// hardware. The core converts this to a mission epoch via EpochFunc.
	Now() (epochSeconds uint32, err error)
}

// EpochFunc converts an RTC reading into the mission epoch (seconds since
// mission start) used throughout the core. It corresponds to the original
// csunSatEpoch() helper, which is itself out of scope (spec glossary).
type EpochFunc func(rtcSeconds uint32) uint32

// SD abstracts the removable-storage filesystem primitives the flush path
// needs: open-for-append-or-create by name, write, close. A real
// implementation wraps a FAT driver; FileSD (storage package) wraps os.
type SD interface {
	// OpenAppend opens name for appending, creating it if it does not
	// exist, and returns a handle good for one or more Write calls.
	OpenAppend(name string) (SDFile, error)
	// SelfCheck runs a storage self-test, invoked by the CHECK_SD_CARD
	// sequence opcode (spec §4.8-Dispatch).
	SelfCheck() error
	// Reformat wipes and reformats the volume, invoked by REFORMAT_SD.
	Reformat() error
}

// SDFile is a single open file on the SD card.
type SDFile interface {
	Write(p []byte) (int, error)
	Close() error
}

// Radio is the subset of the link layer the sequence executor can drive
// directly: persisting/reapplying a radio configuration (LOAD_RADIO_CONFIG,
// RELOAD_RADIO_CONFIG) and reporting whether it is actively transmitting (so
// the beacon and radio never key the shared antenna at once, spec §5).
type Radio interface {
	Apply(cfg RadioConfig) error
	Active() bool
}

// RadioConfig is an opaque configuration blob applied to the radio by
// LOAD_RADIO_CONFIG/RELOAD_RADIO_CONFIG. The core treats it as opaque bytes;
// only the (out-of-scope) link layer interprets the contents.
type RadioConfig []byte

// ConfigJournal persists the one most-recently-loaded RadioConfig so
// RELOAD_RADIO_CONFIG can re-apply it later, standing in for the
// out-of-scope fault-logging "journal" (spec §1) for this one field.
type ConfigJournal interface {
	SetRadioConfig(cfg RadioConfig)
	RadioConfig() RadioConfig
}

// Switch is the PCA switch bank driven by the SET_SWITCH opcode.
type Switch interface {
	Set(pcaID uint8, config uint8) error
}

// PowerMode is the subset of CPU/processor power states the PROCESSOR_MODE
// opcode can select.
type PowerMode uint8

// Processor selects the CPU power mode, invoked by PROCESSOR_MODE.
type Processor interface {
	SetMode(mode PowerMode) error
}
