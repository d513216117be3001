// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package simhw provides the standing implementations of package drivers'
// interfaces that cmd/cubesatd wires up in place of real I²C/SPI/FAT
// hardware, which is explicitly out of scope for this core (spec §1). Where
// drivertest's fakes exist to be poked at from table-driven tests, simhw's
// are meant to run unattended for as long as the daemon does: deterministic
// synthetic telemetry instead of fixed test values, and every mutating call
// logged instead of merely recorded.
package simhw

import (
	"log"
	"sync"
	"time"

	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// ADCGroup synthesizes a bank of channel readings from a free-running
// counter rather than sampling real analog hardware. Groups built with
// distinct strides produce different readings from the second Read on; the
// first Read (counter zero) returns i*97 mod 4096 for channel i in every
// group.
type ADCGroup struct {
	channels int
	stride   uint64
	counter  uint64
}

// NewADCGroup returns a simulated group exposing the given channel count.
func NewADCGroup(channels int, stride uint64) *ADCGroup {
	if stride == 0 {
		stride = 1
	}
	return &ADCGroup{channels: channels, stride: stride}
}

// Channels implements drivers.ADCGroup.
func (a *ADCGroup) Channels() int { return a.channels }

// Read implements drivers.ADCGroup, returning one synthetic 12-bit count
// per channel and then advancing the counter so the next tick's readings
// drift.
func (a *ADCGroup) Read() ([]uint16, error) {
	out := make([]uint16, a.channels)
	for i := range out {
		out[i] = uint16((a.counter*a.stride + uint64(i)*97) % 4096)
	}
	a.counter++
	return out, nil
}

// RTC reports wall-clock seconds since the process started, standing in
// for a hardware real-time clock.
type RTC struct {
	start time.Time
}

// NewRTC returns an RTC zeroed at the current time.
func NewRTC() *RTC {
	return &RTC{start: time.Now()}
}

// Now implements drivers.RTC.
func (r *RTC) Now() (uint32, error) {
	return uint32(time.Since(r.start).Seconds()), nil
}

// IdentityEpoch is a drivers.EpochFunc that treats the RTC reading as
// already being the mission epoch — appropriate when, as here, the RTC
// itself starts counting from mission start (the real csunSatEpoch offset,
// spec glossary, is out of scope).
func IdentityEpoch(rtcSeconds uint32) uint32 { return rtcSeconds }

// Radio logs every configuration it is asked to apply and reports itself
// as actively transmitting only after SetActive(true) — a stand-in good enough
// to exercise the LOAD_RADIO_CONFIG/RELOAD_RADIO_CONFIG opcodes and the
// beacon/radio antenna mutual-exclusion rule (spec §5) without a link
// layer.
type Radio struct {
	mu     sync.Mutex
	active bool
}

// Apply implements drivers.Radio.
func (r *Radio) Apply(cfg drivers.RadioConfig) error {
	log.Printf("simhw: radio: apply %d-byte config", len(cfg))
	return nil
}

// Active implements drivers.Radio.
func (r *Radio) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SetActive lets an operator (or a future real link-layer goroutine)
// report the radio as busy, so BEACON_ON correctly defers.
func (r *Radio) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
}

// Journal persists the most recently applied radio configuration in
// memory, standing in for the out-of-scope fault-logging journal for this
// one field (spec §1).
type Journal struct {
	mu  sync.Mutex
	cfg drivers.RadioConfig
}

// SetRadioConfig implements drivers.ConfigJournal.
func (j *Journal) SetRadioConfig(cfg drivers.RadioConfig) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cfg = cfg
}

// RadioConfig implements drivers.ConfigJournal.
func (j *Journal) RadioConfig() drivers.RadioConfig {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cfg
}

// Switch logs every PCA bank change it is asked to make.
type Switch struct {
	mu    sync.Mutex
	state map[uint8]uint8
}

// Set implements drivers.Switch.
func (s *Switch) Set(pcaID, config uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		s.state = map[uint8]uint8{}
	}
	s.state[pcaID] = config
	log.Printf("simhw: switch: pca %d -> config %d", pcaID, config)
	return nil
}

// Processor logs every requested power-mode change.
type Processor struct{}

// SetMode implements drivers.Processor.
func (p *Processor) SetMode(mode drivers.PowerMode) error {
	log.Printf("simhw: processor: mode -> %d", mode)
	return nil
}
