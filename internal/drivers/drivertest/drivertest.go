// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package drivertest implements fakes for package drivers, in the style of
// periph's conntest and devicestest packages: small, in-memory stand-ins
// good enough to drive the core's state machines in tests without real
// hardware.
package drivertest

import (
	"sync"

	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// ADCGroup is a fake drivers.ADCGroup returning a fixed, settable set of
// readings, optionally failing on command.
type ADCGroup struct {
	mu       sync.Mutex
	readings []uint16
	fail     bool
}

// NewADCGroup returns a fake group with the given channel count, all
// readings initially zero.
func NewADCGroup(channels int) *ADCGroup {
	return &ADCGroup{readings: make([]uint16, channels)}
}

// Channels implements drivers.ADCGroup.
func (a *ADCGroup) Channels() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.readings)
}

// Read implements drivers.ADCGroup.
func (a *ADCGroup) Read() ([]uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, drivers.ErrReadFailed
	}
	out := make([]uint16, len(a.readings))
	copy(out, a.readings)
	return out, nil
}

// Set updates the fake readings returned by the next Read.
func (a *ADCGroup) Set(values ...uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	copy(a.readings, values)
}

// SetFail forces the next Read calls to fail until cleared.
func (a *ADCGroup) SetFail(fail bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail = fail
}

// RTC is a fake drivers.RTC returning a settable, monotonically-advanceable
// clock reading.
type RTC struct {
	mu  sync.Mutex
	now uint32
	err error
}

// NewRTC returns a fake RTC starting at the given reading.
func NewRTC(start uint32) *RTC {
	return &RTC{now: start}
}

// Now implements drivers.RTC.
func (r *RTC) Now() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now, r.err
}

// Set overrides the next reading returned by Now.
func (r *RTC) Set(seconds uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = seconds
}

// Advance adds delta seconds to the current reading and returns the result.
func (r *RTC) Advance(delta uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now += delta
	return r.now
}

// SetErr forces Now to fail with err until cleared with SetErr(nil).
func (r *RTC) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Radio is a fake drivers.Radio recording every applied configuration.
type Radio struct {
	mu     sync.Mutex
	active bool
	Loaded []drivers.RadioConfig
}

// Apply implements drivers.Radio.
func (r *Radio) Apply(cfg drivers.RadioConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loaded = append(r.Loaded, cfg)
	return nil
}

// Active implements drivers.Radio.
func (r *Radio) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SetActive controls the value Active reports, to exercise the
// beacon/radio antenna mutual-exclusion rule (spec §5) in tests.
func (r *Radio) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = active
}

// Journal is a fake drivers.ConfigJournal.
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

// Switch is a fake drivers.Switch recording the last config set per PCA ID.
type Switch struct {
	mu    sync.Mutex
	State map[uint8]uint8
	Err   error
}

// Set implements drivers.Switch.
func (s *Switch) Set(pcaID, config uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.State == nil {
		s.State = map[uint8]uint8{}
	}
	s.State[pcaID] = config
	return nil
}

// SD is a fake drivers.SD backed by in-memory buffers keyed by file name,
// so storage tests don't need a real filesystem to verify flush behavior.
type SD struct {
	mu          sync.Mutex
	Files       map[string][]byte
	OpenErr     error
	SelfCheckOK bool
	ReformatOK  bool
}

// NewSD returns an empty fake SD card.
func NewSD() *SD {
	return &SD{Files: map[string][]byte{}, SelfCheckOK: true, ReformatOK: true}
}

// OpenAppend implements drivers.SD.
func (s *SD) OpenAppend(name string) (drivers.SDFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return &sdFile{sd: s, name: name}, nil
}

// SelfCheck implements drivers.SD.
func (s *SD) SelfCheck() error {
	if s.SelfCheckOK {
		return nil
	}
	return drivers.ErrReadFailed
}

// Reformat implements drivers.SD.
func (s *SD) Reformat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ReformatOK {
		return drivers.ErrReadFailed
	}
	s.Files = map[string][]byte{}
	return nil
}

type sdFile struct {
	sd   *SD
	name string
}

func (f *sdFile) Write(p []byte) (int, error) {
	f.sd.mu.Lock()
	defer f.sd.mu.Unlock()
	f.sd.Files[f.name] = append(f.sd.Files[f.name], p...)
	return len(p), nil
}

func (f *sdFile) Close() error { return nil }
