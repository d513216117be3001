// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package opstate implements the operational state machine (C9, spec
// §4.9): it cycles quiescence, beacon transmission and daily diagnostics,
// and interleaves one pending-sequence executor step per tick.
package opstate

import (
	"github.com/sirsonik/CubeSat-Samples/internal/beacon"
	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/respoll"
	"github.com/sirsonik/CubeSat-Samples/internal/sequence"
	"github.com/sirsonik/CubeSat-Samples/internal/tick"
)

// MainState is the top-level operational state (spec §3).
type MainState uint8

const (
	Reset MainState = iota
	Startup
	SafeHold
	CommandResponse
	StatusMonitoring
	Anomaly
)

// StatMonState is the sub-state cycled while MainState == StatusMonitoring
// (spec §3, §4.9).
type StatMonState uint8

const (
	DiagnosticCheck StatMonState = iota
	AllQuiet
	BeaconOn
	PendingProcess
)

// Timeouts, in ticks (spec §4.9). The core assumes a 1 Hz tick (spec §2),
// so these are equivalently seconds.
const (
	AllQuietTicks = 140000
	BeaconOnTicks = 40000
)

const (
	allQuietSlot = "opstate.all_quiet"
	beaconOnSlot = "opstate.beacon_on"
)

// Machine is the operational state machine (C9). It owns no replicated
// state of its own beyond the enumerations above; the sequence, beacon
// message and response-poll queue it drives are supplied by the caller
// each Step (mirroring the store's "short-lived snapshot" ownership rule,
// spec §3).
type Machine struct {
	MainState        MainState
	StatMonState     StatMonState
	statMonPrevState StatMonState
	mainPrevState    MainState

	// DiagDay is the day-of-epoch (epoch/86400) the daily diagnostic last
	// completed successfully; DIAGNOSTIC_CHECK re-runs it once per day
	// (spec §4.9).
	DiagDay uint32

	// BeaconEnabled gates whether BEACON_ON actually powers and transmits
	// the beacon, vs. just cycling through the timeout (spec §4.6
	// "beacon enable default" is a mission-configuration value, §9).
	BeaconEnabled bool

	Timers   *tick.Coordinator
	Executor *sequence.Executor

	// Collaborators, all out of scope for the core itself (spec §1) and
	// all optional: a nil hook is simply skipped.
	DisablePowerSaving func()
	RunDiagnostic      func() error
	BeaconPower        func(on bool)
	Transmit           func(beacon.Message)
	// LinkActive reports whether the radio is presently transmitting, so
	// BEACON_ON never keys the shared antenna at the same time (spec §5).
	LinkActive func() bool
}

// NewMachine returns a Machine in StatusMonitoring/DiagnosticCheck, the
// state the original firmware's status-monitoring cycle always starts
// from once bring-up (RESET/STARTUP, out of scope here) completes. DiagDay
// starts at a value no epoch day reaches, so the first DIAGNOSTIC_CHECK
// pass always runs the diagnostic.
func NewMachine(timers *tick.Coordinator, exec *sequence.Executor) *Machine {
	return &Machine{
		MainState:    StatusMonitoring,
		StatMonState: DiagnosticCheck,
		DiagDay:      ^uint32(0),
		Timers:       timers,
		Executor:     exec,
	}
}

// EnterPendingProcess transitions StatMonState to PENDING_PROCESS,
// remembering the prior sub-state to revert to once the sequence
// executor's step completes (spec §4.3 step 9, §4.9). It is idempotent:
// calling it again while already in PENDING_PROCESS does nothing, so a
// repeated tick-driven acquisition never clobbers the saved prior state.
func (m *Machine) EnterPendingProcess() {
	if m.StatMonState != PendingProcess {
		m.statMonPrevState = m.StatMonState
		m.StatMonState = PendingProcess
	}
}

// Step runs one main-loop dispatch pass (spec §4.9). now is the tick's
// epoch; telemetry is the coherent per-tick snapshot of csLastTelemetry;
// seq, rp and msg are the pending sequence, response-poll queue and
// beacon message Step may read or mutate this pass.
func (m *Machine) Step(now uint32, telemetry [buf.NumSensors]uint16, seq *sequence.Sequence, rp *respoll.Queue, msg *beacon.Message) {
	if m.DisablePowerSaving != nil {
		m.DisablePowerSaving()
	}

	switch m.MainState {
	case StatusMonitoring:
		m.stepStatusMonitoring(now, telemetry, seq, rp, msg)
	default:
		// RESET, STARTUP, SAFE_HOLD, COMMAND_RESPONSE and ANOMALY recovery
		// are out of scope for the core (spec §1: "anomaly/safe-hold
		// recovery logic"); this machine only implements the
		// STATUS_MONITORING cycle spec §4.9 describes in full.
	}
}

func (m *Machine) stepStatusMonitoring(now uint32, telemetry [buf.NumSensors]uint16, seq *sequence.Sequence, rp *respoll.Queue, msg *beacon.Message) {
	switch m.StatMonState {
	case DiagnosticCheck:
		m.stepDiagnosticCheck(now)
	case AllQuiet:
		m.stepAllQuiet()
	case BeaconOn:
		m.stepBeaconOn(telemetry, msg)
	case PendingProcess:
		if m.Executor != nil && seq != nil {
			m.Executor.Step(seq, now, telemetry, rp, msg)
		}
		m.StatMonState = m.statMonPrevState
	default:
		m.raiseAnomaly()
	}
}

func (m *Machine) stepDiagnosticCheck(now uint32) {
	day := now / 86400
	if day == m.DiagDay {
		m.StatMonState = AllQuiet
		return
	}
	var err error
	if m.RunDiagnostic != nil {
		err = m.RunDiagnostic()
	}
	if err != nil {
		m.raiseAnomaly()
		return
	}
	m.DiagDay = day
	m.StatMonState = AllQuiet
}

func (m *Machine) stepAllQuiet() {
	if m.Timers.Armed(allQuietSlot) {
		return
	}
	if m.BeaconPower != nil {
		m.BeaconPower(false)
	}
	m.Timers.Arm(allQuietSlot, AllQuietTicks, func() {
		m.StatMonState = BeaconOn
	})
}

func (m *Machine) stepBeaconOn(telemetry [buf.NumSensors]uint16, msg *beacon.Message) {
	if m.Timers.Armed(beaconOnSlot) {
		return
	}
	if m.BeaconEnabled {
		if m.BeaconPower != nil {
			m.BeaconPower(true)
		}
		msg.UpdateTelemetry(telemetry)
		if m.Transmit != nil && (m.LinkActive == nil || !m.LinkActive()) {
			m.Transmit(*msg)
		}
	}
	m.Timers.Arm(beaconOnSlot, BeaconOnTicks, func() {
		m.StatMonState = DiagnosticCheck
	})
}

func (m *Machine) raiseAnomaly() {
	m.mainPrevState = m.MainState
	m.MainState = Anomaly
}
