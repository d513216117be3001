// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package opstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsonik/CubeSat-Samples/internal/beacon"
	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/respoll"
	"github.com/sirsonik/CubeSat-Samples/internal/sequence"
	"github.com/sirsonik/CubeSat-Samples/internal/tick"
)

func newTestMachine() *Machine {
	return NewMachine(tick.NewCoordinator(), &sequence.Executor{})
}

func TestDiagnosticCheckAdvancesOnSuccess(t *testing.T) {
	m := newTestMachine()
	m.RunDiagnostic = func() error { return nil }

	var tel [buf.NumSensors]uint16
	var msg beacon.Message
	msg.Init()
	m.Step(100, tel, nil, nil, &msg)

	assert.Equal(t, AllQuiet, m.StatMonState)
	assert.EqualValues(t, 0, m.DiagDay)
}

func TestDiagnosticCheckSkipsWhenAlreadyRunToday(t *testing.T) {
	m := newTestMachine()
	m.DiagDay = 2
	calls := 0
	m.RunDiagnostic = func() error { calls++; return nil }

	var tel [buf.NumSensors]uint16
	var msg beacon.Message
	msg.Init()
	m.Step(2*86400+10, tel, nil, nil, &msg)

	assert.Equal(t, AllQuiet, m.StatMonState)
	assert.Equal(t, 0, calls, "diagnostic must not re-run the same day")
}

func TestDiagnosticFailureRaisesAnomaly(t *testing.T) {
	m := newTestMachine()
	m.RunDiagnostic = func() error { return assert.AnError }

	var tel [buf.NumSensors]uint16
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, nil, nil, &msg)

	assert.Equal(t, Anomaly, m.MainState)
}

func TestAllQuietArmsTimeoutOnce(t *testing.T) {
	m := newTestMachine()
	m.StatMonState = AllQuiet
	poweredOff := 0
	m.BeaconPower = func(on bool) {
		if !on {
			poweredOff++
		}
	}

	var tel [buf.NumSensors]uint16
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, nil, nil, &msg)
	m.Step(0, tel, nil, nil, &msg)

	assert.Equal(t, 1, poweredOff, "beacon is only powered off once per arm")
	assert.Equal(t, AllQuiet, m.StatMonState)
}

func TestAllQuietTransitionsToBeaconOnAfterTimeout(t *testing.T) {
	m := newTestMachine()
	m.StatMonState = AllQuiet

	var tel [buf.NumSensors]uint16
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, nil, nil, &msg)
	for i := 0; i < AllQuietTicks; i++ {
		m.Timers.Tick()
	}
	assert.Equal(t, BeaconOn, m.StatMonState)
}

func TestBeaconOnRespectsAntennaContention(t *testing.T) {
	m := newTestMachine()
	m.StatMonState = BeaconOn
	m.BeaconEnabled = true
	m.LinkActive = func() bool { return true }
	transmitted := false
	m.Transmit = func(beacon.Message) { transmitted = true }

	var tel [buf.NumSensors]uint16
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, nil, nil, &msg)

	assert.False(t, transmitted, "must not transmit the beacon while the radio link is active")
}

func TestBeaconOnTransmitsWhenLinkIdle(t *testing.T) {
	m := newTestMachine()
	m.StatMonState = BeaconOn
	m.BeaconEnabled = true
	m.LinkActive = func() bool { return false }
	var transmitted beacon.Message
	m.Transmit = func(msg beacon.Message) { transmitted = msg }

	var tel [buf.NumSensors]uint16
	tel[19] = 100
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, nil, nil, &msg)

	assert.NotEqual(t, beacon.Message{}, transmitted)
}

func TestPendingProcessStepsExecutorThenReverts(t *testing.T) {
	m := newTestMachine()
	m.StatMonState = AllQuiet
	m.EnterPendingProcess()
	require.Equal(t, PendingProcess, m.StatMonState)

	seq := sequence.NewSequence()
	seq.Load(sequence.CompoundCondition{Left: sequence.Condition{SensorID: 255, Comparator: sequence.GreaterEqual, Value: 999999999}}, []sequence.Command{
		{CmdID: 1, Opcode: sequence.StartSequence},
	})

	var tel [buf.NumSensors]uint16
	rp := respoll.NewQueue()
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, seq, rp, &msg)

	assert.Equal(t, AllQuiet, m.StatMonState, "must revert to the pre-PENDING_PROCESS sub-state")
}

func TestEnterPendingProcessIsIdempotent(t *testing.T) {
	m := newTestMachine()
	m.StatMonState = BeaconOn
	m.EnterPendingProcess()
	m.EnterPendingProcess()
	assert.Equal(t, PendingProcess, m.StatMonState)
	// statMonPrevState must still be the original BeaconOn, not the
	// PendingProcess observed on the second (idempotent) call.
	seq := sequence.NewSequence()
	var tel [buf.NumSensors]uint16
	rp := respoll.NewQueue()
	var msg beacon.Message
	msg.Init()
	m.Step(0, tel, seq, rp, &msg)
	assert.Equal(t, BeaconOn, m.StatMonState)
}
