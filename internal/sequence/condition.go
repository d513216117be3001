// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sequence implements the pending-sequence executor (C8, spec
// §4.8): exit-condition evaluation, per-step wait-condition gating, opcode
// dispatch and abort semantics.
package sequence

import "github.com/sirsonik/CubeSat-Samples/internal/buf"

// Reserved sensor IDs (spec §3, §6): RelativeTime compares now minus the
// sequence's LastCmdTime; AbsoluteTime compares now directly.
const (
	RelativeTime uint8 = 254
	AbsoluteTime uint8 = 255
)

// Comparator is one of the five condition comparators (spec §3).
type Comparator uint8

const (
	Less Comparator = iota
	LessEqual
	Equal
	GreaterEqual
	Greater
)

// Condition is a single (sensor_id, comparator, value) triple (spec §3).
type Condition struct {
	SensorID   uint8
	Comparator Comparator
	Value      uint32
}

// CompoundOp joins a left and optional right Condition (spec §3).
type CompoundOp uint8

const (
	Just CompoundOp = iota
	And
	Or
)

// CompoundCondition is (left, op, right); Right is ignored when Op == Just
// (spec §3).
type CompoundCondition struct {
	Left  Condition
	Op    CompoundOp
	Right Condition
}

// sensorValue resolves a condition's left-hand value: the reserved sensor
// IDs read derived quantities, any other ID indexes the live telemetry
// snapshot (spec §4.8-Eval).
func sensorValue(sensorID uint8, now, lastCmdTime uint32, telemetry [buf.NumSensors]uint16) uint32 {
	switch sensorID {
	case RelativeTime:
		return now - lastCmdTime
	case AbsoluteTime:
		return now
	default:
		if int(sensorID) < len(telemetry) {
			return uint32(telemetry[sensorID])
		}
		return 0
	}
}

// compare applies a Comparator to (lhs cmp rhs).
func compare(lhs Comparator, v, target uint32) bool {
	switch lhs {
	case Less:
		return v < target
	case LessEqual:
		return v <= target
	case Equal:
		return v == target
	case GreaterEqual:
		return v >= target
	case Greater:
		return v > target
	default:
		return false
	}
}

// eval evaluates a single Condition against the current tick's inputs.
func eval(c Condition, now, lastCmdTime uint32, telemetry [buf.NumSensors]uint16) bool {
	v := sensorValue(c.SensorID, now, lastCmdTime, telemetry)
	return compare(c.Comparator, v, c.Value)
}

// referencesRelativeTime reports whether cc's left or (when combined)
// right side reads RelativeTime, the condition under which the spec has
// the executor latch LastCmdTime for the next wait evaluation (spec §4.8
// step 5).
func (cc CompoundCondition) referencesRelativeTime() bool {
	if cc.Left.SensorID == RelativeTime {
		return true
	}
	if cc.Op != Just && cc.Right.SensorID == RelativeTime {
		return true
	}
	return false
}

// Normalize freezes a relative-time condition to an absolute one at the
// moment of first evaluation (spec §4.8 step 2): sensor_id 254 on either
// side becomes sensor_id 255 with value += now. This is applied once to a
// sequence's exit condition before every evaluation; re-normalizing an
// already-absolute condition is a no-op.
func (cc *CompoundCondition) Normalize(now uint32) {
	if cc.Left.SensorID == RelativeTime {
		cc.Left.Value += now
		cc.Left.SensorID = AbsoluteTime
	}
	if cc.Op != Just && cc.Right.SensorID == RelativeTime {
		cc.Right.Value += now
		cc.Right.SensorID = AbsoluteTime
	}
}

// Evaluate evaluates a compound condition, returning whether it is
// triggered and, if so, its classification code (spec §4.8-Eval): JUST→1,
// AND→2, OR left-only→3, OR right-only→4, OR both→5. The classification
// is meaningful only for compound conditions used as an exit condition
// (spec §4.8 step 4); callers evaluating a wait condition may ignore it.
func Evaluate(cc CompoundCondition, now, lastCmdTime uint32, telemetry [buf.NumSensors]uint16) (bool, uint8) {
	left := eval(cc.Left, now, lastCmdTime, telemetry)
	switch cc.Op {
	case Just:
		if left {
			return true, 1
		}
		return false, 0
	case And:
		right := eval(cc.Right, now, lastCmdTime, telemetry)
		if left && right {
			return true, 2
		}
		return false, 0
	case Or:
		right := eval(cc.Right, now, lastCmdTime, telemetry)
		switch {
		case left && right:
			return true, 5
		case left:
			return true, 3
		case right:
			return true, 4
		default:
			return false, 0
		}
	default:
		return false, 0
	}
}
