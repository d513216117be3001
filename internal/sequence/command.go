// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequence

import (
	"errors"

	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// Opcode enumerates the sequence-step actions the executor can dispatch
// (spec §4.8-Dispatch).
type Opcode uint8

const (
	StartSequence Opcode = iota
	LoadRadioConfig
	ReloadRadioConfig
	SetSwitch
	ProcessorMode
	CheckSDCard
	ReformatSD
	EndSequence
)

// Params is the per-opcode argument union (spec §3: "params:union"). Only
// the fields relevant to a command's Opcode are populated; the others are
// ignored.
type Params struct {
	PCAID        uint8
	SwitchConfig uint8
	RadioConfig  drivers.RadioConfig
	PowerMode    drivers.PowerMode
}

// Command is one sequence step: an id, an opcode to dispatch, the wait
// condition gating it, and its opcode-specific parameters (spec §3).
type Command struct {
	CmdID  uint16
	Opcode Opcode
	Wait   CompoundCondition
	Params Params
}

// ErrFull is returned by Enqueue when the sequence's command queue is
// already at its bound.
var ErrFull = errors.New("sequence: command queue is full")

// MaxQueueLen bounds the number of pending commands a Sequence holds at
// once (spec §3: "bounded; FIFO peek/dequeue").
const MaxQueueLen = 32

// Sequence is the pending command queue plus its exit condition and
// timing state (spec §3, §4.8).
type Sequence struct {
	queue []Command
	Exit  CompoundCondition
	// Ready mirrors seq_ready_flag (spec §4.8 guard): the executor only
	// steps the sequence when Ready is true and the queue is non-empty.
	Ready       bool
	LastCmdTime uint32
}

// NewSequence returns an empty, not-ready sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Len reports the number of commands still queued.
func (s *Sequence) Len() int { return len(s.queue) }

// Enqueue appends cmd to the sequence's command queue.
func (s *Sequence) Enqueue(cmd Command) error {
	if len(s.queue) >= MaxQueueLen {
		return ErrFull
	}
	s.queue = append(s.queue, cmd)
	return nil
}

// Peek non-destructively returns the next command to run.
func (s *Sequence) Peek() (Command, bool) {
	if len(s.queue) == 0 {
		return Command{}, false
	}
	return s.queue[0], true
}

// Dequeue removes and returns the next command.
func (s *Sequence) Dequeue() (Command, bool) {
	cmd, ok := s.Peek()
	if !ok {
		return Command{}, false
	}
	s.queue = s.queue[1:]
	return cmd, true
}

// Clear empties the command queue (spec §4.8 step 4: invoked on exit-
// condition abort).
func (s *Sequence) Clear() {
	s.queue = nil
}

// Load replaces the queue wholesale and arms Ready, the entry point used
// when ground uplinks a new sequence (spec §2: "ground command → link
// layer → ... C8 if sequence-class").
func (s *Sequence) Load(exit CompoundCondition, commands []Command) {
	s.Exit = exit
	s.queue = append([]Command(nil), commands...)
	s.Ready = true
	s.LastCmdTime = 0
}
