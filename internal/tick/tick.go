// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tick implements the 1 Hz tick/timer coordinator (C10, spec
// §4.10): the periodic source that drives telemetry acquisition, the
// single-shot timeout registry the operational state machine (C9) arms
// its BEACON_ON/ALL_QUIET transitions against, and a scoped
// uninterruptible-priority primitive guaranteeing restoration on every
// exit path (spec §4.8, §5).
package tick

import "sync"

// timer is one armed single-shot countdown.
type timer struct {
	remaining int
	onExpire  func()
}

// Coordinator is the tick/timer coordinator (C10). Arm/Cancel/Tick are
// only ever called from the cooperative main loop (spec §5: "single-
// threaded cooperative main loop"), so the timer registry itself needs no
// locking; WithUninterruptible's mutex is the one piece of real
// cross-goroutine coordination, guarding against the one genuinely
// asynchronous collaborator the spec names — the radio-receive interrupt
// (spec §5: "the radio-link mode and challenge state are mutated only
// from the main loop, not from interrupts" — a radio-receive goroutine
// reading state must still serialize against a mid-step C8 body).
type Coordinator struct {
	timers map[string]*timer
	critMu sync.Mutex
}

// NewCoordinator returns an idle Coordinator with no timers armed.
func NewCoordinator() *Coordinator {
	return &Coordinator{timers: make(map[string]*timer)}
}

// Arm schedules onExpire to run after ticks more calls to Tick, under the
// given slot name. Arming a new timeout in an already-occupied slot
// implicitly cancels the prior one (spec §5: "arming a new one implicitly
// cancels prior timeouts in the same slot") — each state-machine sub-state
// owns at most one active timeout.
func (c *Coordinator) Arm(slot string, ticks int, onExpire func()) {
	c.timers[slot] = &timer{remaining: ticks, onExpire: onExpire}
}

// Armed reports whether slot currently has an active, unexpired timeout.
func (c *Coordinator) Armed(slot string) bool {
	_, ok := c.timers[slot]
	return ok
}

// Cancel clears slot's timeout, if any, without firing it.
func (c *Coordinator) Cancel(slot string) {
	delete(c.timers, slot)
}

// Tick advances every armed timer by one tick. Timers that reach zero
// remaining ticks fire their onExpire callback (and are removed) after
// every timer has been decremented, so one expiring timer's callback
// cannot observe another timer mid-decrement.
func (c *Coordinator) Tick() {
	var expired []func()
	for slot, t := range c.timers {
		t.remaining--
		if t.remaining <= 0 {
			expired = append(expired, t.onExpire)
			delete(c.timers, slot)
		}
	}
	for _, fn := range expired {
		if fn != nil {
			fn()
		}
	}
}

// WithUninterruptible runs fn with the coordinator's critical-section
// mutex held, restoring it on every exit path including a panic inside fn
// (spec §4.10: "with_uninterruptible { ... } guarantees restoration on
// every exit path"). The pending-sequence executor (C8) wraps its entire
// step body in this so a radio interrupt can never observe a
// half-normalized exit condition (spec §4.8, §5).
func (c *Coordinator) WithUninterruptible(fn func()) {
	c.critMu.Lock()
	defer c.critMu.Unlock()
	fn()
}
