// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequence

import (
	"context"
	"log"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/sirsonik/CubeSat-Samples/internal/beacon"
	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/respoll"
)

// Executor is the pending-sequence executor (C8, spec §4.8).
type Executor struct {
	Dispatch Dispatcher

	// PayloadReset is invoked before the command queue is emptied on an
	// exit-condition abort (spec §4.8 step 4: "invoke payload reset
	// hook"). Out of scope for this core (spec §1); may be nil.
	PayloadReset func()

	// Critical, if set, wraps the entire step body in a scoped
	// uninterruptible section (spec §4.8: "raise CPU to uninterruptible
	// priority for the full body; restore on exit"), typically
	// tick.Coordinator.WithUninterruptible. A nil Critical runs the step
	// body directly, appropriate for tests and single-goroutine callers.
	Critical func(func())

	// Tracer, if set, spans each Step call that passes the guard. A nil
	// Tracer (the zero value, and every test's Executor) skips tracing.
	Tracer oteltrace.Tracer
}

// Step runs one pending-sequence executor pass (spec §4.8). It is a no-op
// unless the guard holds: the sequence has at least one queued command and
// Ready is set. now is the single RTC read reused for every comparison in
// this step (spec §4.8 step 1); telemetry is the tick's coherent snapshot
// of csLastTelemetry (spec §9 design note).
func (e *Executor) Step(seq *Sequence, now uint32, telemetry [buf.NumSensors]uint16, rp *respoll.Queue, msg *beacon.Message) {
	if seq.Len() == 0 || !seq.Ready {
		return
	}

	if e.Tracer != nil {
		_, span := e.Tracer.Start(context.Background(), "sequence.step")
		defer span.End()
	}

	run := func() { e.step(seq, now, telemetry, rp, msg) }
	if e.Critical != nil {
		e.Critical(run)
	} else {
		run()
	}
}

func (e *Executor) step(seq *Sequence, now uint32, telemetry [buf.NumSensors]uint16, rp *respoll.Queue, msg *beacon.Message) {
	seq.Exit.Normalize(now)

	cmd, ok := seq.Peek()
	if !ok {
		return
	}

	if triggered, class := Evaluate(seq.Exit, now, seq.LastCmdTime, telemetry); triggered {
		if e.PayloadReset != nil {
			e.PayloadReset()
		}
		seq.Clear()
		rp.Abort(class, now)
		if err := msg.UpdateSingle(beacon.SoftwareState, 'D'); err != nil {
			log.Printf("sequence: beacon update on abort: %v", err)
		}
		return
	}

	triggered, _ := Evaluate(cmd.Wait, now, seq.LastCmdTime, telemetry)
	if !triggered {
		return
	}

	seq.Dequeue()
	if err := e.Dispatch.Dispatch(cmd, msg); err != nil {
		log.Printf("sequence: dispatch cmd %d: %v", cmd.CmdID, err)
	}
	rp.UpdatePending(respoll.Entry{CmdID: cmd.CmdID, Epoch: now, Type: respoll.PendingComplete, Status: 0})

	if next, ok := seq.Peek(); ok && next.Wait.referencesRelativeTime() {
		seq.LastCmdTime = now
	}
}
