// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// cubesatd drives the onboard-controller core end to end off a 1 Hz tick:
// telemetry acquisition, buffering, SD flush, beacon refresh, the
// operational state machine and its interleaved pending-sequence executor.
// In the absence of real I²C/FAT hardware (spec §1, out of scope) it wires
// the core to internal/drivers/simhw's standing simulated devices and
// internal/storage's plain-filesystem SD, and serves the ground-support
// Prometheus/OpenTelemetry surface (internal/obs) over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirsonik/CubeSat-Samples/internal/beacon"
	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/config"
	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
	"github.com/sirsonik/CubeSat-Samples/internal/drivers/simhw"
	"github.com/sirsonik/CubeSat-Samples/internal/obs"
	"github.com/sirsonik/CubeSat-Samples/internal/opstate"
	"github.com/sirsonik/CubeSat-Samples/internal/respoll"
	"github.com/sirsonik/CubeSat-Samples/internal/sequence"
	"github.com/sirsonik/CubeSat-Samples/internal/state"
	"github.com/sirsonik/CubeSat-Samples/internal/storage"
	"github.com/sirsonik/CubeSat-Samples/internal/telemetry"
	"github.com/sirsonik/CubeSat-Samples/internal/tick"
	"github.com/sirsonik/CubeSat-Samples/internal/uplink"
)

// daemon bundles every long-lived collaborator the 1 Hz tick callback
// closes over. Grouping them here keeps mainImpl itself a short wiring
// function, the same split the teacher's multi-flag cmd/bme280 uses
// between flag parsing and its run() helper.
type daemon struct {
	cfg *config.Config
	o   *obs.Observability

	groups []drivers.ADCGroup
	rtc    drivers.RTC

	bufCell  *state.Cell[buf.Buffer, *buf.Buffer]
	aggCell  *state.Cell[telemetry.Aggregator, *telemetry.Aggregator]
	respCell *state.Cell[respoll.Queue, *respoll.Queue]

	flusher *storage.Flusher
	machine *opstate.Machine
	seq     *sequence.Sequence
	msg     *beacon.Message

	seqCh chan uplink.Sequence
}

func newDaemon(cfg *config.Config, o *obs.Observability) *daemon {
	groups := make([]drivers.ADCGroup, len(cfg.ADCGroups))
	for i, g := range cfg.ADCGroups {
		groups[i] = simhw.NewADCGroup(g.Channels, uint64(7+i*13))
	}

	radio := &simhw.Radio{}
	journal := &simhw.Journal{}
	sd := storage.NewFileSD(cfg.TelemetryDir)

	timers := tick.NewCoordinator()
	dispatch := sequence.Dispatcher{
		Radio:     radio,
		Journal:   journal,
		Switch:    &simhw.Switch{},
		Processor: &simhw.Processor{},
		SD:        sd,
	}
	executor := &sequence.Executor{Dispatch: dispatch, Critical: timers.WithUninterruptible, Tracer: o.Tracer}

	machine := opstate.NewMachine(timers, executor)
	machine.BeaconEnabled = cfg.BeaconEnabled
	machine.LinkActive = radio.Active
	machine.RunDiagnostic = func() error { return sd.SelfCheck() }
	machine.BeaconPower = func(on bool) { log.Printf("cubesatd: beacon power -> %v", on) }
	machine.Transmit = func(m beacon.Message) {
		o.Metrics.BeaconRefreshes.Inc()
		log.Printf("cubesatd: beacon transmit %q", m.String())
	}

	msg := &beacon.Message{}
	msg.Init()

	d := &daemon{
		cfg:      cfg,
		o:        o,
		groups:   groups,
		rtc:      simhw.NewRTC(),
		bufCell:  state.NewCell[buf.Buffer, *buf.Buffer](buf.Buffer{}),
		aggCell:  state.NewCell[telemetry.Aggregator, *telemetry.Aggregator](telemetry.Aggregator{}),
		respCell: state.NewCell[respoll.Queue, *respoll.Queue](respoll.Queue{}),
		flusher:  storage.NewFlusher(sd),
		machine:  machine,
		seq:      sequence.NewSequence(),
		msg:      msg,
		seqCh:    make(chan uplink.Sequence, 1),
	}

	// Each Cell's RawStore reconciles its three replicas on every Read/
	// Update, independent of how many times that happens per tick; count
	// the reconciliations themselves rather than guessing one per tick.
	countReconcile := func() { o.Metrics.Reconciliations.Inc() }
	d.bufCell.Raw().OnSettle = countReconcile
	d.aggCell.Raw().OnSettle = countReconcile
	d.respCell.Raw().OnSettle = countReconcile

	return d
}

// onUplink loads a freshly-decoded ground sequence (spec §2: "ground
// command → link layer → ... C8 if sequence-class"). It does not itself
// force PENDING_PROCESS: tick's C3 path does that unconditionally every
// tick (spec §4.3 step 9), so the newly-loaded sequence is guaranteed a
// pending-sequence executor pass on the very next tick regardless of when
// within the tick period the uplink landed.
func (d *daemon) onUplink(s uplink.Sequence) {
	d.seq.Load(s.Exit, s.Commands)
	log.Printf("cubesatd: loaded uplinked sequence %s (%d commands)", s.Path, len(s.Commands))
}

// tick runs one full 1 Hz pass (spec §4.3, §4.9): acquire telemetry, fold it
// into the buffer (flushing first if already at capacity) and the basic-
// telemetry aggregator, dispatch the operational state machine's normal
// cycle, then force one PENDING_PROCESS pass so the pending-sequence
// executor always gets a chance to evaluate against this tick's telemetry
// (spec §4.3 step 9: C3 "transitions to PENDING_PROCESS... so C9 will step
// the sequence on this tick" on every tick, not only the one right after an
// uplink — a wait condition that only becomes true on a later tick, e.g. a
// relative-time wait, would otherwise never get re-evaluated).
func (d *daemon) tick() {
	ctx, span := d.o.Tracer.Start(context.Background(), "tick")
	defer span.End()

	_, acquireSpan := d.o.Tracer.Start(ctx, "acquire")
	block, err := telemetry.Acquire(d.groups, d.rtc, simhw.IdentityEpoch)
	acquireSpan.End()
	if err != nil {
		log.Printf("cubesatd: acquire: %v", err)
	}

	_, bufSpan := d.o.Tracer.Start(ctx, "buffer_and_flush")
	if err := d.bufCell.Update(func(b *buf.Buffer) error {
		if b.Count() >= buf.Capacity {
			if ferr := d.flusher.Flush(b); ferr != nil {
				d.o.Metrics.FlushFailures.Inc()
				log.Printf("cubesatd: flush: %v", ferr)
			}
		}
		return b.Put(block)
	}); err != nil {
		log.Printf("cubesatd: buffer update: %v", err)
	}
	bufSpan.End()

	_, aggSpan := d.o.Tracer.Start(ctx, "aggregate")
	if err := d.aggCell.Update(func(a *telemetry.Aggregator) error {
		a.Store(block, d.cfg.BatteryIndex)
		return nil
	}); err != nil {
		log.Printf("cubesatd: aggregator update: %v", err)
	}
	aggSpan.End()

	if err := d.respCell.Update(func(rp *respoll.Queue) error {
		d.machine.Step(block.Epoch, block.Readings, d.seq, rp, d.msg)
		d.machine.EnterPendingProcess()
		d.machine.Step(block.Epoch, block.Readings, d.seq, rp, d.msg)
		return nil
	}); err != nil {
		log.Printf("cubesatd: response-poll update: %v", err)
	}

	d.machine.Timers.Tick()

	if buffered, err := d.bufCell.Read(); err == nil {
		d.o.Metrics.BufferDepth.Set(float64(buffered.Count()))
	}
	if rp, err := d.respCell.Read(); err == nil {
		d.o.Metrics.ResponsePollSize.Set(float64(rp.Len()))
	}
}

func mainImpl() error {
	configPath := flag.String("config", "", "path to a mission configuration YAML file (default: built-in defaults)")
	flag.Parse()

	var cfg *config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("cubesatd: load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	o := obs.New("cubesatd")
	defer func() {
		if err := o.Shutdown(context.Background()); err != nil {
			log.Printf("cubesatd: tracer shutdown: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", o.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("cubesatd: metrics server: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("cubesatd: metrics server shutdown: %v", err)
			}
		}()
		log.Printf("cubesatd: serving /metrics on %s", cfg.MetricsAddr)
	}

	d := newDaemon(cfg, o)

	w, err := uplink.NewWatcher(cfg.UplinkDir)
	if err != nil {
		log.Printf("cubesatd: uplink watcher disabled: %v", err)
	} else {
		go w.Run(ctx, d.seqCh)
	}
	go func() {
		for s := range d.seqCh {
			d.onUplink(s)
		}
	}()

	ticker, err := tick.NewOSTicker(cfg.TickInterval)
	if err != nil {
		return fmt.Errorf("cubesatd: create ticker: %w", err)
	}

	log.Printf("cubesatd: running, tick interval %s", cfg.TickInterval)
	tick.Run(ctx, ticker, func(time.Time) { d.tick() })
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "cubesatd: %s.\n", err)
		os.Exit(1)
	}
}
