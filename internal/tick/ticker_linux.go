// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package tick

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// osTicker drives the 1 Hz tick off a Linux timerfd rather than a plain
// time.Ticker, grounded on this repo's sysfs-adjacent style of reaching
// hardware-adjacent timing through a thin syscall wrapper behind a
// portable interface: the core's "1 Hz tick" is as close as a userspace
// reimplementation gets to the MCU's hardware timer interrupt that spec
// §1 carves out as out-of-scope ("low-level timer ... primitives") — this
// is the process-level stand-in spec §9 calls for instead, not that
// hardware register access itself.
type osTicker struct {
	fd int
	ch chan time.Time
	done chan struct{}
}

// NewOSTicker returns a Ticker that fires once per interval using
// CLOCK_MONOTONIC via timerfd_create/timerfd_settime.
func NewOSTicker(interval time.Duration) (Ticker, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, fmt.Errorf("tick: timerfd_create: %w", err)
	}
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(int64(interval)),
		Value:    unix.NsecToTimespec(int64(interval)),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tick: timerfd_settime: %w", err)
	}

	t := &osTicker{fd: fd, ch: make(chan time.Time, 1), done: make(chan struct{})}
	go t.loop()
	return t, nil
}

func (t *osTicker) loop() {
	var buf [8]byte
	for {
		n, err := unix.Read(t.fd, buf[:])
		if err != nil || n != len(buf) {
			select {
			case <-t.done:
			default:
				// fd closed out from under us by Stop, or a transient
				// read error; either way there is nothing left to drive.
			}
			return
		}
		select {
		case t.ch <- time.Now():
		case <-t.done:
			return
		}
	}
}

func (t *osTicker) C() <-chan time.Time { return t.ch }

func (t *osTicker) Stop() {
	select {
	case <-t.done:
		return
	default:
		close(t.done)
	}
	unix.Close(t.fd)
}
