// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package tick

import "time"

// osTicker is the portable fallback for non-Linux hosts: a thin wrapper
// over time.Ticker so callers on any platform see the same Ticker
// interface as the Linux timerfd-backed implementation.
type osTicker struct {
	t *time.Ticker
}

// NewOSTicker returns a Ticker backed by time.Ticker.
func NewOSTicker(interval time.Duration) (Ticker, error) {
	return &osTicker{t: time.NewTicker(interval)}, nil
}

func (o *osTicker) C() <-chan time.Time { return o.t.C }

func (o *osTicker) Stop() { o.t.Stop() }
