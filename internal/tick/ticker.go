// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tick

import (
	"context"
	"time"
)

// Ticker is a portable 1 Hz tick source. NewOSTicker (platform-specific,
// see ticker_linux.go / ticker_other.go) is the production implementation;
// tests construct their own by driving Coordinator.Tick directly instead
// of going through a Ticker at all.
type Ticker interface {
	// C returns the channel a new tick arrives on.
	C() <-chan time.Time
	// Stop releases the ticker's resources. Safe to call more than once.
	Stop()
}

// Run drives onTick once per tick from ticker until ctx is canceled. This
// is the outermost loop of the flight-software core's main() (spec §5:
// "cooperative main loop plus a 1 Hz tick").
func Run(ctx context.Context, ticker Ticker, onTick func(time.Time)) {
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-ticker.C():
			if !ok {
				return
			}
			onTick(now)
		}
	}
}
