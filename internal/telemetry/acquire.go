// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry implements per-second sampling (C3) and the
// basic-telemetry running aggregates (C5). Both operate on the same
// buf.Block shape: acquisition produces one, the aggregator consumes a
// stream of them.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/sirsonik/CubeSat-Samples/internal/buf"
	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// mask12 keeps the low 12 bits of a raw 16-bit ADC count, stripping the
// address bits the bus leaves in the high nibble.
const mask12 = 0x0FFF

// Acquire reads every group in groups, in order, filling one telemetry
// block. A group that fails to read leaves its channels at zero (the
// output cursor still advances by Channels()) rather than aborting the
// whole acquisition; a returned error reports which groups failed, but the
// block is always fully populated and safe to use (spec §4.3 step 2, §7a).
//
// epoch is computed from rtc via epochFn in all cases, even when rtc
// itself failed: a zero epoch is still preferable to dropping the tick's
// acquisition entirely, and the RTC failure is reported via the returned
// error either way.
func Acquire(groups []drivers.ADCGroup, rtc drivers.RTC, epochFn drivers.EpochFunc) (buf.Block, error) {
	var block buf.Block

	rtcNow, rtcErr := rtc.Now()
	block.Epoch = epochFn(rtcNow)

	cursor := 0
	var failed []error
	for _, g := range groups {
		n := g.Channels()
		vals, err := g.Read()
		if err != nil {
			cursor += n
			failed = append(failed, fmt.Errorf("telemetry: acquire: %w", err))
			continue
		}
		for i := 0; i < n && cursor < buf.NumSensors; i++ {
			block.Readings[cursor] = vals[i] & mask12
			cursor++
		}
	}

	if rtcErr != nil {
		failed = append([]error{fmt.Errorf("telemetry: acquire: rtc: %w", rtcErr)}, failed...)
	}
	if len(failed) > 0 {
		return block, errors.Join(failed...)
	}
	return block, nil
}
