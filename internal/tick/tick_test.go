// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArmFiresAfterNTicks(t *testing.T) {
	c := NewCoordinator()
	fired := 0
	c.Arm("s", 3, func() { fired++ })

	assert.True(t, c.Armed("s"))
	c.Tick()
	c.Tick()
	assert.Equal(t, 0, fired, "must not fire before the Nth tick")
	c.Tick()
	assert.Equal(t, 1, fired)
	assert.False(t, c.Armed("s"), "timer is consumed once it fires")
}

func TestArmOverwritesSameSlot(t *testing.T) {
	c := NewCoordinator()
	firstFired, secondFired := false, false
	c.Arm("s", 1, func() { firstFired = true })
	c.Arm("s", 2, func() { secondFired = true })

	c.Tick()
	assert.False(t, firstFired, "the first timeout must be canceled, not fired")
	assert.False(t, secondFired)
	c.Tick()
	assert.True(t, secondFired)
}

func TestCancel(t *testing.T) {
	c := NewCoordinator()
	fired := false
	c.Arm("s", 1, func() { fired = true })
	c.Cancel("s")
	c.Tick()
	assert.False(t, fired)
	assert.False(t, c.Armed("s"))
}

func TestWithUninterruptibleRestoresOnPanic(t *testing.T) {
	c := NewCoordinator()
	func() {
		defer func() { recover() }()
		c.WithUninterruptible(func() { panic("boom") })
	}()

	ran := false
	c.WithUninterruptible(func() { ran = true })
	assert.True(t, ran, "the critical section must be released even after a panic")
}
