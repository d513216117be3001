// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tick_interval: 2s
battery_index: 21
beacon_enabled: false
adc_groups:
  - name: power
    channels: 20
  - name: payload
    channels: 24
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, 21, cfg.BatteryIndex)
	assert.False(t, cfg.BeaconEnabled)
	require.Len(t, cfg.ADCGroups, 2)
	assert.Equal(t, "power", cfg.ADCGroups[0].Name)
	assert.Equal(t, 20, cfg.ADCGroups[0].Channels)
	// Fields the override omits keep their Default() value.
	assert.Equal(t, "./telemetry", cfg.TelemetryDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
