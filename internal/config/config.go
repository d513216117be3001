// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the mission configuration: the ADC channel map,
// sensor count, battery-sensor index, beacon enable default and tick
// interval that parameterize the otherwise-fixed core (spec §3, §4.5,
// §4.9). Loaded via gopkg.in/yaml.v3, carried over from the 99souls-
// ariadne example's runtime-config loader in this pack.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ADCGroupConfig names one addressable ADC bank and how many channels it
// exposes, in acquisition order (spec §4.3 step 2).
type ADCGroupConfig struct {
	Name     string `yaml:"name"`
	Channels int    `yaml:"channels"`
}

// Config is the mission configuration document.
type Config struct {
	// TickInterval is the period of the 1 Hz tick driving C3 (spec §2).
	// Named for clarity; production flight software fixes this at 1s, but
	// ground-support simulation runs benefit from speeding it up.
	TickInterval time.Duration `yaml:"tick_interval"`

	// ADCGroups lists the ADC banks Acquire walks in order each tick.
	ADCGroups []ADCGroupConfig `yaml:"adc_groups"`

	// BatteryIndex is the reading index the aggregator samples into the
	// battery-temperature delta ring every 10 seconds (spec §4.5).
	BatteryIndex int `yaml:"battery_index"`

	// BeaconEnabled is the beacon's default enablement (spec §4.9
	// BEACON_ON: "if beacon enabled").
	BeaconEnabled bool `yaml:"beacon_enabled"`

	// UplinkDir is watched for uploaded sequence files (internal/uplink).
	UplinkDir string `yaml:"uplink_dir"`

	// TelemetryDir is where per-day .TEL files are written (spec §4.4,
	// §6).
	TelemetryDir string `yaml:"telemetry_dir"`

	// MetricsAddr is the ground-support HTTP listener address serving
	// /metrics (internal/obs); empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the mission configuration used when no config file is
// supplied: a single 44-channel ADC group, one second ticks, battery index
// 21 (matching the beacon's SC_BATT_T wiring, spec §4.6), beacon enabled.
func Default() *Config {
	return &Config{
		TickInterval:  time.Second,
		ADCGroups:     []ADCGroupConfig{{Name: "main", Channels: 44}},
		BatteryIndex:  21,
		BeaconEnabled: true,
		UplinkDir:     "./uplink",
		TelemetryDir:  "./telemetry",
		MetricsAddr:   ":9100",
	}
}

// Load reads and parses the YAML mission configuration at path, starting
// from Default() so a config file only needs to override what it cares
// about.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
