// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uplink models "ground station issues an uploaded command
// sequence" (spec §2) without the real radio link layer, which is out of
// scope (spec §1): a sequence is uplinked as a YAML document dropped into
// a watched directory, decoded into the same sequence.Sequence the
// executor (C8) runs.
package uplink

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
	"github.com/sirsonik/CubeSat-Samples/internal/sequence"
)

type conditionDoc struct {
	SensorID   uint8  `yaml:"sensor_id"`
	Comparator string `yaml:"comparator"`
	Value      uint32 `yaml:"value"`
}

type compoundDoc struct {
	Left  conditionDoc `yaml:"left"`
	Op    string       `yaml:"op"`
	Right conditionDoc `yaml:"right"`
}

type commandDoc struct {
	CmdID          uint16      `yaml:"cmd_id"`
	Opcode         string      `yaml:"opcode"`
	Wait           compoundDoc `yaml:"wait"`
	PCAID          uint8       `yaml:"pca_id"`
	SwitchConfig   uint8       `yaml:"switch_config"`
	RadioConfigHex string      `yaml:"radio_config_hex"`
	PowerMode      uint8       `yaml:"power_mode"`
}

type sequenceDoc struct {
	Exit     compoundDoc  `yaml:"exit"`
	Commands []commandDoc `yaml:"commands"`
}

var comparators = map[string]sequence.Comparator{
	"<":  sequence.Less,
	"<=": sequence.LessEqual,
	"=":  sequence.Equal,
	">=": sequence.GreaterEqual,
	">":  sequence.Greater,
}

var compoundOps = map[string]sequence.CompoundOp{
	"JUST": sequence.Just,
	"AND":  sequence.And,
	"OR":   sequence.Or,
}

var opcodes = map[string]sequence.Opcode{
	"START_SEQUENCE":      sequence.StartSequence,
	"LOAD_RADIO_CONFIG":   sequence.LoadRadioConfig,
	"RELOAD_RADIO_CONFIG": sequence.ReloadRadioConfig,
	"SET_SWITCH":          sequence.SetSwitch,
	"PROCESSOR_MODE":      sequence.ProcessorMode,
	"CHECK_SD_CARD":       sequence.CheckSDCard,
	"REFORMAT_SD":         sequence.ReformatSD,
	"END_SEQUENCE":        sequence.EndSequence,
}

func decodeCondition(d conditionDoc) (sequence.Condition, error) {
	cmp, ok := comparators[d.Comparator]
	if !ok {
		return sequence.Condition{}, fmt.Errorf("uplink: unknown comparator %q", d.Comparator)
	}
	return sequence.Condition{SensorID: d.SensorID, Comparator: cmp, Value: d.Value}, nil
}

func decodeCompound(d compoundDoc) (sequence.CompoundCondition, error) {
	left, err := decodeCondition(d.Left)
	if err != nil {
		return sequence.CompoundCondition{}, err
	}
	op, ok := compoundOps[d.Op]
	if !ok {
		return sequence.CompoundCondition{}, fmt.Errorf("uplink: unknown compound op %q", d.Op)
	}
	cc := sequence.CompoundCondition{Left: left, Op: op}
	if op != sequence.Just {
		right, err := decodeCondition(d.Right)
		if err != nil {
			return sequence.CompoundCondition{}, err
		}
		cc.Right = right
	}
	return cc, nil
}

func decodeCommand(d commandDoc) (sequence.Command, error) {
	opcode, ok := opcodes[d.Opcode]
	if !ok {
		return sequence.Command{}, fmt.Errorf("uplink: unknown opcode %q", d.Opcode)
	}
	wait, err := decodeCompound(d.Wait)
	if err != nil {
		return sequence.Command{}, fmt.Errorf("uplink: cmd %d wait: %w", d.CmdID, err)
	}
	var radioCfg drivers.RadioConfig
	if d.RadioConfigHex != "" {
		b, err := hex.DecodeString(d.RadioConfigHex)
		if err != nil {
			return sequence.Command{}, fmt.Errorf("uplink: cmd %d radio_config_hex: %w", d.CmdID, err)
		}
		radioCfg = b
	}
	return sequence.Command{
		CmdID:  d.CmdID,
		Opcode: opcode,
		Wait:   wait,
		Params: sequence.Params{
			PCAID:        d.PCAID,
			SwitchConfig: d.SwitchConfig,
			RadioConfig:  radioCfg,
			PowerMode:    drivers.PowerMode(d.PowerMode),
		},
	}, nil
}

// DecodeSequence parses a YAML sequence document into an exit condition
// and ordered command list, ready for sequence.Sequence.Load.
func DecodeSequence(data []byte) (sequence.CompoundCondition, []sequence.Command, error) {
	var doc sequenceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return sequence.CompoundCondition{}, nil, fmt.Errorf("uplink: parse sequence: %w", err)
	}
	exit, err := decodeCompound(doc.Exit)
	if err != nil {
		return sequence.CompoundCondition{}, nil, fmt.Errorf("uplink: exit condition: %w", err)
	}
	commands := make([]sequence.Command, len(doc.Commands))
	for i, cd := range doc.Commands {
		cmd, err := decodeCommand(cd)
		if err != nil {
			return sequence.CompoundCondition{}, nil, err
		}
		commands[i] = cmd
	}
	return exit, commands, nil
}

// LoadSequenceFile reads and decodes the sequence document at path.
func LoadSequenceFile(path string) (sequence.CompoundCondition, []sequence.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sequence.CompoundCondition{}, nil, fmt.Errorf("uplink: read %s: %w", path, err)
	}
	return DecodeSequence(data)
}
