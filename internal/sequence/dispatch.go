// Copyright 2026 The CubeSat-Samples Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequence

import (
	"fmt"
	"log"

	"github.com/sirsonik/CubeSat-Samples/internal/beacon"
	"github.com/sirsonik/CubeSat-Samples/internal/drivers"
)

// Dispatcher wires the executor to the out-of-scope drivers each opcode
// needs (spec §4.8-Dispatch). A field left nil is only safe if no command
// in the sequence ever exercises the opcode that needs it.
type Dispatcher struct {
	Radio     drivers.Radio
	Journal   drivers.ConfigJournal
	Switch    drivers.Switch
	Processor drivers.Processor
	SD        drivers.SD
}

// Dispatch runs one command's action, following spec §4.8-Dispatch's table:
// START_SEQUENCE is a no-op marker, END_SEQUENCE flips the software-state
// beacon character to 'C', an unknown opcode is logged and ignored rather
// than treated as an error. REFORMAT_SD only calls SD.Reformat; no separate
// storage re-init step follows it.
func (d Dispatcher) Dispatch(cmd Command, msg *beacon.Message) error {
	switch cmd.Opcode {
	case StartSequence:
		return nil
	case LoadRadioConfig:
		d.Journal.SetRadioConfig(cmd.Params.RadioConfig)
		return d.Radio.Apply(cmd.Params.RadioConfig)
	case ReloadRadioConfig:
		return d.Radio.Apply(d.Journal.RadioConfig())
	case SetSwitch:
		return d.Switch.Set(cmd.Params.PCAID, cmd.Params.SwitchConfig)
	case ProcessorMode:
		return d.Processor.SetMode(cmd.Params.PowerMode)
	case CheckSDCard:
		return d.SD.SelfCheck()
	case ReformatSD:
		if err := d.SD.Reformat(); err != nil {
			return fmt.Errorf("sequence: reformat sd: %w", err)
		}
		return nil
	case EndSequence:
		return msg.UpdateSingle(beacon.SoftwareState, 'C')
	default:
		log.Printf("sequence: unknown opcode %d for cmd %d, ignoring", cmd.Opcode, cmd.CmdID)
		return nil
	}
}
