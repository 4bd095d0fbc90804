// Copyright 2026 The SampleGuard Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hardware

import (
	"encoding/json"
	"errors"
	"time"

	rfid "github.com/sampleguard/go-rfid"
)

const speedwayNetworkDelay = 8 * time.Millisecond

// SpeedwayReader emulates an Impinj Speedway-class reader speaking LLRP
// (Low Level Reader Protocol). The profile favors fast network round-trips,
// large tag memory, and high radio power.
type SpeedwayReader struct {
	sim       *Simulator
	version   string
	config    rfid.ReaderConfig
	caps      rfid.Capabilities
	connected bool
}

// NewSpeedwayReader creates a disconnected Speedway-class reader with its
// own exclusively-owned simulator.
func NewSpeedwayReader() *SpeedwayReader {
	return &SpeedwayReader{
		config: rfid.ReaderConfig{
			Frequency:   rfid.FrequencyUHF,
			PowerLevel:  30,
			ReadTimeout: 2 * time.Second,
			AntennaGain: 6.0,
		},
		caps: rfid.Capabilities{
			SupportsEncryption: true,
			MaxTagMemory:       2048,
			ReadRangeCM:        900,
			WriteSpeed:         100 * time.Millisecond,
			Frequencies:        []rfid.Frequency{rfid.FrequencyUHF},
		},
		sim: NewSimulator(SimConfig{
			ReadDelay:    15 * time.Millisecond,
			WriteDelay:   120 * time.Millisecond,
			NetworkDelay: 8 * time.Millisecond,
		}),
		version: "LLRP-1.0.1",
	}
}

// Initialize connects the reader
func (r *SpeedwayReader) Initialize() error {
	resp, err := r.SendCommand(rfid.Command{Type: rfid.CmdInitialize})
	if err != nil {
		return err
	}
	if !resp.OK {
		return rfid.NewReaderError("initialize", "speedway", errors.New(resp.Err), rfid.ErrorTypePermanent)
	}
	return nil
}

// SendCommand executes one reader command. Simulator failures are
// translated into Response{OK:false} with the message preserved rather
// than propagated as raw errors.
func (r *SpeedwayReader) SendCommand(cmd rfid.Command) (rfid.Response, error) {
	start := time.Now()

	if cmd.Type == rfid.CmdInitialize {
		r.connected = true
		return rfid.OKResponse([]byte("Impinj Speedway reader initialized"), time.Since(start)), nil
	}
	if !r.connected && cmd.Type != rfid.CmdGetStatus {
		return rfid.ErrResponse(rfid.ErrReaderNotConnected.Error(), time.Since(start)), nil
	}

	switch cmd.Type {
	case rfid.CmdStartInventory:
		return rfid.OKResponse([]byte("inventory started"), time.Since(start)), nil

	case rfid.CmdStopInventory:
		return rfid.OKResponse([]byte("inventory stopped"), time.Since(start)), nil

	case rfid.CmdReadTag:
		data, err := r.sim.ReadTag(cmd.EPC)
		if err != nil {
			return rfid.ErrResponse(err.Error(), time.Since(start)), nil
		}
		return rfid.OKResponse(data, time.Since(start)), nil

	case rfid.CmdWriteTag:
		if err := r.sim.WriteTag(cmd.EPC, cmd.Data); err != nil {
			return rfid.ErrResponse(err.Error(), time.Since(start)), nil
		}
		return rfid.OKResponse([]byte("write successful"), time.Since(start)), nil

	case rfid.CmdGetConfiguration:
		doc, err := json.Marshal(map[string]any{
			"power_level":  r.config.PowerLevel,
			"frequency":    r.config.Frequency,
			"antenna_gain": r.config.AntennaGain,
		})
		if err != nil {
			return rfid.ErrResponse(err.Error(), time.Since(start)), nil
		}
		return rfid.OKResponse(doc, time.Since(start)), nil

	case rfid.CmdSetConfiguration:
		r.config.PowerLevel = cmd.Power
		return rfid.OKResponse([]byte("configuration updated"), time.Since(start)), nil

	case rfid.CmdGetStatus:
		doc, err := json.Marshal(map[string]any{
			"connected":     r.connected,
			"protocol":      r.version,
			"tags_in_range": r.sim.TagCount(),
		})
		if err != nil {
			return rfid.ErrResponse(err.Error(), time.Since(start)), nil
		}
		return rfid.OKResponse(doc, time.Since(start)), nil

	default:
		return rfid.ErrResponse("unsupported command: "+string(cmd.Type), time.Since(start)), nil
	}
}

// ProtocolName returns the wire protocol family
func (*SpeedwayReader) ProtocolName() string {
	return "LLRP"
}

// ProtocolVersion returns the vendor protocol version string
func (r *SpeedwayReader) ProtocolVersion() string {
	return r.version
}

// SimulateDelay returns the fixed Speedway network round-trip delay. It is
// independent of the simulator's internal network latency: the orchestrator
// sleeps for this before issuing a command.
func (*SpeedwayReader) SimulateDelay() time.Duration {
	return speedwayNetworkDelay
}

// Config returns the reader configuration
func (r *SpeedwayReader) Config() rfid.ReaderConfig {
	return r.config
}

// Capabilities returns what this reader model can do
func (r *SpeedwayReader) Capabilities() rfid.Capabilities {
	return r.caps
}

// Simulator exposes the underlying tag substrate for seeding
func (r *SpeedwayReader) Simulator() *Simulator {
	return r.sim
}
