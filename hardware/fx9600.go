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
	"fmt"
	"math/rand"
	"time"

	rfid "github.com/sampleguard/go-rfid"
)

const fx9600NetworkDelay = 6 * time.Millisecond

// FX9600Reader emulates a Zebra FX-class reader speaking Zebra's
// proprietary protocol. Compared to the Speedway profile it trades radio
// power and tag memory for faster writes, and its read responses carry a
// one-byte memory-bank prefix.
type FX9600Reader struct {
	sim       *Simulator
	version   string
	readerID  string
	config    rfid.ReaderConfig
	caps      rfid.Capabilities
	connected bool
}

// NewFX9600Reader creates a disconnected FX-class reader with its own
// exclusively-owned simulator and a randomized reader ID.
func NewFX9600Reader() *FX9600Reader {
	return &FX9600Reader{
		config: rfid.ReaderConfig{
			Frequency:   rfid.FrequencyUHF,
			PowerLevel:  27,
			ReadTimeout: 1500 * time.Millisecond,
			AntennaGain: 6.5,
		},
		caps: rfid.Capabilities{
			SupportsEncryption: true,
			MaxTagMemory:       512,
			ReadRangeCM:        600,
			WriteSpeed:         80 * time.Millisecond,
			Frequencies:        []rfid.Frequency{rfid.FrequencyUHF},
		},
		sim: NewSimulator(SimConfig{
			ReadDelay:    12 * time.Millisecond,
			WriteDelay:   90 * time.Millisecond,
			NetworkDelay: 6 * time.Millisecond,
		}),
		version:  "Zebra-2.0",
		readerID: fmt.Sprintf("FX9600-%06X", rand.Uint32()%(1<<24)), //nolint:gosec // Device naming, not crypto
	}
}

// Initialize connects the reader
func (r *FX9600Reader) Initialize() error {
	resp, err := r.SendCommand(rfid.Command{Type: rfid.CmdInitialize})
	if err != nil {
		return err
	}
	if !resp.OK {
		return rfid.NewReaderError("initialize", r.readerID, errors.New(resp.Err), rfid.ErrorTypePermanent)
	}
	return nil
}

// SendCommand executes one reader command with Zebra-flavored framing.
// Simulator failures become Response{OK:false} with the message preserved.
func (r *FX9600Reader) SendCommand(cmd rfid.Command) (rfid.Response, error) {
	start := time.Now()

	if cmd.Type == rfid.CmdInitialize {
		r.connected = true
		msg := fmt.Sprintf("Zebra FX9600 %s initialized", r.readerID)
		return rfid.OKResponse([]byte(msg), time.Since(start)), nil
	}
	if !r.connected && cmd.Type != rfid.CmdGetStatus {
		return rfid.ErrResponse(rfid.ErrReaderNotConnected.Error(), time.Since(start)), nil
	}

	switch cmd.Type {
	case rfid.CmdStartInventory:
		return rfid.OKResponse([]byte("inventory session started"), time.Since(start)), nil

	case rfid.CmdStopInventory:
		return rfid.OKResponse([]byte("inventory session stopped"), time.Since(start)), nil

	case rfid.CmdReadTag:
		data, err := r.sim.ReadTag(cmd.EPC)
		if err != nil {
			return rfid.ErrResponse(err.Error(), time.Since(start)), nil
		}
		// Zebra framing: response data is prefixed with the memory bank
		framed := make([]byte, 1+len(data))
		framed[0] = byte(cmd.Bank)
		copy(framed[1:], data)
		return rfid.OKResponse(framed, time.Since(start)), nil

	case rfid.CmdWriteTag:
		if err := r.sim.WriteTag(cmd.EPC, cmd.Data); err != nil {
			return rfid.ErrResponse(err.Error(), time.Since(start)), nil
		}
		return rfid.OKResponse([]byte("tag write completed"), time.Since(start)), nil

	case rfid.CmdGetConfiguration:
		doc, err := json.Marshal(map[string]any{
			"reader_id":    r.readerID,
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
		msg := fmt.Sprintf("configuration updated: power=%d, antenna=%d", cmd.Power, cmd.Antenna)
		return rfid.OKResponse([]byte(msg), time.Since(start)), nil

	case rfid.CmdGetStatus:
		doc, err := json.Marshal(map[string]any{
			"connected":     r.connected,
			"reader_id":     r.readerID,
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
func (*FX9600Reader) ProtocolName() string {
	return "Zebra"
}

// ProtocolVersion returns the vendor protocol version string
func (r *FX9600Reader) ProtocolVersion() string {
	return r.version
}

// SimulateDelay returns the fixed FX9600 network round-trip delay
func (*FX9600Reader) SimulateDelay() time.Duration {
	return fx9600NetworkDelay
}

// ReaderID returns the randomized per-device identifier
func (r *FX9600Reader) ReaderID() string {
	return r.readerID
}

// Config returns the reader configuration
func (r *FX9600Reader) Config() rfid.ReaderConfig {
	return r.config
}

// Capabilities returns what this reader model can do
func (r *FX9600Reader) Capabilities() rfid.Capabilities {
	return r.caps
}

// Simulator exposes the underlying tag substrate for seeding
func (r *FX9600Reader) Simulator() *Simulator {
	return r.sim
}
