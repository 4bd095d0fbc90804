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

package rfid

import "time"

// CommandType enumerates the reader command vocabulary. The set is closed
// and versionless: adding a command is a breaking change to every adapter.
type CommandType string

const (
	// CmdInitialize connects the reader.
	CmdInitialize CommandType = "initialize"
	// CmdStartInventory begins an inventory session.
	CmdStartInventory CommandType = "start_inventory"
	// CmdStopInventory ends an inventory session.
	CmdStopInventory CommandType = "stop_inventory"
	// CmdReadTag reads a memory bank from an addressed tag.
	CmdReadTag CommandType = "read_tag"
	// CmdWriteTag writes a memory bank on an addressed tag.
	CmdWriteTag CommandType = "write_tag"
	// CmdGetConfiguration fetches the reader configuration.
	CmdGetConfiguration CommandType = "get_configuration"
	// CmdSetConfiguration updates power and antenna selection.
	CmdSetConfiguration CommandType = "set_configuration"
	// CmdGetStatus fetches reader status.
	CmdGetStatus CommandType = "get_status"
)

// MemoryBank is one of the four addressable regions on a tag
type MemoryBank byte

const (
	// BankReserved is bank 00 (kill/access passwords).
	BankReserved MemoryBank = 0x00
	// BankEPC is bank 01 (the tag's EPC).
	BankEPC MemoryBank = 0x01
	// BankTID is bank 10 (tag identification).
	BankTID MemoryBank = 0x02
	// BankUser is bank 11 (user data).
	BankUser MemoryBank = 0x03
)

// Command is a single reader request. EPC/Bank/Data apply to tag commands,
// Power/Antenna to set-configuration.
type Command struct {
	Type    CommandType
	EPC     string
	Data    []byte
	Bank    MemoryBank
	Power   uint8
	Antenna uint8
}

// Response is the single response shape shared by all adapters. Exactly one
// of Data/Err is populated, matching OK.
type Response struct {
	Timestamp    time.Time
	Err          string
	Data         []byte
	ResponseTime time.Duration
	OK           bool
}

// OKResponse builds a success response with the measured round-trip time
func OKResponse(data []byte, responseTime time.Duration) Response {
	return Response{
		OK:           true,
		Data:         data,
		ResponseTime: responseTime,
		Timestamp:    time.Now(),
	}
}

// ErrResponse builds a failure response preserving the human-readable
// message.
func ErrResponse(errMsg string, responseTime time.Duration) Response {
	return Response{
		OK:           false,
		Err:          errMsg,
		ResponseTime: responseTime,
		Timestamp:    time.Now(),
	}
}

// ReaderProtocol is the capability interface every vendor adapter
// implements. One generic command set, many hardware-specific behaviors:
// adapters hold their own configuration and simulator instance rather than
// sharing a base type.
type ReaderProtocol interface {
	// Initialize connects the reader; all commands except initialize and
	// get-status fail while disconnected
	Initialize() error

	// SendCommand executes one command and returns the framed response
	SendCommand(cmd Command) (Response, error)

	// ProtocolName returns the wire protocol family (e.g. "LLRP")
	ProtocolName() string

	// ProtocolVersion returns the vendor protocol version string
	ProtocolVersion() string

	// SimulateDelay returns the fixed per-vendor network round-trip delay.
	// This is distinct from the simulator's internal network latency: the
	// orchestrator sleeps for this before issuing a command.
	SimulateDelay() time.Duration
}

// Frequency is an RFID frequency band
type Frequency string

const (
	// FrequencyLF is 125-134 kHz.
	FrequencyLF Frequency = "low"
	// FrequencyHF is 13.56 MHz.
	FrequencyHF Frequency = "high"
	// FrequencyUHF is 860-960 MHz.
	FrequencyUHF Frequency = "ultra_high"
)

// ReaderConfig holds tunable reader settings
type ReaderConfig struct {
	Frequency   Frequency
	ReadTimeout time.Duration
	AntennaGain float64
	PowerLevel  uint8 // 0-100
}

// Capabilities describes what a reader model can do
type Capabilities struct {
	Frequencies        []Frequency
	MaxTagMemory       int
	ReadRangeCM        int
	WriteSpeed         time.Duration
	SupportsEncryption bool
}
