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
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	rfid "github.com/sampleguard/go-rfid"
)

// Compile-time interface checks for the vendor adapters
var (
	_ rfid.ReaderProtocol = (*SpeedwayReader)(nil)
	_ rfid.ReaderProtocol = (*FX9600Reader)(nil)
)

// Reader display names used in events and logs
const (
	ReaderNameSpeedway = "Impinj Speedway"
	ReaderNameFX9600   = "Zebra FX9600"
)

// EventType classifies driver events
type EventType string

const (
	// EventReaderInitialized records a reader coming online.
	EventReaderInitialized EventType = "reader_initialized"
	// EventTagDetected records a tag observed during inventory.
	EventTagDetected EventType = "tag_detected"
	// EventTagRead records a completed addressed read.
	EventTagRead EventType = "tag_read"
	// EventTagWritten records a completed addressed write.
	EventTagWritten EventType = "tag_written"
	// EventInventoryStarted records the start of an inventory scan.
	EventInventoryStarted EventType = "inventory_started"
	// EventInventoryCompleted records the end of an inventory scan.
	EventInventoryCompleted EventType = "inventory_completed"
	// EventError records a failed operation.
	EventError EventType = "error"
	// EventConfigurationChanged records a configuration update.
	EventConfigurationChanged EventType = "configuration_changed"
	// EventNetworkDelay records the vendor round-trip delay incurred
	// before a command.
	EventNetworkDelay EventType = "network_delay"
	// EventProtocolMessage records one command/response round-trip.
	EventProtocolMessage EventType = "protocol_message"
)

// Event is one timestamped entry in the driver's event log. The fields are
// populated per event type with enough detail to reconstruct a timing and
// latency report after the fact.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Reader    string
	Protocol  string
	EPC       string
	Command   string
	Err       string
	Duration  time.Duration
	Size      int
	TagsFound int
	RSSI      int16
	Antenna   uint8
}

// DriverConfig tunes the orchestrator
type DriverConfig struct {
	// ScanWindow bounds each adapter's inventory scan
	ScanWindow time.Duration
	// EventBuffer is the capacity of the event channel; events beyond it
	// are dropped rather than blocking an operation
	EventBuffer int
}

// DefaultDriverConfig returns the standard orchestrator settings
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		ScanWindow:  500 * time.Millisecond,
		EventBuffer: 256,
	}
}

// Driver orchestrates both vendor readers and keeps an append-only event
// log. It owns its adapters exclusively; operations against the two readers
// are strictly sequenced, never concurrent.
type Driver struct {
	speedway *SpeedwayReader
	fx9600   *FX9600Reader
	events   chan Event
	sleep    func(time.Duration)
	log      zerolog.Logger
	config   DriverConfig
}

// NewDriver creates a driver with fresh disconnected readers and a nop
// logger.
func NewDriver(config DriverConfig) *Driver {
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultDriverConfig().EventBuffer
	}
	return &Driver{
		speedway: NewSpeedwayReader(),
		fx9600:   NewFX9600Reader(),
		events:   make(chan Event, config.EventBuffer),
		sleep:    time.Sleep,
		log:      zerolog.Nop(),
		config:   config,
	}
}

// SetLogger attaches a structured logger; every emitted event is also
// logged through it.
func (d *Driver) SetLogger(log zerolog.Logger) {
	d.log = log
}

// SetSleeper replaces the delay function used for vendor round-trip
// delays, mirroring Simulator.SetSleeper for zero-cost tests.
func (d *Driver) SetSleeper(sleep func(time.Duration)) {
	d.sleep = sleep
}

// Speedway returns the Speedway-class adapter
func (d *Driver) Speedway() *SpeedwayReader {
	return d.speedway
}

// FX9600 returns the FX-class adapter
func (d *Driver) FX9600() *FX9600Reader {
	return d.fx9600
}

// InitializeAll brings both readers online, emitting an initialization
// event per reader.
func (d *Driver) InitializeAll() error {
	d.emit(Event{
		Type:     EventReaderInitialized,
		Reader:   ReaderNameSpeedway,
		Protocol: d.speedway.ProtocolVersion(),
	})
	if err := d.speedway.Initialize(); err != nil {
		return err
	}

	d.emit(Event{
		Type:     EventReaderInitialized,
		Reader:   ReaderNameFX9600,
		Protocol: d.fx9600.ProtocolVersion(),
	})
	if err := d.fx9600.Initialize(); err != nil {
		return err
	}
	return nil
}

// PerformInventoryScan runs both adapters' scans sequentially and returns
// the union of observed EPCs, deduplicated.
func (d *Driver) PerformInventoryScan() ([]string, error) {
	seen := make(map[string]SimTag)

	for _, reader := range []struct {
		sim  *Simulator
		name string
	}{
		{name: ReaderNameSpeedway, sim: d.speedway.Simulator()},
		{name: ReaderNameFX9600, sim: d.fx9600.Simulator()},
	} {
		d.emit(Event{Type: EventInventoryStarted, Reader: reader.name})

		start := time.Now()
		tags, err := reader.sim.ScanTags(d.config.ScanWindow)
		if err != nil {
			d.emit(Event{Type: EventError, Reader: reader.name, Err: err.Error()})
			return nil, err
		}

		d.emit(Event{
			Type:      EventInventoryCompleted,
			Reader:    reader.name,
			TagsFound: len(tags),
			Duration:  time.Since(start),
		})

		for _, tag := range tags {
			if _, ok := seen[tag.EPC]; ok {
				continue
			}
			seen[tag.EPC] = tag
			d.emit(Event{
				Type:    EventTagDetected,
				Reader:  reader.name,
				EPC:     tag.EPC,
				RSSI:    tag.RSSI,
				Antenna: tag.Antenna,
			})
		}
	}

	epcs := make([]string, 0, len(seen))
	for epc := range seen {
		epcs = append(epcs, epc)
	}
	return epcs, nil
}

// ReadTagSpeedway reads a tag's user bank through the Speedway adapter
func (d *Driver) ReadTagSpeedway(epc string) ([]byte, error) {
	return d.readTag(d.speedway, ReaderNameSpeedway, epc)
}

// ReadTagFX9600 reads a tag's user bank through the FX-class adapter.
// The returned data still carries the Zebra one-byte bank prefix; callers
// strip it with StripBankPrefix.
func (d *Driver) ReadTagFX9600(epc string) ([]byte, error) {
	return d.readTag(d.fx9600, ReaderNameFX9600, epc)
}

// WriteTagSpeedway writes a tag's user bank through the Speedway adapter
func (d *Driver) WriteTagSpeedway(epc string, data []byte) error {
	return d.writeTag(d.speedway, ReaderNameSpeedway, epc, data)
}

// WriteTagFX9600 writes a tag's user bank through the FX-class adapter
func (d *Driver) WriteTagFX9600(epc string, data []byte) error {
	return d.writeTag(d.fx9600, ReaderNameFX9600, epc, data)
}

// readTag sleeps for the vendor round-trip delay, issues the command, and
// logs the measured timing. Errors are logged but never suppressed from
// the caller.
func (d *Driver) readTag(reader rfid.ReaderProtocol, name, epc string) ([]byte, error) {
	start := time.Now()

	delay := reader.SimulateDelay()
	d.sleep(delay)
	d.emit(Event{Type: EventNetworkDelay, Reader: name, Duration: delay})

	resp, err := reader.SendCommand(rfid.Command{
		Type: rfid.CmdReadTag,
		EPC:  epc,
		Bank: rfid.BankUser,
	})
	if err != nil {
		d.emit(Event{Type: EventError, Reader: name, EPC: epc, Err: err.Error()})
		return nil, err
	}
	elapsed := time.Since(start)

	d.emit(Event{
		Type:     EventProtocolMessage,
		Reader:   name,
		Command:  string(rfid.CmdReadTag),
		Duration: elapsed,
	})

	if !resp.OK {
		d.emit(Event{Type: EventError, Reader: name, EPC: epc, Err: resp.Err})
		return nil, rfid.NewReaderError("read tag", name, errors.New(resp.Err), rfid.ErrorTypeTransient)
	}

	d.emit(Event{
		Type:     EventTagRead,
		Reader:   name,
		EPC:      epc,
		Size:     len(resp.Data),
		Duration: elapsed,
	})
	return resp.Data, nil
}

func (d *Driver) writeTag(reader rfid.ReaderProtocol, name, epc string, data []byte) error {
	start := time.Now()

	delay := reader.SimulateDelay()
	d.sleep(delay)
	d.emit(Event{Type: EventNetworkDelay, Reader: name, Duration: delay})

	resp, err := reader.SendCommand(rfid.Command{
		Type: rfid.CmdWriteTag,
		EPC:  epc,
		Bank: rfid.BankUser,
		Data: data,
	})
	if err != nil {
		d.emit(Event{Type: EventError, Reader: name, EPC: epc, Err: err.Error()})
		return err
	}
	elapsed := time.Since(start)

	d.emit(Event{
		Type:     EventProtocolMessage,
		Reader:   name,
		Command:  string(rfid.CmdWriteTag),
		Duration: elapsed,
	})

	if !resp.OK {
		d.emit(Event{Type: EventError, Reader: name, EPC: epc, Err: resp.Err})
		return rfid.NewReaderError("write tag", name, errors.New(resp.Err), rfid.ErrorTypeTransient)
	}

	d.emit(Event{
		Type:     EventTagWritten,
		Reader:   name,
		EPC:      epc,
		Size:     len(data),
		Duration: elapsed,
	})
	return nil
}

// SetupDemoTags encodes a small set of sample records with the given codec
// and registers the resulting tag images with both readers' simulators, so
// that inventory scans on either reader observe the same population.
// Returns the EPCs of the seeded tags.
func (d *Driver) SetupDemoTags(codec *rfid.Codec) ([]string, error) {
	expiry := time.Now().UTC().AddDate(1, 0, 0)
	tempRange := [2]float64{2.0, 8.0}

	samples := []*rfid.Sample{
		rfid.NewSample("BLOOD-2026-0001", rfid.SampleMetadata{
			BatchNumber:       "BATCH-A42",
			ProductionDate:    time.Now().UTC(),
			ExpiryDate:        &expiry,
			Manufacturer:      "MedSupply Labs",
			ProductLine:       "Whole Blood",
			StorageConditions: "refrigerated",
			TemperatureRange:  &tempRange,
		}, "Warehouse A"),
		rfid.NewSample("VACC-2026-0377", rfid.SampleMetadata{
			BatchNumber:       "BATCH-V09",
			ProductionDate:    time.Now().UTC(),
			ExpiryDate:        &expiry,
			Manufacturer:      "BioVex",
			ProductLine:       "Influenza Vaccine",
			StorageConditions: "frozen",
			TemperatureRange:  &tempRange,
		}, "Cold Storage 3"),
	}

	epcs := make([]string, 0, len(samples))
	for i, sample := range samples {
		tag, err := sample.ToTag(codec)
		if err != nil {
			return nil, err
		}
		image, err := tag.MarshalBinary()
		if err != nil {
			return nil, err
		}

		epc := fmt.Sprintf("E200-%04d", i+1)
		d.speedway.Simulator().AddTag(NewSimTag(epc, sample.SampleID, image))
		d.fx9600.Simulator().AddTag(NewSimTag(epc, sample.SampleID, image))
		epcs = append(epcs, epc)
	}
	return epcs, nil
}

// ConfigureReader updates a reader's power and antenna selection by name
// ("speedway" or "fx9600") and records the change.
func (d *Driver) ConfigureReader(name string, power, antenna uint8) error {
	var reader rfid.ReaderProtocol
	switch name {
	case "speedway":
		reader = d.speedway
	case "fx9600":
		reader = d.fx9600
	default:
		return fmt.Errorf("unknown reader type: %s", name)
	}

	resp, err := reader.SendCommand(rfid.Command{
		Type:    rfid.CmdSetConfiguration,
		Power:   power,
		Antenna: antenna,
	})
	if err != nil {
		return err
	}
	if !resp.OK {
		d.emit(Event{Type: EventError, Reader: name, Err: resp.Err})
		return rfid.NewReaderError("set configuration", name, errors.New(resp.Err), rfid.ErrorTypePermanent)
	}

	d.emit(Event{Type: EventConfigurationChanged, Reader: name})
	return nil
}

// ReaderConfigFor fetches a reader's configuration document by name
// ("speedway" or "fx9600").
func (d *Driver) ReaderConfigFor(name string) (string, error) {
	var reader rfid.ReaderProtocol
	switch name {
	case "speedway":
		reader = d.speedway
	case "fx9600":
		reader = d.fx9600
	default:
		return "", fmt.Errorf("unknown reader type: %s", name)
	}

	resp, err := reader.SendCommand(rfid.Command{Type: rfid.CmdGetConfiguration})
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", rfid.NewReaderError("get configuration", name, errors.New(resp.Err), rfid.ErrorTypePermanent)
	}
	return string(resp.Data), nil
}

// StripBankPrefix removes the one-byte Zebra memory-bank prefix from an
// FX-class read response.
func StripBankPrefix(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	return data[1:]
}

// Events drains and returns every event logged so far. The log is local
// to this driver and consumed on demand.
func (d *Driver) Events() []Event {
	var out []Event
	for {
		select {
		case ev := <-d.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// emit appends an event to the log and mirrors it to the structured
// logger. A full buffer drops the event instead of blocking the operation
// that produced it.
func (d *Driver) emit(ev Event) {
	ev.Timestamp = time.Now()

	select {
	case d.events <- ev:
	default:
	}

	entry := d.log.Info().
		Str("type", string(ev.Type)).
		Str("reader", ev.Reader)
	if ev.EPC != "" {
		entry = entry.Str("epc", ev.EPC)
	}
	if ev.Err != "" {
		entry = entry.Str("error", ev.Err)
	}
	if ev.Duration > 0 {
		entry = entry.Dur("duration", ev.Duration)
	}
	entry.Msg("driver event")
}
