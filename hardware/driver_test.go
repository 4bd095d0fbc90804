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
	"testing"
	"time"

	rfid "github.com/sampleguard/go-rfid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDriver returns an initialized driver with zero-cost sleeps on the
// driver and both simulators.
func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	noop := func(time.Duration) {}

	d := NewDriver(DefaultDriverConfig())
	d.SetSleeper(noop)
	d.Speedway().Simulator().SetSleeper(noop)
	d.FX9600().Simulator().SetSleeper(noop)
	require.NoError(t, d.InitializeAll())
	return d
}

func eventsOfType(events []Event, et EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == et {
			out = append(out, ev)
		}
	}
	return out
}

func TestDriverInitializeAll(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)
	events := d.Events()

	inits := eventsOfType(events, EventReaderInitialized)
	require.Len(t, inits, 2)
	assert.Equal(t, ReaderNameSpeedway, inits[0].Reader)
	assert.Equal(t, ReaderNameFX9600, inits[1].Reader)
}

func TestDriverSetupDemoTags(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)
	codec := rfid.NewCodec([]byte("demo-key"))

	epcs, err := d.SetupDemoTags(codec)
	require.NoError(t, err)
	require.Len(t, epcs, 2)

	// Both simulators carry the same tag population
	assert.Equal(t, len(epcs), d.Speedway().Simulator().TagCount())
	assert.Equal(t, len(epcs), d.FX9600().Simulator().TagCount())
}

func TestDriverInventoryScanDeduplicates(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	// One tag visible to both readers, one exclusive to each
	shared := NewSimTag("E200-SHARED", "SAMPLE-001", []byte("data"))
	d.Speedway().Simulator().AddTag(shared)
	d.FX9600().Simulator().AddTag(shared)
	d.Speedway().Simulator().AddTag(NewSimTag("E200-IMPJ", "SAMPLE-002", []byte("data")))
	d.FX9600().Simulator().AddTag(NewSimTag("E200-ZEBR", "SAMPLE-003", []byte("data")))

	epcs, err := d.PerformInventoryScan()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"E200-SHARED", "E200-IMPJ", "E200-ZEBR"}, epcs)

	events := d.Events()
	assert.Len(t, eventsOfType(events, EventInventoryStarted), 2)
	assert.Len(t, eventsOfType(events, EventInventoryCompleted), 2)
	// One detection per unique EPC, not per observation
	assert.Len(t, eventsOfType(events, EventTagDetected), 3)
}

func TestDriverReadTagEventSequence(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)
	d.Speedway().Simulator().AddTag(NewSimTag("E200-0001", "SAMPLE-001", []byte("payload")))
	d.Events() // drop initialization events

	data, err := d.ReadTagSpeedway("E200-0001")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	events := d.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventNetworkDelay, events[0].Type)
	assert.Equal(t, speedwayNetworkDelay, events[0].Duration)
	assert.Equal(t, EventProtocolMessage, events[1].Type)
	assert.Equal(t, EventTagRead, events[2].Type)
	assert.Equal(t, "E200-0001", events[2].EPC)
}

func TestDriverReadTagErrorSurfaces(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	_, err := d.ReadTagSpeedway("E200-MISSING")
	require.Error(t, err)

	var readerErr *rfid.ReaderError
	require.ErrorAs(t, err, &readerErr)
	assert.Equal(t, ReaderNameSpeedway, readerErr.Reader)

	// The failure lands in the event log and still reaches the caller
	errs := eventsOfType(d.Events(), EventError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Err, "tag not found")
}

func TestDriverWriteReadAcrossReaders(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)
	d.FX9600().Simulator().AddTag(NewSimTag("E200-0001", "SAMPLE-001", []byte("old")))

	require.NoError(t, d.WriteTagFX9600("E200-0001", []byte("fresh")))

	raw, err := d.ReadTagFX9600("E200-0001")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), StripBankPrefix(raw))

	events := d.Events()
	assert.NotEmpty(t, eventsOfType(events, EventTagWritten))
	assert.NotEmpty(t, eventsOfType(events, EventTagRead))
}

func TestDriverConfigureReader(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)
	require.NoError(t, d.ConfigureReader("speedway", 22, 1))
	assert.Equal(t, uint8(22), d.Speedway().Config().PowerLevel)

	changes := eventsOfType(d.Events(), EventConfigurationChanged)
	require.Len(t, changes, 1)
	assert.Equal(t, "speedway", changes[0].Reader)

	err := d.ConfigureReader("unknown-vendor", 10, 1)
	require.Error(t, err)
}

func TestDriverReaderConfigFor(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)

	doc, err := d.ReaderConfigFor("speedway")
	require.NoError(t, err)
	assert.Contains(t, doc, "power_level")

	doc, err = d.ReaderConfigFor("fx9600")
	require.NoError(t, err)
	assert.Contains(t, doc, "reader_id")

	_, err = d.ReaderConfigFor("nonexistent")
	require.Error(t, err)
}

func TestDriverEventBufferDropsWhenFull(t *testing.T) {
	t.Parallel()

	d := NewDriver(DriverConfig{ScanWindow: 100 * time.Millisecond, EventBuffer: 1})
	d.SetSleeper(func(time.Duration) {})
	d.Speedway().Simulator().SetSleeper(func(time.Duration) {})
	d.FX9600().Simulator().SetSleeper(func(time.Duration) {})

	require.NoError(t, d.InitializeAll())

	// Two init events were emitted into a one-slot buffer
	events := d.Events()
	assert.Len(t, events, 1)
}

// Full path: encode a sample, write it through one vendor, read it back
// through the other, decode and validate.
func TestDriverEndToEndSampleFlow(t *testing.T) {
	t.Parallel()

	d := newTestDriver(t)
	codec := rfid.NewCodec([]byte("e2e-key"))
	validator := rfid.NewValidator()

	expiry := time.Now().UTC().AddDate(0, 6, 0)
	sample := rfid.NewSample("BLOOD-2026-0042", rfid.SampleMetadata{
		BatchNumber:    "BATCH-E2E",
		ProductionDate: time.Now().UTC(),
		ExpiryDate:     &expiry,
		Manufacturer:   "MedSupply Labs",
	}, "Warehouse A")
	sample.UpdateStatus(rfid.StatusInTransit)

	tag, err := sample.ToTag(codec)
	require.NoError(t, err)
	image, err := tag.MarshalBinary()
	require.NoError(t, err)

	// Register an empty carrier tag on both readers, then write through
	// the Speedway path
	d.Speedway().Simulator().AddTag(NewSimTag("E200-E2E", sample.SampleID, nil))
	d.FX9600().Simulator().AddTag(NewSimTag("E200-E2E", sample.SampleID, image))
	require.NoError(t, d.WriteTagSpeedway("E200-E2E", image))

	for _, read := range []struct {
		fn    func(string) ([]byte, error)
		strip bool
		name  string
	}{
		{name: "speedway", fn: d.ReadTagSpeedway},
		{name: "fx9600", fn: d.ReadTagFX9600, strip: true},
	} {
		t.Run(read.name, func(t *testing.T) {
			raw, err := read.fn("E200-E2E")
			require.NoError(t, err)
			if read.strip {
				raw = StripBankPrefix(raw)
			}

			parsed, err := rfid.UnmarshalTag(raw)
			require.NoError(t, err)

			restored, err := rfid.SampleFromTag(parsed, codec)
			require.NoError(t, err)
			assert.Equal(t, sample.SampleID, restored.SampleID)
			assert.Equal(t, rfid.StatusInTransit, restored.Status)

			result := validator.Validate(restored)
			assert.True(t, result.Valid)
			assert.False(t, result.HasWarnings())
		})
	}
}
