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

// Package hardware emulates vendor RFID readers over an in-memory tag
// substrate with realistic timing and fault injection. No physical bus is
// touched; every reader in this package runs on a Simulator.
package hardware

import (
	"fmt"
	"math/rand"
	"time"

	rfid "github.com/sampleguard/go-rfid"
	"github.com/sampleguard/go-rfid/internal/syncutil"
)

// visibilityFloorRSSI is the signal strength below which a tag does not
// show up in inventory scans.
const visibilityFloorRSSI = -80

// scanCycleInterval is the poll interval inside ScanTags.
const scanCycleInterval = 10 * time.Millisecond

// SimTag is one simulated tag in a Simulator's registry. A SimTag is owned
// exclusively by one Simulator and mutated in place on reads and writes.
type SimTag struct {
	LastRead  time.Time
	EPC       string
	TagID     string
	Data      []byte
	ReadCount uint64
	ErrorRate float64 // 0.0 to 1.0, probability of a simulated fault
	RSSI      int16
	Antenna   uint8
}

// NewSimTag creates a tag with typical mid-field signal defaults
func NewSimTag(epc, tagID string, data []byte) SimTag {
	return SimTag{
		EPC:     epc,
		TagID:   tagID,
		Data:    data,
		RSSI:    -60,
		Antenna: 1,
	}
}

// SimConfig holds the three latencies the simulator models
type SimConfig struct {
	ReadDelay    time.Duration
	WriteDelay   time.Duration
	NetworkDelay time.Duration
}

// DefaultSimConfig returns latencies typical of a UHF reader on a LAN
func DefaultSimConfig() SimConfig {
	return SimConfig{
		ReadDelay:    10 * time.Millisecond,
		WriteDelay:   50 * time.Millisecond,
		NetworkDelay: 5 * time.Millisecond,
	}
}

// Simulator is an in-memory tag registry with configurable latency and
// per-tag stochastic error injection. Both the sleep function and the
// randomness source are injectable so tests can run the full timing model
// deterministically at zero wall-clock cost.
type Simulator struct {
	tags   map[string]*SimTag
	sleep  func(time.Duration)
	rng    *rand.Rand
	config SimConfig
	mu     syncutil.Mutex
}

// NewSimulator creates a simulator with real sleeping and a randomly
// seeded fault source.
func NewSimulator(config SimConfig) *Simulator {
	return &Simulator{
		tags:   make(map[string]*SimTag),
		config: config,
		sleep:  time.Sleep,
		rng:    rand.New(rand.NewSource(int64(rand.Uint64()))), //nolint:gosec // Fault injection, not crypto
	}
}

// SetSleeper replaces the delay function. Tests pass a no-op to run the
// timing model without wall-clock cost.
func (s *Simulator) SetSleeper(sleep func(time.Duration)) {
	s.mu.Lock()
	s.sleep = sleep
	s.mu.Unlock()
}

// SetRandom replaces the fault-injection randomness source, letting tests
// force deterministic gate outcomes with a seeded generator.
func (s *Simulator) SetRandom(rng *rand.Rand) {
	s.mu.Lock()
	s.rng = rng
	s.mu.Unlock()
}

// Config returns the simulator's latency configuration
func (s *Simulator) Config() SimConfig {
	return s.config
}

// AddTag registers a tag. Direct registry mutation, no delays.
func (s *Simulator) AddTag(tag SimTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := tag
	s.tags[tag.EPC] = &t
}

// RemoveTag deletes a tag from the registry. Tags are never removed
// implicitly; this is the only way out.
func (s *Simulator) RemoveTag(epc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, epc)
}

// Tags returns a snapshot copy of every registered tag
func (s *Simulator) Tags() []SimTag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SimTag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	return out
}

// TagCount returns the number of registered tags
func (s *Simulator) TagCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tags)
}

// ReadTag performs an addressed read: network latency, lookup, the error
// gate, read latency, then counter/timestamp mutation. The gate fires
// before any state changes, so a failed read leaves the tag untouched.
// Returns a copy of the payload.
func (s *Simulator) ReadTag(epc string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sleep(s.config.NetworkDelay)

	tag, ok := s.tags[epc]
	if !ok {
		return nil, rfid.NewReaderError("read tag", epc, rfid.ErrTagNotFound, rfid.ErrorTypePermanent)
	}

	if s.gateFires(tag.ErrorRate) {
		return nil, rfid.NewReaderError("read tag", epc, rfid.ErrSimulatedFault, rfid.ErrorTypeTransient)
	}

	s.sleep(s.config.ReadDelay)

	tag.ReadCount++
	tag.LastRead = time.Now()

	data := make([]byte, len(tag.Data))
	copy(data, tag.Data)
	return data, nil
}

// WriteTag performs an addressed write with the same network/error-gate
// sequencing as ReadTag, then replaces the payload.
func (s *Simulator) WriteTag(epc string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sleep(s.config.NetworkDelay)

	tag, ok := s.tags[epc]
	if !ok {
		return rfid.NewReaderError("write tag", epc, rfid.ErrTagNotFound, rfid.ErrorTypePermanent)
	}

	if s.gateFires(tag.ErrorRate) {
		return rfid.NewReaderError("write tag", epc, rfid.ErrSimulatedFault, rfid.ErrorTypeTransient)
	}

	s.sleep(s.config.WriteDelay)

	tag.Data = make([]byte, len(data))
	copy(tag.Data, data)
	tag.ReadCount++
	tag.LastRead = time.Now()
	return nil
}

// ScanTags enumerates visible tags for up to the given duration, polling in
// fixed cycles. A tag is observed when its RSSI clears the visibility floor
// and its error gate does not fire that cycle; observations are
// deduplicated by EPC. The scan ends early once every registered tag has
// been seen. A passive scan does not bump read counters; that distinguishes
// it from an addressed read.
func (s *Simulator) ScanTags(duration time.Duration) ([]SimTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sleep(s.config.NetworkDelay)

	start := time.Now()
	seen := make(map[string]SimTag)

	for time.Since(start) < duration && len(seen) < len(s.tags) {
		for epc, tag := range s.tags {
			if _, ok := seen[epc]; ok {
				continue
			}
			if tag.RSSI > visibilityFloorRSSI && !s.gateFires(tag.ErrorRate) {
				seen[epc] = *tag
			}
		}
		s.sleep(scanCycleInterval)
	}

	out := make([]SimTag, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	return out, nil
}

// gateFires evaluates a tag's error probability. Callers must hold s.mu.
func (s *Simulator) gateFires(errorRate float64) bool {
	if errorRate <= 0 {
		return false
	}
	if errorRate >= 1 {
		return true
	}
	return s.rng.Float64() < errorRate
}

// String describes the simulator for log output
func (s *Simulator) String() string {
	return fmt.Sprintf("simulator(%d tags, net=%s read=%s write=%s)",
		s.TagCount(), s.config.NetworkDelay, s.config.ReadDelay, s.config.WriteDelay)
}
