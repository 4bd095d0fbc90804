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

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SampleStatus tracks a sample through its lifecycle
type SampleStatus string

const (
	// StatusInProduction is the initial state of a newly created sample.
	StatusInProduction SampleStatus = "in_production"
	// StatusInTransit marks a sample moving between locations.
	StatusInTransit SampleStatus = "in_transit"
	// StatusStored marks a sample at rest in storage.
	StatusStored SampleStatus = "stored"
	// StatusInUse marks a sample checked out for testing.
	StatusInUse SampleStatus = "in_use"
	// StatusConsumed marks a sample that has been used up.
	StatusConsumed SampleStatus = "consumed"
	// StatusDiscarded marks a sample that was disposed of.
	StatusDiscarded SampleStatus = "discarded"
	// StatusCompromised is terminal: the sample's integrity can no longer
	// be trusted.
	StatusCompromised SampleStatus = "compromised"
)

// SampleMetadata describes the manufactured batch a sample belongs to
type SampleMetadata struct {
	ProductionDate    time.Time   `json:"production_date"`
	ExpiryDate        *time.Time  `json:"expiry_date,omitempty"`
	TemperatureRange  *[2]float64 `json:"temperature_range,omitempty"` // min, max in Celsius
	BatchNumber       string      `json:"batch_number"`
	StorageConditions string      `json:"storage_conditions"`
	Manufacturer      string      `json:"manufacturer"`
	ProductLine       string      `json:"product_line"`
}

// Sample is a tracked medical sample. Its checksum covers the sample ID,
// batch number and last-updated timestamp; every mutation that re-stamps
// the timestamp recomputes it.
type Sample struct {
	CreatedAt   time.Time      `json:"created_at"`
	LastUpdated time.Time      `json:"last_updated"`
	SampleID    string         `json:"sample_id"`
	Location    string         `json:"location,omitempty"`
	Status      SampleStatus   `json:"status"`
	Metadata    SampleMetadata `json:"metadata"`
	Checksum    [32]byte       `json:"integrity_checksum"`
	ReadCount   uint64         `json:"read_count"`
	ID          uuid.UUID      `json:"id"`
}

// NewSample creates a sample in the in-production state with a fresh
// integrity checksum.
func NewSample(sampleID string, metadata SampleMetadata, location string) *Sample {
	now := time.Now().UTC()
	return &Sample{
		ID:          uuid.New(),
		SampleID:    sampleID,
		Status:      StatusInProduction,
		Metadata:    metadata,
		CreatedAt:   now,
		LastUpdated: now,
		Location:    location,
		Checksum:    sampleChecksum(sampleID, &metadata, now),
	}
}

// UpdateStatus transitions the sample and re-stamps its checksum
func (s *Sample) UpdateStatus(status SampleStatus) {
	s.Status = status
	s.LastUpdated = time.Now().UTC()
	s.Checksum = sampleChecksum(s.SampleID, &s.Metadata, s.LastUpdated)
}

// UpdateLocation records a new location without touching the checksum
// inputs beyond the timestamp.
func (s *Sample) UpdateLocation(location string) {
	s.Location = location
	s.LastUpdated = time.Now().UTC()
	s.Checksum = sampleChecksum(s.SampleID, &s.Metadata, s.LastUpdated)
}

// IncrementReadCount records one more tag access
func (s *Sample) IncrementReadCount() {
	s.ReadCount++
	s.LastUpdated = time.Now().UTC()
	s.Checksum = sampleChecksum(s.SampleID, &s.Metadata, s.LastUpdated)
}

// VerifyIntegrity recomputes the checksum and compares it to the stored one
func (s *Sample) VerifyIntegrity() bool {
	return sampleChecksum(s.SampleID, &s.Metadata, s.LastUpdated) == s.Checksum
}

// IsExpired reports whether the sample's expiry date has passed.
// Samples without an expiry date never expire.
func (s *Sample) IsExpired() bool {
	if s.Metadata.ExpiryDate == nil {
		return false
	}
	return time.Now().After(*s.Metadata.ExpiryDate)
}

// ToTag serializes the sample and encodes it into a tag memory image
func (s *Sample) ToTag(codec *Codec) (*Tag, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, &TagParseError{Op: "serialize sample", Err: err}
	}
	return NewTag(s.SampleID, data, codec)
}

// SampleFromTag decrypts a tag payload and deserializes the sample record.
// A digest mismatch surfaces as TagMemoryError before decryption; a payload
// that decrypts but does not parse is ErrInvalidSampleData.
func SampleFromTag(t *Tag, codec *Codec) (*Sample, error) {
	plaintext, err := t.DecryptPayload(codec)
	if err != nil {
		return nil, err
	}

	var s Sample
	if err := json.Unmarshal(plaintext, &s); err != nil {
		return nil, &TagParseError{Op: "deserialize sample", Err: ErrInvalidSampleData}
	}
	return &s, nil
}

// sampleChecksum digests the fields that identify a sample revision.
// The timestamp is truncated to seconds so a round-trip through the tag
// wire format cannot perturb it.
func sampleChecksum(sampleID string, metadata *SampleMetadata, at time.Time) [32]byte {
	h := sha256.New()
	h.Write([]byte(sampleID))
	h.Write([]byte(metadata.BatchNumber))

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(at.Unix())) //nolint:gosec // Unix seconds are non-negative here
	h.Write(ts[:])

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
