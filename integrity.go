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

// Violation identifies an integrity rule a sample failed
type Violation string

const (
	// ViolationChecksumMismatch means the sample's own checksum field does
	// not match its contents.
	ViolationChecksumMismatch Violation = "checksum_mismatch"
	// ViolationExpired means the expiry date has passed.
	ViolationExpired Violation = "expired"
	// ViolationStatusInvalid means the sample is in a terminal compromised
	// state.
	ViolationStatusInvalid Violation = "status_invalid"
	// ViolationTemperatureOutOfRange means the declared temperature range
	// is structurally impossible (min >= max).
	ViolationTemperatureOutOfRange Violation = "temperature_out_of_range"
	// ViolationReadCountAnomaly means the read counter exceeds the hard
	// ceiling.
	ViolationReadCountAnomaly Violation = "read_count_anomaly"
	// ViolationTimestampAnomaly means the last-updated timestamp is in the
	// future.
	ViolationTimestampAnomaly Violation = "timestamp_anomaly"
)

// Warning identifies a non-critical observation about a sample
type Warning string

const (
	// WarningHighReadCount fires above half the read-count ceiling.
	WarningHighReadCount Warning = "high_read_count"
	// WarningApproachingExpiry fires within 30 days of expiry.
	WarningApproachingExpiry Warning = "approaching_expiry"
	// WarningLocationChanged is emitted by tracking callers when a sample
	// moves; Validate never produces it.
	WarningLocationChanged Warning = "location_changed"
)

// ValidationResult is the structured verdict for one sample. Valid is
// defined as an empty violation list; warnings never affect validity.
type ValidationResult struct {
	Violations []Violation
	Warnings   []Warning
	Valid      bool
}

// HasViolations reports whether any rule failed
func (r *ValidationResult) HasViolations() bool {
	return len(r.Violations) > 0
}

// HasWarnings reports whether any non-critical observation was made
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Contains reports whether a specific violation is present
func (r *ValidationResult) Contains(v Violation) bool {
	for _, got := range r.Violations {
		if got == v {
			return true
		}
	}
	return false
}

// ContainsWarning reports whether a specific warning is present
func (r *ValidationResult) ContainsWarning(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// Validator is a stateless rule evaluator over decoded sample records.
// Every rule is evaluated independently; one failure never short-circuits
// the others.
type Validator struct {
	// MaxReadCount is the hard ceiling for the read counter; half of it is
	// the warning threshold.
	MaxReadCount uint64
}

// NewValidator returns a validator with the standard read-count ceiling
func NewValidator() *Validator {
	return &Validator{MaxReadCount: 1000}
}

// Validate evaluates all integrity rules against a sample. It never fails:
// the verdict is carried entirely in the result.
func (v *Validator) Validate(s *Sample) ValidationResult {
	var result ValidationResult
	now := time.Now()

	if !s.VerifyIntegrity() {
		result.Violations = append(result.Violations, ViolationChecksumMismatch)
	}

	if s.IsExpired() {
		result.Violations = append(result.Violations, ViolationExpired)
	} else if s.Metadata.ExpiryDate != nil {
		untilExpiry := s.Metadata.ExpiryDate.Sub(now)
		if untilExpiry > 0 && untilExpiry <= 30*24*time.Hour {
			result.Warnings = append(result.Warnings, WarningApproachingExpiry)
		}
	}

	if s.Status == StatusCompromised {
		result.Violations = append(result.Violations, ViolationStatusInvalid)
	}

	// Only the higher threshold fires per observation
	switch {
	case s.ReadCount > v.MaxReadCount:
		result.Violations = append(result.Violations, ViolationReadCountAnomaly)
	case s.ReadCount > v.MaxReadCount/2:
		result.Warnings = append(result.Warnings, WarningHighReadCount)
	}

	if s.LastUpdated.After(now) {
		result.Violations = append(result.Violations, ViolationTimestampAnomaly)
	}

	// Structural sanity only; comparing against live sensor data belongs to
	// the temperature subsystem.
	if r := s.Metadata.TemperatureRange; r != nil && r[0] >= r[1] {
		result.Violations = append(result.Violations, ViolationTemperatureOutOfRange)
	}

	result.Valid = len(result.Violations) == 0
	return result
}
