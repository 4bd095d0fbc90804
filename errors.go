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
	"errors"
	"fmt"
)

// Error categories for better error handling and retry logic
var (
	// Reader errors - transport/hardware level
	ErrReaderNotConnected = errors.New("reader not connected")
	ErrTagNotFound        = errors.New("tag not found")
	ErrSimulatedFault     = errors.New("simulated tag fault")
	ErrNoTagsInRange      = errors.New("no tags in range")

	// Codec errors - cipher and payload level
	ErrCiphertextTooShort = errors.New("ciphertext too short (need at least 32 bytes: 16 IV + 16 encrypted)")
	ErrCipher             = errors.New("cipher operation failed")
	ErrIntegrityMismatch  = errors.New("integrity digest mismatch")
	ErrTagDataTruncated   = errors.New("incomplete tag data")
	ErrInvalidSampleData  = errors.New("invalid sample data")
)

// ErrorType represents the category of error for retry logic
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable error
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable error
	ErrorTypePermanent
)

// ReaderError wraps hardware/transport-level errors with operation context.
// Simulated faults, missing tags, and connectivity failures all surface as
// ReaderError values; nothing at this level is process-fatal.
type ReaderError struct {
	Err       error  // Underlying error
	Op        string // Operation that failed
	Reader    string // Reader or simulator identifier
	Type      ErrorType
	Retryable bool
}

func (e *ReaderError) Error() string {
	if e.Reader != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Reader, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ReaderError) Unwrap() error {
	return e.Err
}

// NewReaderError creates a reader error with consistent formatting
func NewReaderError(op, reader string, err error, errType ErrorType) *ReaderError {
	return &ReaderError{
		Op:        op,
		Reader:    reader,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient,
	}
}

// EncryptionError wraps cipher-level failures. Padding validation failures
// and wrong-key failures are deliberately reported identically: the two are
// indistinguishable to an attacker and must stay that way.
type EncryptionError struct {
	Err error
	Op  string
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption %s: %v", e.Op, e.Err)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

func newEncryptionError(op string, err error) *EncryptionError {
	return &EncryptionError{Op: op, Err: err}
}

// TagParseError indicates malformed wire bytes for a tag
type TagParseError struct {
	Err error
	Op  string
}

func (e *TagParseError) Error() string {
	return fmt.Sprintf("tag parse %s: %v", e.Op, e.Err)
}

func (e *TagParseError) Unwrap() error {
	return e.Err
}

// TagMemoryError indicates corrupted or tampered tag memory.
// A digest mismatch is a hard integrity failure and is never auto-repaired.
type TagMemoryError struct {
	Err error
	Op  string
}

func (e *TagMemoryError) Error() string {
	return fmt.Sprintf("tag memory %s: %v", e.Op, e.Err)
}

func (e *TagMemoryError) Unwrap() error {
	return e.Err
}

// IntegrityError carries a full validation result for a sample that failed
// one or more integrity rules. Callers can inspect the individual violations.
type IntegrityError struct {
	Result ValidationResult
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("sample integrity violation: %d violation(s)", len(e.Result.Violations))
}

// IsRetryable returns true if the error is potentially retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re *ReaderError
	if errors.As(err, &re) {
		return re.Retryable
	}

	// Simulated faults model transient RF conditions
	return errors.Is(err, ErrSimulatedFault)
}

// IsFatal returns true if the error indicates the reader is unusable and
// the current batch should stop. This is distinct from IsRetryable which
// indicates whether a single operation can be retried.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var re *ReaderError
	if errors.As(err, &re) {
		return re.Type == ErrorTypePermanent
	}

	return errors.Is(err, ErrReaderNotConnected)
}

// IsIntegrityFailure returns true if the error represents tampered or
// corrupted data rather than a transport problem. User-visible handling
// keeps the two distinguishable.
func IsIntegrityFailure(err error) bool {
	var me *TagMemoryError
	if errors.As(err, &me) {
		return true
	}
	var ie *IntegrityError
	return errors.As(err, &ie)
}
