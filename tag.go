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

// Package rfid provides secure tag encoding and integrity validation for
// RFID-tracked medical samples: an AES-256-CBC codec with SHA-256 key
// derivation, a fixed tag memory layout with a ciphertext integrity digest,
// a vendor-neutral reader protocol, and a rule-based sample validator.
// Emulated vendor readers live in the hardware subpackage.
package rfid

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"
)

// Tag memory header layout (16 bytes). Bytes 3-15 are reserved.
const (
	headerOffsetTagType    = 0
	headerOffsetVersion    = 1
	headerOffsetEncryption = 2

	// TagTypeSample marks a tag carrying an encrypted sample record
	TagTypeSample byte = 0x01
	// TagFormatVersion is the current memory layout version
	TagFormatVersion byte = 0x01
)

// Metadata block layout (16 bytes): bytes 0-7 hold a big-endian unix
// timestamp set at encode time, bytes 8-15 hold a big-endian read counter.
const (
	metaOffsetTimestamp = 0
	metaOffsetReadCount = 8
)

// TagMemoryLayout is the fixed memory layout written to a tag: a 16-byte
// header, the variable-length encrypted payload, a 32-byte integrity digest
// over the encrypted payload, and a 16-byte metadata block.
//
// The digest must equal Sum(Payload) for the tag to be considered
// uncorrupted; a mismatch is a hard integrity failure.
type TagMemoryLayout struct {
	Payload         []byte   `json:"payload"`
	Header          [16]byte `json:"header"`
	IntegrityDigest [32]byte `json:"integrity_digest"`
	Metadata        [16]byte `json:"metadata"`
}

// Tag is a logical RFID tag: an identifier plus the memory image that gets
// written to hardware.
type Tag struct {
	TagID             string          `json:"tag_id"`
	Memory            TagMemoryLayout `json:"memory_layout"`
	EncryptionEnabled bool            `json:"encryption_enabled"`
}

// NewTag encrypts payload with the codec and assembles a tag memory image.
// The integrity digest covers the ciphertext, not the plaintext, so
// corruption is detectable without the key.
func NewTag(tagID string, payload []byte, codec *Codec) (*Tag, error) {
	encrypted, err := codec.Encrypt(payload)
	if err != nil {
		return nil, err
	}

	t := &Tag{
		TagID:             tagID,
		EncryptionEnabled: true,
	}
	t.Memory.Payload = encrypted
	t.Memory.IntegrityDigest = codec.Sum(encrypted)
	t.Memory.Header[headerOffsetTagType] = TagTypeSample
	t.Memory.Header[headerOffsetVersion] = TagFormatVersion
	t.Memory.Header[headerOffsetEncryption] = 0x01

	binary.BigEndian.PutUint64(
		t.Memory.Metadata[metaOffsetTimestamp:metaOffsetTimestamp+8],
		uint64(time.Now().Unix()),
	)

	return t, nil
}

// DecryptPayload verifies the integrity digest and then decrypts the
// payload. Integrity is checked before confidentiality is unwound: a
// tampered payload fails with TagMemoryError before the cipher runs.
func (t *Tag) DecryptPayload(codec *Codec) ([]byte, error) {
	if codec.Sum(t.Memory.Payload) != t.Memory.IntegrityDigest {
		return nil, &TagMemoryError{Op: "decrypt payload", Err: ErrIntegrityMismatch}
	}
	return codec.Decrypt(t.Memory.Payload)
}

// ReadCount returns the read counter stored in the metadata block
func (t *Tag) ReadCount() uint64 {
	return binary.BigEndian.Uint64(t.Memory.Metadata[metaOffsetReadCount:])
}

// IncrementReadCount bumps the read counter in the metadata block
func (t *Tag) IncrementReadCount() {
	count := t.ReadCount()
	binary.BigEndian.PutUint64(t.Memory.Metadata[metaOffsetReadCount:], count+1)
}

// EncodedAt returns the timestamp stamped into the metadata block at
// encode time.
func (t *Tag) EncodedAt() time.Time {
	secs := binary.BigEndian.Uint64(t.Memory.Metadata[metaOffsetTimestamp : metaOffsetTimestamp+8])
	return time.Unix(int64(secs), 0) //nolint:gosec // Unix seconds fit int64 until year 292277026596
}

// MarshalBinary serializes the tag for writing to hardware: a 4-byte
// big-endian length prefix followed by the structured encoding. There is
// no other wire framing.
func (t *Tag) MarshalBinary() ([]byte, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, &TagParseError{Op: "marshal", Err: err}
	}

	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(body))) //nolint:gosec // Tag images are far below 4GiB
	copy(out[4:], body)
	return out, nil
}

// UnmarshalTag parses a tag from bytes read from hardware. Buffers shorter
// than 4 bytes, or shorter than the declared length, are rejected.
func UnmarshalTag(data []byte) (*Tag, error) {
	if len(data) < 4 {
		return nil, &TagParseError{Op: "unmarshal", Err: ErrTagDataTruncated}
	}

	length := int(binary.BigEndian.Uint32(data))
	if len(data) < 4+length {
		return nil, &TagParseError{
			Op:  "unmarshal",
			Err: fmt.Errorf("%w: declared %d bytes, have %d", ErrTagDataTruncated, length, len(data)-4),
		}
	}

	var t Tag
	if err := json.Unmarshal(data[4:4+length], &t); err != nil {
		return nil, &TagParseError{Op: "unmarshal", Err: err}
	}
	return &t, nil
}
