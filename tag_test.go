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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagLayout(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-key"))
	tag, err := NewTag("SAMPLE-001", []byte("payload"), codec)
	require.NoError(t, err)

	assert.Equal(t, "SAMPLE-001", tag.TagID)
	assert.True(t, tag.EncryptionEnabled)
	assert.Equal(t, TagTypeSample, tag.Memory.Header[0])
	assert.Equal(t, TagFormatVersion, tag.Memory.Header[1])
	assert.Equal(t, byte(0x01), tag.Memory.Header[2])

	// Digest covers the ciphertext
	assert.Equal(t, codec.Sum(tag.Memory.Payload), tag.Memory.IntegrityDigest)

	// Encode timestamp is stamped into the metadata block
	assert.WithinDuration(t, time.Now(), tag.EncodedAt(), 5*time.Second)
	assert.Equal(t, uint64(0), tag.ReadCount())
}

func TestTagDecryptPayload(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-key"))
	tag, err := NewTag("SAMPLE-001", []byte("secret payload"), codec)
	require.NoError(t, err)

	plaintext, err := tag.DecryptPayload(codec)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret payload"), plaintext)
}

func TestTagDecryptPayloadDetectsTampering(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-key"))
	tag, err := NewTag("SAMPLE-001", []byte("secret payload"), codec)
	require.NoError(t, err)

	// Single bit flip in the ciphertext must trip the integrity check
	// before the cipher runs
	tag.Memory.Payload[20] ^= 0x01

	_, err = tag.DecryptPayload(codec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIntegrityMismatch)

	var memErr *TagMemoryError
	assert.True(t, errors.As(err, &memErr))
}

func TestTagReadCounter(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-key"))
	tag, err := NewTag("SAMPLE-001", []byte("payload"), codec)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, uint64(i), tag.ReadCount())
		tag.IncrementReadCount()
	}
	assert.Equal(t, uint64(5), tag.ReadCount())
}

func TestTagMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-key"))
	tag, err := NewTag("SAMPLE-001", []byte("round trip payload"), codec)
	require.NoError(t, err)
	tag.IncrementReadCount()

	wire, err := tag.MarshalBinary()
	require.NoError(t, err)

	parsed, err := UnmarshalTag(wire)
	require.NoError(t, err)

	assert.Equal(t, tag.TagID, parsed.TagID)
	assert.Equal(t, tag.Memory, parsed.Memory)
	assert.Equal(t, uint64(1), parsed.ReadCount())

	plaintext, err := parsed.DecryptPayload(codec)
	require.NoError(t, err)
	assert.Equal(t, []byte("round trip payload"), plaintext)
}

func TestUnmarshalTagRejectsTruncation(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-key"))
	tag, err := NewTag("SAMPLE-001", []byte("payload"), codec)
	require.NoError(t, err)
	wire, err := tag.MarshalBinary()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "shorter than length prefix", data: wire[:3]},
		{name: "body shorter than declared", data: wire[:len(wire)/2]},
		{name: "only length prefix", data: wire[:4]},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := UnmarshalTag(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTagDataTruncated)

			var parseErr *TagParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestUnmarshalTagRejectsGarbageBody(t *testing.T) {
	t.Parallel()

	// Valid length prefix over a non-JSON body
	data := []byte{0x00, 0x00, 0x00, 0x04, 'j', 'u', 'n', 'k'}
	_, err := UnmarshalTag(data)
	require.Error(t, err)

	var parseErr *TagParseError
	assert.True(t, errors.As(err, &parseErr))
}
