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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// Codec encrypts and digests tag payloads. It implements AES-256-CBC with
// PKCS#7 padding; the 256-bit key is derived by hashing the caller-supplied
// key material once, so callers may pass secrets of any length.
type Codec struct {
	key [32]byte
}

// NewCodec creates a codec with a key derived from the given key material
func NewCodec(keyMaterial []byte) *Codec {
	return &Codec{key: sha256.Sum256(keyMaterial)}
}

// Encrypt encrypts plaintext for tag storage. A fresh random 16-byte IV is
// generated per call and prepended to the ciphertext. Padding is always
// applied, so empty plaintext maps to exactly one padded block and the
// output length is 16 + ceil((len+1)/16)*16.
func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, newEncryptionError("encrypt", fmt.Errorf("IV generation failed: %w", err))
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return nil, newEncryptionError("encrypt", err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return out, nil
}

// Decrypt decrypts an IV-prefixed ciphertext blob. A wrong key and a
// corrupted padding byte produce the same error.
func (c *Codec) Decrypt(blob []byte) ([]byte, error) {
	// Minimum size: 16 bytes IV + 16 bytes encrypted block
	if len(blob) < 2*aes.BlockSize {
		return nil, newEncryptionError("decrypt", ErrCiphertextTooShort)
	}

	iv := blob[:aes.BlockSize]
	ciphertext := blob[aes.BlockSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, newEncryptionError("decrypt", ErrCipher)
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return nil, newEncryptionError("decrypt", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpadPKCS7(plaintext, aes.BlockSize)
	if err != nil {
		return nil, newEncryptionError("decrypt", err)
	}

	return unpadded, nil
}

// Sum returns the SHA-256 digest of data, used both for tag integrity
// digests and for sample checksums. Deterministic and side-effect free.
func (*Codec) Sum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// padPKCS7 appends PKCS#7 padding. Already-aligned input still gains a
// full block of padding.
func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpadPKCS7 strips and validates PKCS#7 padding. All failures map to
// ErrCipher so a padding oracle cannot be built from the error surface.
func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrCipher
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, ErrCipher
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrCipher
		}
	}
	return data[:len(data)-padLen], nil
}
