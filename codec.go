// codec.go: composable serialize/compress/encrypt pipeline
//
// The write path runs serialize -> compress -> encrypt; the read path
// inverts it exactly: decrypt -> decompress -> deserialize. Entry size
// is always measured on the final encoded payload.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"golang.org/x/crypto/chacha20poly1305"
)

// Serializer converts values to and from bytes. It is the first
// transform on the write path and the last on the read path.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// Compressor shrinks serialized payloads. Compress and Decompress must
// be exact inverses.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Encryptor protects payloads at rest. Encrypt and Decrypt must be
// exact inverses; Decrypt must fail on tampered input rather than
// return garbage.
type Encryptor interface {
	Encrypt(data []byte) ([]byte, error)
	Decrypt(data []byte) ([]byte, error)
}

// JSONSerializer is the default structural serializer.
type JSONSerializer struct{}

// Marshal encodes v as JSON.
func (JSONSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (JSONSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// BrotliCompressor compresses payloads with the brotli algorithm.
// The zero value uses brotli.DefaultCompression.
type BrotliCompressor struct {
	// Level is the brotli quality level (brotli.BestSpeed to
	// brotli.BestCompression). 0 means brotli.DefaultCompression.
	Level int
}

// Compress brotli-encodes data.
func (c BrotliCompressor) Compress(data []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = brotli.DefaultCompression
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inverts Compress.
func (c BrotliCompressor) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
}

// ChaChaEncryptor encrypts payloads with XChaCha20-Poly1305.
// A random nonce is prepended to every ciphertext, so encrypting the
// same payload twice yields different bytes.
type ChaChaEncryptor struct {
	aead cipher.AEAD
}

// NewChaChaEncryptor creates an encryptor from a 32-byte key.
func NewChaChaEncryptor(key []byte) (*ChaChaEncryptor, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &ChaChaEncryptor{aead: aead}, nil
}

// Encrypt seals data with a fresh random nonce.
func (e *ChaChaEncryptor) Encrypt(data []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(data)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return e.aead.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (e *ChaChaEncryptor) Decrypt(data []byte) ([]byte, error) {
	if len(data) < e.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce: %d bytes", len(data))
	}
	nonce, ciphertext := data[:e.aead.NonceSize()], data[e.aead.NonceSize():]
	return e.aead.Open(nil, nonce, ciphertext, nil)
}

// codec holds the configured pipeline stages for one cache instance.
// A nil compressor or encryptor means that stage is a pass-through and
// the corresponding entry flag stays false.
type codec struct {
	serializer Serializer
	compressor Compressor
	encryptor  Encryptor
}

// encode runs the write path and reports which transforms were applied.
func (p codec) encode(v interface{}) (payload []byte, compressed, encrypted bool, err error) {
	payload, err = p.serializer.Marshal(v)
	if err != nil {
		return nil, false, false, err
	}

	if p.compressor != nil {
		payload, err = p.compressor.Compress(payload)
		if err != nil {
			return nil, false, false, err
		}
		compressed = true
	}

	if p.encryptor != nil {
		payload, err = p.encryptor.Encrypt(payload)
		if err != nil {
			return nil, false, false, err
		}
		encrypted = true
	}

	return payload, compressed, encrypted, nil
}

// decode inverts the write path down to serialized bytes. The entry
// flags, not the current configuration, decide which stages to invert,
// so entries imported from a differently-configured cache still decode
// as long as the stages are present.
func (p codec) decode(payload []byte, compressed, encrypted bool) ([]byte, error) {
	var err error

	if encrypted {
		if p.encryptor == nil {
			return nil, fmt.Errorf("entry is encrypted but no encryptor is configured")
		}
		payload, err = p.encryptor.Decrypt(payload)
		if err != nil {
			return nil, err
		}
	}

	if compressed {
		if p.compressor == nil {
			return nil, fmt.Errorf("entry is compressed but no compressor is configured")
		}
		payload, err = p.compressor.Decompress(payload)
		if err != nil {
			return nil, err
		}
	}

	return payload, nil
}
