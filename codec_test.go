// codec_test.go: codec pipeline round-trip tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"strings"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}
	return key
}

func TestBrotliCompressor_RoundTrip(t *testing.T) {
	c := BrotliCompressor{}
	original := []byte(strings.Repeat("strata compresses repetitive payloads well. ", 50))

	compressed, err := c.Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("expected compression to shrink %d bytes, got %d", len(original), len(compressed))
	}

	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Error("round trip did not restore original bytes")
	}
}

func TestChaChaEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewChaChaEncryptor(testKey(t))
	if err != nil {
		t.Fatalf("NewChaChaEncryptor failed: %v", err)
	}

	original := []byte("secret payload")
	ciphertext, err := enc.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ciphertext, original) {
		t.Error("ciphertext must not contain the plaintext")
	}

	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(plaintext, original) {
		t.Error("round trip did not restore original bytes")
	}
}

func TestChaChaEncryptor_InvalidKey(t *testing.T) {
	if _, err := NewChaChaEncryptor([]byte("too short")); err == nil {
		t.Error("expected error for wrong key length")
	}
}

func TestChaChaEncryptor_TamperedCiphertext(t *testing.T) {
	enc, _ := NewChaChaEncryptor(testKey(t))

	ciphertext, _ := enc.Encrypt([]byte("payload"))
	ciphertext[len(ciphertext)-1] ^= 0xff

	if _, err := enc.Decrypt(ciphertext); err == nil {
		t.Error("expected tampered ciphertext to fail authentication")
	}
}

func TestCache_CodecPipeline_RoundTrip(t *testing.T) {
	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	enc, err := NewChaChaEncryptor(testKey(t))
	if err != nil {
		t.Fatalf("NewChaChaEncryptor failed: %v", err)
	}

	configs := map[string]Config{
		"plain":             {MaxBytes: 1 << 20},
		"compressed":        {MaxBytes: 1 << 20, Compressor: BrotliCompressor{}},
		"encrypted":         {MaxBytes: 1 << 20, Encryptor: enc},
		"compressed+crypto": {MaxBytes: 1 << 20, Compressor: BrotliCompressor{}, Encryptor: enc},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			cache := NewGenericCache[string, user](cfg)

			want := user{ID: 42, Name: "Alice"}
			if err := cache.Set("user:42", want); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, found, err := cache.Get("user:42")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !found {
				t.Fatal("expected to find user:42")
			}
			if got != want {
				t.Errorf("expected %+v, got %+v", want, got)
			}
		})
	}
}

func TestCache_CodecFlags_RecordedOnEntry(t *testing.T) {
	enc, _ := NewChaChaEncryptor(testKey(t))
	cache := NewCache(Config{
		MaxBytes:   1 << 20,
		Compressor: BrotliCompressor{},
		Encryptor:  enc,
	})

	cache.Set("key", "value")

	exported, err := cache.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var snap exportData
	if err := json.Unmarshal(exported, &snap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(snap.Entries) != 1 {
		t.Fatalf("expected 1 exported entry, got %d", len(snap.Entries))
	}
	e := snap.Entries[0].Entry
	if !e.Compressed || !e.Encrypted {
		t.Errorf("expected compressed and encrypted flags set, got %+v", e)
	}
	if e.Size != int64(len(e.Payload)) {
		t.Errorf("size must reflect the encoded payload, got %d for %d bytes", e.Size, len(e.Payload))
	}
}

func TestCache_Get_DecodeFailure(t *testing.T) {
	key := testKey(t)
	writer, _ := NewChaChaEncryptor(key)

	cache := NewCache(Config{MaxBytes: 1 << 20, Encryptor: writer})
	cache.Set("key", "value")

	// Re-key the reader: decrypt must now fail with a codec error, and
	// the engine must surface it rather than return garbage.
	exported, err := cache.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	reader, _ := NewChaChaEncryptor(testKey(t))
	cache2 := NewCache(Config{MaxBytes: 1 << 20, Encryptor: reader})
	if err := cache2.Import(exported); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	value, found, err := cache2.Get("key")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !IsCodecError(err) {
		t.Errorf("expected codec error, got %v", err)
	}
	if found || value != nil {
		t.Error("a failed decode must not return a value")
	}
	if got := cache2.Stats().Errors; got == 0 {
		t.Error("expected errors counter to increment on decode failure")
	}
}

func TestCache_Set_EncodeFailure(t *testing.T) {
	cache := NewCache(Config{MaxBytes: 1 << 20})

	// Channels are not JSON-serializable.
	err := cache.Set("key", make(chan int))
	if err == nil {
		t.Fatal("expected encode error")
	}
	if !IsCodecError(err) {
		t.Errorf("expected codec error, got %v", err)
	}
	if got := cache.Stats().Errors; got != 1 {
		t.Errorf("expected errors counter 1, got %d", got)
	}
}
