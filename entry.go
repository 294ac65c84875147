// entry.go: cache entry model and snapshot wire format
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package strata

import (
	"encoding/json"
	"fmt"
)

// Entry is the stored form of one cached value: codec-encoded payload
// plus bookkeeping metadata. Timestamps are nanoseconds since epoch as
// produced by the cache's TimeProvider.
type Entry struct {
	// Key is unique within the store.
	Key string `json:"key"`

	// Payload is the codec-encoded value. Size always reflects its
	// length, never the raw value size.
	Payload []byte `json:"payload"`

	// Created is when Set stored the entry.
	Created int64 `json:"created"`

	// Accessed is updated on every Get hit.
	Accessed int64 `json:"accessed"`

	// Expires is Created + TTL. Zero means the entry never expires;
	// otherwise Expires > Created always holds.
	Expires int64 `json:"expires"`

	// AccessCount counts Get hits, monotonically.
	AccessCount uint64 `json:"accessCount"`

	// Size is the encoded payload length in bytes.
	Size int64 `json:"size"`

	// Compressed records whether the compressor ran on the write path.
	Compressed bool `json:"compressed"`

	// Encrypted records whether the encryptor ran on the write path.
	Encrypted bool `json:"encrypted"`

	// Metadata is optional free-form data attached via WithMetadata.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// expiredAt reports whether the entry is past its expiry at time now.
// The read path is strict: an entry is served until its expiry has
// passed.
func (e *Entry) expiredAt(now int64) bool {
	return e.Expires > 0 && now > e.Expires
}

// sweepableAt reports whether Clean removes the entry at time now.
// The sweep boundary is inclusive: an entry is swept the instant its
// expiry arrives.
func (e *Entry) sweepableAt(now int64) bool {
	return e.Expires > 0 && now >= e.Expires
}

// entryPair serializes as the two-element array [key, entry], matching
// the snapshot format's entries list.
type entryPair struct {
	Key   string
	Entry Entry
}

// MarshalJSON implements json.Marshaler.
func (p entryPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Key, p.Entry})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *entryPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("entry pair must have exactly 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Entry)
}

// exportData is the Export/Import wire format. Entries are ordered from
// least- to most-recently-used.
type exportData struct {
	Entries   []entryPair `json:"entries"`
	Stats     CacheStats  `json:"stats"`
	Timestamp int64       `json:"timestamp"`
}

// persistData is the snapshot format handed to a SnapshotStore.
// Entries are ordered from least- to most-recently-used so a warm
// start reconstructs true recency, not map iteration order.
type persistData struct {
	Entries   []entryPair `json:"entries"`
	Timestamp int64       `json:"timestamp"`
}

// persistEnvelope wraps persistData with an integrity checksum so a
// torn or tampered snapshot is detected and discarded on load.
type persistEnvelope struct {
	Checksum uint64          `json:"checksum"`
	Snapshot json.RawMessage `json:"snapshot"`
}
