// persist.go: snapshot persistence, export and import
//
// Persistence is best-effort: a cache with a broken or unavailable
// SnapshotStore keeps working memory-only. Snapshots carry an xxhash
// checksum so a torn write is detected and discarded instead of
// repopulating the cache with garbage.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"container/list"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3" // sqlite driver for SQLiteStore
)

// Export serializes the current entries, stats and a timestamp to JSON.
// Entries are ordered least- to most-recently-used, so importing the
// result reconstructs true recency rather than map iteration order.
func (c *lruCache) Export() ([]byte, error) {
	c.mu.Lock()
	data := exportData{
		Entries:   c.pairsLocked(),
		Stats:     c.statsLocked(),
		Timestamp: c.clock.Now(),
	}
	c.mu.Unlock()

	return json.Marshal(data)
}

// Import replaces entries and stats from a previously exported
// snapshot. Undecodable data leaves the cache untouched.
func (c *lruCache) Import(data []byte) error {
	var snap exportData
	if err := json.Unmarshal(data, &snap); err != nil {
		c.recordError()
		return NewErrCorruptedData("import", err.Error())
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewErrCacheClosed("Import")
	}
	c.restoreLocked(snap.Entries)
	c.hits = snap.Stats.Hits
	c.misses = snap.Stats.Misses
	c.sets = snap.Stats.Sets
	c.deletes = snap.Stats.Deletes
	c.clears = snap.Stats.Clears
	c.invalidations = snap.Stats.Invalidations
	c.errs = snap.Stats.Errors
	c.evictions = snap.Stats.Evictions
	c.expirations = snap.Stats.Expirations
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(out)
	return nil
}

// pairsLocked lists entries from least- to most-recently-used.
// Callers hold mu.
func (c *lruCache) pairsLocked() []entryPair {
	pairs := make([]entryPair, 0, c.queue.Len())
	for el := c.queue.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*Entry)
		pairs = append(pairs, entryPair{Key: e.Key, Entry: *e})
	}
	return pairs
}

// restoreLocked replaces the entry store and queue from pairs, which
// must be ordered least- to most-recently-used. Sizes are recomputed
// from the payloads and the byte budget is re-applied. Callers hold mu.
func (c *lruCache) restoreLocked(pairs []entryPair) {
	c.entries = make(map[string]*list.Element, len(pairs))
	c.queue.Init()
	c.bytes = 0

	for i := range pairs {
		e := pairs[i].Entry
		e.Key = pairs[i].Key
		e.Size = int64(len(e.Payload))
		if el, ok := c.entries[e.Key]; ok {
			c.removeLocked(el)
		}
		c.entries[e.Key] = c.queue.PushFront(&e)
		c.bytes += e.Size
	}

	c.evictLocked()
}

// loadSnapshot reads the persisted snapshot for this cache's strategy.
// Failures of any kind are logged and swallowed; the cache starts cold.
func (c *lruCache) loadSnapshot() {
	if c.store == nil || c.strategy == StrategyMemory {
		return
	}

	data, err := c.store.Load(context.Background(), c.strategy)
	if err != nil {
		c.logger.Warn("snapshot load failed, starting cold",
			"strategy", string(c.strategy), "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	snap, err := decodePersist(data)
	if err != nil {
		c.logger.Warn("snapshot rejected, starting cold",
			"strategy", string(c.strategy), "error", err)
		return
	}

	c.mu.Lock()
	c.restoreLocked(snap.Entries)
	n := c.queue.Len()
	c.mu.Unlock()

	c.logger.Info("snapshot loaded", "strategy", string(c.strategy), "entries", n)
}

// saveSnapshot persists the current entries for this cache's strategy.
// Failures are logged and swallowed.
func (c *lruCache) saveSnapshot() {
	if c.store == nil || c.strategy == StrategyMemory {
		return
	}

	c.mu.Lock()
	snap := persistData{
		Entries:   c.pairsLocked(),
		Timestamp: c.clock.Now(),
	}
	c.mu.Unlock()

	blob, err := encodePersist(snap)
	if err != nil {
		c.logger.Warn("snapshot encode failed",
			"strategy", string(c.strategy), "error", err)
		return
	}
	if err := c.store.Save(context.Background(), c.strategy, blob); err != nil {
		c.logger.Warn("snapshot save failed",
			"strategy", string(c.strategy), "error", err)
		return
	}

	c.logger.Debug("snapshot saved",
		"strategy", string(c.strategy), "entries", len(snap.Entries))
}

// encodePersist wraps a snapshot in a checksummed envelope.
func encodePersist(snap persistData) ([]byte, error) {
	inner, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return json.Marshal(persistEnvelope{
		Checksum: xxhash.Sum64(inner),
		Snapshot: inner,
	})
}

// decodePersist verifies the envelope checksum and decodes the snapshot.
func decodePersist(data []byte) (persistData, error) {
	var env persistEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return persistData{}, NewErrCorruptedData("snapshot", err.Error())
	}
	if sum := xxhash.Sum64(env.Snapshot); sum != env.Checksum {
		return persistData{}, NewErrCorruptedData("snapshot",
			fmt.Sprintf("checksum mismatch: stored %d, computed %d", env.Checksum, sum))
	}

	var snap persistData
	if err := json.Unmarshal(env.Snapshot, &snap); err != nil {
		return persistData{}, NewErrCorruptedData("snapshot", err.Error())
	}
	return snap, nil
}

// FileStore persists snapshots as one JSON file per strategy under a
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written snapshot in place.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created
// on first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(strategy Strategy) (string, error) {
	if strings.ContainsAny(string(strategy), `/\`) {
		return "", fmt.Errorf("strategy %q must not contain path separators", strategy)
	}
	return filepath.Join(s.dir, string(strategy)+".json"), nil
}

// Load implements SnapshotStore. A missing file is not an error.
func (s *FileStore) Load(_ context.Context, strategy Strategy) ([]byte, error) {
	path, err := s.path(strategy)
	if err != nil {
		return nil, NewErrLoadFailed(strategy, err)
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is derived from a validated strategy name
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, NewErrLoadFailed(strategy, err)
	}
	return data, nil
}

// Save implements SnapshotStore.
func (s *FileStore) Save(_ context.Context, strategy Strategy, data []byte) error {
	path, err := s.path(strategy)
	if err != nil {
		return NewErrSaveFailed(strategy, err)
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return NewErrSaveFailed(strategy, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return NewErrSaveFailed(strategy, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return NewErrSaveFailed(strategy, err)
	}
	return nil
}

// SQLiteStore persists snapshots in a SQLite database, one row per
// strategy. Several caches with different strategies can safely share
// one store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and prepares
// the snapshot table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS strata_snapshots (
		strategy TEXT PRIMARY KEY,
		data     BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements SnapshotStore. A missing row is not an error.
func (s *SQLiteStore) Load(ctx context.Context, strategy Strategy) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM strata_snapshots WHERE strategy = ?`,
		string(strategy)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, NewErrLoadFailed(strategy, err)
	}
	return data, nil
}

// Save implements SnapshotStore.
func (s *SQLiteStore) Save(ctx context.Context, strategy Strategy, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO strata_snapshots (strategy, data, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(strategy) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		string(strategy), data, time.Now().UnixNano())
	if err != nil {
		return NewErrSaveFailed(strategy, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
