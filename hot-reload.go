// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig provides dynamic configuration reload capabilities using
// Argus. It watches a configuration file and applies runtime-tunable
// cache settings (TTL, byte budgets, sweep interval) when changes are
// detected. Keys omitted from the file keep their current values, so a
// partial file never resets a live setting. Codec and persistence
// settings are construction-time only.
type HotConfig struct {
	cache   Cache
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)
}

// NewHotConfig creates a new hot-reloadable configuration for a cache.
//
// Example configuration file (YAML):
//
//	cache:
//	  max_bytes: 10485760
//	  ttl: "5m"
//	  cleanup_interval: "30s"
//
// Supported configuration keys:
//   - cache.max_bytes (int): Total byte budget for encoded payloads
//   - cache.max_entry_bytes (int): Per-entry encoded size cap
//   - cache.ttl (duration string): Default time-to-live (e.g. "1h", "30m")
//   - cache.cleanup_interval (duration string): Sweep interval
func NewHotConfig(cache Cache, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hc := &HotConfig{
		cache:    cache,
		OnReload: opts.OnReload,
		config:   currentConfig(cache),
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil // Already started
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData)
	hc.config = newConfig
	hc.mu.Unlock()

	hc.applyChanges(newConfig)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int64(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}

// currentConfig snapshots a cache's runtime-tunable settings to seed
// the merge base for reloads.
func currentConfig(cache Cache) Config {
	if engine, ok := cache.(*lruCache); ok {
		return engine.runtimeConfig()
	}
	return DefaultConfig()
}

// parseConfig extracts cache configuration from Argus config data,
// merging present keys over the current settings. A key omitted from
// the file keeps its current value; the file never resets a setting
// it does not mention.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := hc.config

	// Extract cache section - Argus might nest it or provide it directly
	cacheSection, ok := data["cache"].(map[string]interface{})
	if !ok {
		if _, hasMaxBytes := data["max_bytes"]; hasMaxBytes {
			cacheSection = data
		} else {
			return config
		}
	}

	if maxBytes, ok := parsePositiveInt(cacheSection["max_bytes"]); ok {
		config.MaxBytes = maxBytes
	}

	if maxEntry, ok := parsePositiveInt(cacheSection["max_entry_bytes"]); ok {
		config.MaxEntryBytes = maxEntry
	}

	if ttl, ok := parseDuration(cacheSection["ttl"]); ok {
		config.TTL = ttl
	}

	if interval, ok := parseDuration(cacheSection["cleanup_interval"]); ok {
		config.CleanupInterval = interval
	}

	_ = config.Validate()
	return config
}

// applyChanges applies runtime-tunable settings to the running cache.
func (hc *HotConfig) applyChanges(cfg Config) {
	if engine, ok := hc.cache.(*lruCache); ok {
		engine.applyRuntime(cfg)
	}
}
