// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for ragchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.ragchat/config.toml
//   - ~/.ragchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/ragchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Server is the retrieval backend connection.
	Server ServerConfig `toml:"server" json:"server"`

	// Upload controls document ingestion.
	Upload UploadConfig `toml:"upload" json:"upload"`

	// Session controls idle housekeeping in the interactive chat.
	Session SessionConfig `toml:"session" json:"session"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// SessionConfig contains idle-housekeeping intervals for the chat view.
type SessionConfig struct {
	// IdleTimeoutMins quits the chat after this many minutes without input
	IdleTimeoutMins int `toml:"idle_timeout_mins" json:"idle_timeout_mins"`
	// IdleWarningMins starts the closing countdown this many minutes
	// before the idle deadline
	IdleWarningMins int `toml:"idle_warning_mins" json:"idle_warning_mins"`
	// AutosaveSecs is the transcript autosave cadence in seconds;
	// negative disables autosave
	AutosaveSecs int `toml:"autosave_secs" json:"autosave_secs"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the address of the retrieval backend
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the buffered-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the number of attempts for transient failures
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// Streaming selects the SSE chat path; buffered POST is the fallback
	// and is used exclusively when false
	Streaming bool `toml:"streaming" json:"streaming"`
}

// UploadConfig contains document upload configuration.
type UploadConfig struct {
	// InboxDir is a directory watched for new documents to upload.
	// Empty disables the watcher.
	InboxDir string `toml:"inbox_dir" json:"inbox_dir"`
	// MaxFileMB is the per-file size limit in megabytes
	MaxFileMB int `toml:"max_file_mb" json:"max_file_mb"`
	// AllowedExtensions lists the file extensions accepted for upload
	AllowedExtensions []string `toml:"allowed_extensions" json:"allowed_extensions"`
	// RatePerMinute caps watcher-driven uploads per minute (0 = unlimited)
	RatePerMinute int `toml:"rate_per_minute" json:"rate_per_minute"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowSources displays the per-message source count badge
	ShowSources bool `toml:"show_sources" json:"show_sources"`
	// ShowStats displays timing information under assistant replies
	ShowStats bool `toml:"show_stats" json:"show_stats"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 60,
			MaxRetries:  3,
			Streaming:   true,
		},

		Upload: UploadConfig{
			InboxDir:          "",
			MaxFileMB:         10,
			AllowedExtensions: []string{".txt", ".md", ".pdf", ".docx"},
			RatePerMinute:     12,
		},

		Session: SessionConfig{
			IdleTimeoutMins: 15,
			IdleWarningMins: 2,
			AutosaveSecs:    30,
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowSources: true,
			ShowStats:   true,
			CompactMode: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ragchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad applies overrides, fills gaps, and validates.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Server
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if cfg.Server.MaxRetries == 0 {
		cfg.Server.MaxRetries = defaults.Server.MaxRetries
	}

	// Upload
	if cfg.Upload.MaxFileMB == 0 {
		cfg.Upload.MaxFileMB = defaults.Upload.MaxFileMB
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = defaults.Upload.AllowedExtensions
	}

	// Session. AutosaveSecs == 0 means unset; negative means disabled.
	if cfg.Session.IdleTimeoutMins == 0 {
		cfg.Session.IdleTimeoutMins = defaults.Session.IdleTimeoutMins
	}
	if cfg.Session.IdleWarningMins == 0 {
		cfg.Session.IdleWarningMins = defaults.Session.IdleWarningMins
	}
	if cfg.Session.AutosaveSecs == 0 {
		cfg.Session.AutosaveSecs = defaults.Session.AutosaveSecs
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if the file already existed.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# ragchat configuration file")
	fmt.Fprintln(file, "# Generated by ragchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate backend URL
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
			})
		}
	}

	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: "must be non-negative",
		})
	}

	if c.Server.MaxRetries < 1 || c.Server.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "server.max_retries",
			Message: fmt.Sprintf("must be 1-10, got %d", c.Server.MaxRetries),
		})
	}

	// Validate upload limits
	if c.Upload.MaxFileMB < 1 || c.Upload.MaxFileMB > 100 {
		errs = append(errs, ValidationError{
			Field:   "upload.max_file_mb",
			Message: fmt.Sprintf("must be 1-100, got %d", c.Upload.MaxFileMB),
		})
	}

	if c.Upload.RatePerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "upload.rate_per_minute",
			Message: "must be non-negative",
		})
	}

	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   "upload.allowed_extensions",
				Message: fmt.Sprintf("extension '%s' must start with a dot", ext),
			})
		}
	}

	// Validate session housekeeping
	if c.Session.IdleTimeoutMins < 1 {
		errs = append(errs, ValidationError{
			Field:   "session.idle_timeout_mins",
			Message: "must be at least 1",
		})
	}
	if c.Session.IdleWarningMins < 0 || c.Session.IdleWarningMins >= c.Session.IdleTimeoutMins {
		errs = append(errs, ValidationError{
			Field:   "session.idle_warning_mins",
			Message: fmt.Sprintf("must be 0 to idle_timeout_mins-1, got %d", c.Session.IdleWarningMins),
		})
	}

	// Validate UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RAGCHAT_SERVER_URL: overrides server.base_url
//   - RAGCHAT_TIMEOUT_SECS: overrides server.timeout_secs
//   - RAGCHAT_STREAMING: overrides server.streaming (1/true/0/false)
//   - RAGCHAT_INBOX_DIR: overrides upload.inbox_dir
//   - RAGCHAT_IDLE_TIMEOUT_MINS: overrides session.idle_timeout_mins
//   - RAGCHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("RAGCHAT_SERVER_URL"); base != "" {
		c.Server.BaseURL = base
	}

	if timeout := os.Getenv("RAGCHAT_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.Server.TimeoutSecs = secs
		}
	}

	if streaming := os.Getenv("RAGCHAT_STREAMING"); streaming != "" {
		c.Server.Streaming = streaming == "1" || strings.ToLower(streaming) == "true"
	}

	if inbox := os.Getenv("RAGCHAT_INBOX_DIR"); inbox != "" {
		c.Upload.InboxDir = inbox
	}

	if idle := os.Getenv("RAGCHAT_IDLE_TIMEOUT_MINS"); idle != "" {
		if mins, err := strconv.Atoi(idle); err == nil && mins > 0 {
			c.Session.IdleTimeoutMins = mins
		}
	}

	if theme := os.Getenv("RAGCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}
