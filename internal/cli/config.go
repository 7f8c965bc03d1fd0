// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for ragchat.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: config [subcommand]
// Short:   View and modify configuration
// Aliases: (none)
//
// Subcommands:
//   show (default)      Display current configuration
//   set <key> <value>   Set a configuration value
//   reset               Reset to default configuration
//   path                Show configuration file path
//
// Examples:
//   ragchat config                        Show current config (default)
//   ragchat config show                   Show current configuration
//   ragchat config show --json           Config in JSON format
//   ragchat config set server_url http://rag.local:8000
//   ragchat config set timeout_secs 120
//   ragchat config set streaming false
//   ragchat config set inbox_dir ~/inbox
//   ragchat config set theme light
//   ragchat config reset                  Reset to defaults
//   ragchat config path                   Show config file location
//
// Configuration Keys:
//   server_url          Backend base URL
//   timeout_secs        Request timeout in seconds
//   max_retries         Retry attempts for transient failures
//   streaming           Use SSE streaming (true/false)
//   inbox_dir           Watched upload directory
//   max_file_mb         Upload size limit in megabytes
//   rate_per_minute     Watcher upload rate limit
//   idle_timeout_mins   Quit the chat after this many idle minutes
//   idle_warning_mins   Warn this many minutes before the idle quit
//   autosave_secs       Transcript autosave cadence (negative disables)
//   theme               UI theme (dark/light/auto)
//   show_sources        Show source list under answers (true/false)
//   show_stats          Show timing stats under answers (true/false)
//   compact_mode        Dense message layout (true/false)
//
// Flags:
//   --json              Output in JSON format
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/config"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	// Config title style
	configTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")). // Cyan
				MarginBottom(1)

	// Config section style
	configSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")). // White
				MarginTop(1)

	// Config key style
	configKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(20)

	// Config value style
	configValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")) // Green

	// Success style
	configSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	// Path style
	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// =============================================================================
// CONFIG WRAPPER FUNCTIONS
// =============================================================================

// Config is an alias to the main config type.
type Config = config.Config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	return path
}

// LoadConfig loads the configuration from the config file.
// Returns default config if file doesn't exist.
func LoadConfig() (*Config, error) {
	return config.Load()
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *Config) error {
	return config.Save(cfg)
}

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return handleConfigShowJSON()
		}
		return handleConfigShow()

	case "set":
		return handleConfigSet(args.ConfigKey, args.ConfigVal)

	case "reset":
		return handleConfigReset()

	case "path":
		if args.JSON {
			return handleConfigPathJSON()
		}
		return handleConfigPath()

	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}

// handleConfigShowJSON outputs configuration in JSON format.
func handleConfigShowJSON() error {
	cfg, err := LoadConfig()
	if err != nil {
		// Return error response but still try to show defaults
		cfg = DefaultConfig()
	}

	data := ConfigData{
		Server: ConfigServerInfo{
			BaseURL:     cfg.Server.BaseURL,
			TimeoutSecs: cfg.Server.TimeoutSecs,
			MaxRetries:  cfg.Server.MaxRetries,
			Streaming:   cfg.Server.Streaming,
		},
		Upload: ConfigUploadInfo{
			InboxDir:          cfg.Upload.InboxDir,
			MaxFileMB:         cfg.Upload.MaxFileMB,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			RatePerMinute:     cfg.Upload.RatePerMinute,
		},
		UI: ConfigUIInfo{
			Theme:       cfg.UI.Theme,
			ShowSources: cfg.UI.ShowSources,
			ShowStats:   cfg.UI.ShowStats,
			CompactMode: cfg.UI.CompactMode,
		},
		Path: ConfigPath(),
	}

	resp := NewJSONResponse("config show", data)
	return resp.Print()
}

// handleConfigPathJSON outputs config path in JSON format.
func handleConfigPathJSON() error {
	path := ConfigPath()
	_, err := os.Stat(path)
	exists := !os.IsNotExist(err)

	data := map[string]interface{}{
		"path":   path,
		"exists": exists,
	}

	resp := NewJSONResponse("config path", data)
	return resp.Print()
}

// handleConfigShow displays the current configuration.
func handleConfigShow() error {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s (using defaults)\n", err)
		cfg = DefaultConfig()
	}

	separator := strings.Repeat("=", 41)
	fmt.Println()
	fmt.Println(configTitleStyle.Render("ragchat Configuration"))
	fmt.Println(SeparatorStyle.Render(separator))
	fmt.Println()

	// Server section
	fmt.Println(configSectionStyle.Render("[server]"))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("base_url:"),
		configValueStyle.Render(cfg.Server.BaseURL))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("timeout_secs:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Server.TimeoutSecs)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("max_retries:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Server.MaxRetries)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("streaming:"),
		configValueStyle.Render(boolString(cfg.Server.Streaming)))
	fmt.Println()

	// Upload section
	fmt.Println(configSectionStyle.Render("[upload]"))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("inbox_dir:"),
		configValueStyle.Render(cfg.Upload.InboxDir))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("max_file_mb:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Upload.MaxFileMB)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("extensions:"),
		configValueStyle.Render(strings.Join(cfg.Upload.AllowedExtensions, " ")))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("rate_per_minute:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Upload.RatePerMinute)))
	fmt.Println()

	// Session section
	fmt.Println(configSectionStyle.Render("[session]"))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("idle_timeout_mins:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Session.IdleTimeoutMins)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("idle_warning_mins:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Session.IdleWarningMins)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("autosave_secs:"),
		configValueStyle.Render(fmt.Sprintf("%d", cfg.Session.AutosaveSecs)))
	fmt.Println()

	// UI section
	fmt.Println(configSectionStyle.Render("[ui]"))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("theme:"),
		configValueStyle.Render(cfg.UI.Theme))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("show_sources:"),
		configValueStyle.Render(boolString(cfg.UI.ShowSources)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("show_stats:"),
		configValueStyle.Render(boolString(cfg.UI.ShowStats)))
	fmt.Printf("  %s%s\n",
		configKeyStyle.Render("compact_mode:"),
		configValueStyle.Render(boolString(cfg.UI.CompactMode)))
	fmt.Println()

	// Config file path
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(ConfigPath()))
	fmt.Println()

	return nil
}

// handleConfigSet sets a configuration value.
func handleConfigSet(key, value string) error {
	if key == "" {
		return fmt.Errorf("no config key provided\nUsage: ragchat config set <key> <value>")
	}
	if value == "" {
		return fmt.Errorf("no config value provided\nUsage: ragchat config set %s <value>", key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s (using defaults)\n", err)
		cfg = DefaultConfig()
	}

	// Normalize key (support both dot notation and underscore)
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, ".", "_")

	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return fmt.Errorf("invalid configuration value: %w", validateErr)
	}
	if saveErr := SaveConfig(cfg); saveErr != nil {
		return fmt.Errorf("failed to save config: %w", saveErr)
	}

	fmt.Printf("%s %s = %s\n",
		configSuccessStyle.Render("[OK]"),
		key,
		value)
	return nil
}

// applyConfigKey writes one settable key into the config struct.
func applyConfigKey(cfg *Config, key, value string) error {
	switch key {
	case "server_url", "base_url":
		cfg.Server.BaseURL = value

	case "timeout_secs", "timeout":
		n, err := ParseIntWithValidation(value, "timeout_secs")
		if err != nil {
			return err
		}
		cfg.Server.TimeoutSecs = n

	case "max_retries", "retries":
		n, err := ParseIntWithValidation(value, "max_retries")
		if err != nil {
			return err
		}
		cfg.Server.MaxRetries = n

	case "streaming":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.Server.Streaming = b

	case "inbox_dir":
		cfg.Upload.InboxDir = value

	case "max_file_mb":
		n, err := ParseIntWithValidation(value, "max_file_mb")
		if err != nil {
			return err
		}
		cfg.Upload.MaxFileMB = n

	case "rate_per_minute":
		n, err := ParseIntWithValidation(value, "rate_per_minute")
		if err != nil {
			return err
		}
		cfg.Upload.RatePerMinute = n

	case "idle_timeout_mins":
		n, err := ParseIntWithValidation(value, "idle_timeout_mins")
		if err != nil {
			return err
		}
		cfg.Session.IdleTimeoutMins = n

	case "idle_warning_mins":
		n, err := ParseIntWithValidation(value, "idle_warning_mins")
		if err != nil {
			return err
		}
		cfg.Session.IdleWarningMins = n

	case "autosave_secs":
		// Negative disables autosave, so plain Atoi instead of the
		// positive-only validation.
		n, err := strconv.Atoi(value)
		if err != nil {
			return NewValidationError("autosave_secs", value, "must be an integer")
		}
		cfg.Session.AutosaveSecs = n

	case "theme":
		cfg.UI.Theme = strings.ToLower(value)

	case "show_sources":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.UI.ShowSources = b

	case "show_stats":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.UI.ShowStats = b

	case "compact_mode":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.UI.CompactMode = b

	default:
		return NewValidationErrorWithExample("config key", key,
			"unknown key", "ragchat config set server_url http://localhost:8000")
	}
	return nil
}

// handleConfigReset restores default configuration.
func handleConfigReset() error {
	cfg := DefaultConfig()
	if err := SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("%s Configuration reset to defaults\n", configSuccessStyle.Render("[OK]"))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(ConfigPath()))
	return nil
}

// handleConfigPath shows the config file location.
func handleConfigPath() error {
	path := ConfigPath()
	fmt.Println(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, DimStyle.Render("(file does not exist yet; defaults are in effect)"))
	}
	return nil
}

// boolString renders a bool the way the config file spells it.
func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
