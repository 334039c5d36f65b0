package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
	// HistoryFileName is the name of the sync history database
	HistoryFileName = "history.db"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "MODSYNC_"
)

// Config holds application configuration
type Config struct {
	// InstancesPath is the CurseForge instances directory (sync source root)
	InstancesPath string `json:"instancesPath"`

	// GamePath is the launcher's game directory (sync target root)
	GamePath string `json:"gamePath"`

	// BackupDir is where pre-sync backups of overwritten files are kept
	BackupDir string `json:"backupDir"`

	// CreateBackups enables backing up files before they are updated or removed
	CreateBackups bool `json:"createBackups"`

	// AutoConfirmUpdates applies Update actions without prompting
	AutoConfirmUpdates bool `json:"autoConfirmUpdates"`

	// AutoConfirmRemovals applies Remove actions without prompting
	AutoConfirmRemovals bool `json:"autoConfirmRemovals"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns the default configuration.
// Path defaults point at the usual CurseForge and launcher locations under
// the user's home directory; they are used verbatim when no candidate exists.
func DefaultConfig() *Config {
	appDir, _ := GetConfigDir()
	return &Config{
		InstancesPath:       defaultInstancesPath(),
		GamePath:            defaultGamePath(),
		BackupDir:           filepath.Join(appDir, "backups"),
		CreateBackups:       true,
		AutoConfirmUpdates:  false,
		AutoConfirmRemovals: false,
		LogLevel:            "info",
	}
}

func defaultInstancesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "CurseForge/minecraft/Instances"
	}
	candidates := []string{
		filepath.Join(home, "CurseForge", "minecraft", "Instances"),
		filepath.Join(home, "Documents", "CurseForge", "minecraft", "Instances"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return candidates[0]
}

func defaultGamePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".minecraft"
	}
	candidates := []string{
		filepath.Join(home, ".minecraft"),
		filepath.Join(home, "Games", "Minecraft"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return candidates[0]
}

// Load loads configuration with precedence: env vars > config file > defaults.
// A missing or corrupt config file degrades to defaults so the application
// always starts with a usable configuration.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			// Corrupt or unreadable file: fall back to defaults
			cfg = DefaultConfig()
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from the config file
func (c *Config) loadFromFile() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "INSTANCES_PATH"); v != "" {
		c.InstancesPath = v
	}
	if v := os.Getenv(EnvPrefix + "GAME_PATH"); v != "" {
		c.GamePath = v
	}
	if v := os.Getenv(EnvPrefix + "BACKUP_DIR"); v != "" {
		c.BackupDir = v
	}
	if v := os.Getenv(EnvPrefix + "CREATE_BACKUPS"); v != "" {
		c.CreateBackups = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "AUTO_CONFIRM_UPDATES"); v != "" {
		c.AutoConfirmUpdates = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "AUTO_CONFIRM_REMOVALS"); v != "" {
		c.AutoConfirmRemovals = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
// The store persists whatever paths it is given; existence checks belong to
// the catalog and executor, so only structural problems are rejected here.
func (c *Config) Validate() error {
	if c.InstancesPath == "" {
		return fmt.Errorf("instances path must not be empty")
	}
	if c.GamePath == "" {
		return fmt.Errorf("game path must not be empty")
	}
	if c.InstancesPath == c.GamePath {
		return fmt.Errorf("instances path and game path must differ: %s", c.GamePath)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	isValid := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// HistoryPath returns the path to the sync history database
func (c *Config) HistoryPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, HistoryFileName), nil
}

// pathOverride, set by SetPath, points Load and Save at an explicit config
// file instead of the per-user default location.
var pathOverride string

// SetPath overrides the config file location for this process. An empty
// path restores the default resolution.
func SetPath(path string) {
	pathOverride = path
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "modsync"), nil
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
