// Package config loads the editor settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"incimap/internal/history"
	"incimap/internal/incident"
)

// Config holds incimap settings.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	History HistoryConfig `toml:"history"`
	Files   FilesConfig   `toml:"files"`
	Log     LogConfig     `toml:"log"`
}

// EditorConfig controls the interactive editor.
type EditorConfig struct {
	ShowDetails   bool `toml:"show_details"`
	Confirmations bool `toml:"confirmations"`
	StartMenu     bool `toml:"start_menu"`
}

// HistoryConfig controls undo grouping.
type HistoryConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// FilesConfig controls where maps are saved.
type FilesConfig struct {
	SaveDirectory string `toml:"save_directory"`
	Format        string `toml:"format"` // "json" or "yaml"
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor:  EditorConfig{ShowDetails: true, Confirmations: true, StartMenu: true},
		History: HistoryConfig{DebounceMS: int(history.DefaultWindow / time.Millisecond)},
		Files:   FilesConfig{Format: string(incident.FormatJSON)},
		Log:     LogConfig{Level: "info"},
	}
}

// Dir returns the incimap config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "incimap")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file. A missing file yields the defaults; a file
// that does not parse yields the defaults and the error.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.History.DebounceMS <= 0 {
		c.History.DebounceMS = int(history.DefaultWindow / time.Millisecond)
	}
	if _, err := incident.ParseFormat(c.Files.Format); err != nil {
		c.Files.Format = string(incident.FormatJSON)
	}
	c.Files.SaveDirectory = expandPath(c.Files.SaveDirectory)
	c.Log.File = expandPath(c.Log.File)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func expandPath(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}

// Save writes cfg to the config file.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil
	}
	return Save(Default())
}

// Debounce returns the undo grouping window.
func (c *Config) Debounce() time.Duration {
	if c.History.DebounceMS <= 0 {
		return history.DefaultWindow
	}
	return time.Duration(c.History.DebounceMS) * time.Millisecond
}

// Format returns the preferred map format.
func (c *Config) Format() incident.Format {
	f, err := incident.ParseFormat(c.Files.Format)
	if err != nil {
		return incident.FormatJSON
	}
	return f
}

// LogFile returns the log path, defaulting into the config directory.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(Dir(), "incimap.log")
}

// GetSavePath places filename in the save directory, creating it if needed.
// Without a save directory filename is returned unchanged.
func (c *Config) GetSavePath(filename string) (string, error) {
	if c.Files.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename, nil
	}
	if err := os.MkdirAll(c.Files.SaveDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}
	return filepath.Join(c.Files.SaveDirectory, filename), nil
}
