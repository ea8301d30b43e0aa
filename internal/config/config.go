// Package config provides persistent configuration for the prayer-clock CLI.
//
// Configuration is stored as YAML at ~/.config/prayer-clock/config.yaml
// (XDG-compliant) and can be overridden by PRAYER_CLOCK_* environment
// variables, optionally loaded from a .env file. The merge priority is:
// CLI flags > environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
)

const (
	configDirName  = "prayer-clock"
	configFileName = "config.yaml"

	// EnvPrefix is the prefix of every environment override.
	EnvPrefix = "prayer_clock"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude",
	"method",
	"time_format",
	"lang",
	"allow_device_location",
	"listen_addr",
	"log_level",
}

// Config holds all user-configurable settings.
// Nil pointers and empty strings mean "not set".
type Config struct {
	City                string   `yaml:"city,omitempty"`
	Country             string   `yaml:"country,omitempty"`
	Latitude            *float64 `yaml:"latitude,omitempty"`
	Longitude           *float64 `yaml:"longitude,omitempty"`
	Method              *int     `yaml:"method,omitempty"`
	TimeFormat          string   `yaml:"time_format,omitempty" split_words:"true"` // "12h" or "24h"
	Lang                string   `yaml:"lang,omitempty"`                           // "en" or "ar"
	AllowDeviceLocation *bool    `yaml:"allow_device_location,omitempty" split_words:"true"`
	ListenAddr          string   `yaml:"listen_addr,omitempty" split_words:"true"`
	LogLevel            string   `yaml:"log_level,omitempty" split_words:"true"`
}

// DefaultMethod is Umm Al-Qura.
const DefaultMethod = 4

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := DefaultMethod
	allow := true
	return Config{
		Method:              &method,
		TimeFormat:          "24h",
		Lang:                "en",
		AllowDeviceLocation: &allow,
		ListenAddr:          ":8080",
		LogLevel:            "info",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment without overriding variables
// that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadEnv reads PRAYER_CLOCK_* overrides from the environment.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return &cfg, nil
}

// LoadEffective merges defaults, the config file at path (the default path
// when empty) and the environment, then validates the result.
func LoadEffective(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	file, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	cfg.Merge(file)
	cfg.Merge(env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge copies every field that is set in other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.City != "" {
		c.City = other.City
	}
	if other.Country != "" {
		c.Country = other.Country
	}
	if other.Latitude != nil {
		c.Latitude = other.Latitude
	}
	if other.Longitude != nil {
		c.Longitude = other.Longitude
	}
	if other.Method != nil {
		c.Method = other.Method
	}
	if other.TimeFormat != "" {
		c.TimeFormat = other.TimeFormat
	}
	if other.Lang != "" {
		c.Lang = other.Lang
	}
	if other.AllowDeviceLocation != nil {
		c.AllowDeviceLocation = other.AllowDeviceLocation
	}
	if other.ListenAddr != "" {
		c.ListenAddr = other.ListenAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// Validate checks every set field the way Set would.
func (c *Config) Validate() error {
	for _, key := range ValidKeys {
		val, err := c.Get(key)
		if err != nil {
			return err
		}
		if val == "" {
			continue
		}
		var probe Config
		if err := probe.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "city":
		c.City = value
	case "country":
		c.Country = value
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = &v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = &v
	case "method":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid method %q: must be an integer", value)
		}
		if _, ok := api.LookupMethod(v); !ok {
			return fmt.Errorf("invalid method %q: run `prayer-clock methods` for the list", value)
		}
		c.Method = &v
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "lang":
		if value != "en" && value != "ar" {
			return fmt.Errorf("invalid lang %q: must be \"en\" or \"ar\"", value)
		}
		c.Lang = value
	case "allow_device_location":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid allow_device_location %q: must be true or false", value)
		}
		c.AllowDeviceLocation = &v
	case "listen_addr":
		c.ListenAddr = value
	case "log_level":
		switch value {
		case "trace", "debug", "info", "warn", "error", "disabled":
		default:
			return fmt.Errorf("invalid log_level %q: must be one of trace, debug, info, warn, error, disabled", value)
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "country":
		return c.Country, nil
	case "latitude":
		if c.Latitude == nil {
			return "", nil
		}
		return strconv.FormatFloat(*c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == nil {
			return "", nil
		}
		return strconv.FormatFloat(*c.Longitude, 'f', -1, 64), nil
	case "method":
		if c.Method == nil {
			return "", nil
		}
		return strconv.Itoa(*c.Method), nil
	case "time_format":
		return c.TimeFormat, nil
	case "lang":
		return c.Lang, nil
	case "allow_device_location":
		if c.AllowDeviceLocation == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.AllowDeviceLocation), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// MethodOrDefault returns the method value, falling back to the given default.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

// HasCoordinates reports whether both latitude and longitude are set.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// DeviceLocationAllowed reports whether the configured position may be used
// as the device location. Unset means allowed.
func (c *Config) DeviceLocationAllowed() bool {
	return c.AllowDeviceLocation == nil || *c.AllowDeviceLocation
}
