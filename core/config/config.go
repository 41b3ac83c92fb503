/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the dashboard configuration from TOML files with
// environment overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/google/taxinomia-loans/core/logging"
)

// Config holds all configuration of the dashboard server
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	ChartRateLimit  int    `toml:"chart_rate_limit"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetReadTimeout parses the read timeout, falling back to 10s.
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout parses the write timeout, falling back to 30s.
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 30*time.Second)
}

// GetShutdownTimeout parses the graceful shutdown timeout, falling back to 5s.
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

// DataConfig locates the loan file
type DataConfig struct {
	Path      string `toml:"path"`
	Delimiter string `toml:"delimiter"`
}

// DelimiterRune returns the field delimiter, comma when unset.
func (c *DataConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DashboardConfig holds page and chart settings
type DashboardConfig struct {
	Title       string `toml:"title"`
	GridLimit   int    `toml:"grid_limit"`
	ChartWidth  int    `toml:"chart_width"`
	ChartHeight int    `toml:"chart_height"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     "10s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "5s",
			ChartRateLimit:  20,
		},
		Data: DataConfig{
			Path:      "data/financial_loan.csv",
			Delimiter: ",",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Dashboard: DashboardConfig{
			Title:       "Bank Loan Analysis",
			GridLimit:   100,
			ChartWidth:  800,
			ChartHeight: 400,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) error {
	if host := os.Getenv("LOANS_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("LOANS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid LOANS_PORT %q: must be a number", port)
		}
		config.Server.Port = p
	}
	if path := os.Getenv("LOANS_DATA_PATH"); path != "" {
		config.Data.Path = path
	}
	if level := os.Getenv("LOANS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	return nil
}

// Validate validates the configuration and returns an error listing every problem
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Server.ChartRateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid chart_rate_limit %d: must not be negative", c.Server.ChartRateLimit))
	}
	for name, value := range map[string]string{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a positive duration", name, value))
		}
	}

	if c.Data.Path == "" {
		errors = append(errors, "data path cannot be empty")
	}
	if c.Data.Delimiter != "" {
		if utf8.RuneCountInString(c.Data.Delimiter) != 1 || strings.ContainsAny(c.Data.Delimiter, "\"\r\n") {
			errors = append(errors, fmt.Sprintf("invalid delimiter %q: must be a single character other than quote or newline", c.Data.Delimiter))
		}
	}

	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.Logging.Level))
	}

	if c.Dashboard.GridLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid grid_limit %d: must not be negative", c.Dashboard.GridLimit))
	}
	if c.Dashboard.ChartWidth < 100 || c.Dashboard.ChartHeight < 100 {
		errors = append(errors, fmt.Sprintf("invalid chart size %dx%d: both sides must be at least 100", c.Dashboard.ChartWidth, c.Dashboard.ChartHeight))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
