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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loans.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, ',', cfg.Data.DelimiterRune())
	assert.Equal(t, 30*time.Second, cfg.Server.GetWriteTimeout())
}

func TestLoadConfigMergesFiles(t *testing.T) {
	base := writeConfig(t, `
[server]
port = 9000
read_timeout = "2s"
chart_rate_limit = 0

[data]
path = "loans.csv"
delimiter = ";"

[dashboard]
title = "Loans"
grid_limit = 25
`)
	override := writeConfig(t, `
[server]
port = 9100
`)

	cfg, err := LoadConfig(base, "", filepath.Join(t.TempDir(), "missing.toml"), override)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.GetReadTimeout())
	assert.Equal(t, 0, cfg.Server.ChartRateLimit)
	assert.Equal(t, "loans.csv", cfg.Data.Path)
	assert.Equal(t, ';', cfg.Data.DelimiterRune())
	assert.Equal(t, "Loans", cfg.Dashboard.Title)
	assert.Equal(t, 25, cfg.Dashboard.GridLimit)
	// untouched sections keep their defaults
	assert.Equal(t, 800, cfg.Dashboard.ChartWidth)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[server\nport = "))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOANS_HOST", "0.0.0.0")
	t.Setenv("LOANS_PORT", "8181")
	t.Setenv("LOANS_DATA_PATH", "/srv/loans.csv")
	t.Setenv("LOANS_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8181", cfg.Server.Addr())
	assert.Equal(t, "/srv/loans.csv", cfg.Data.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrideBadPort(t *testing.T) {
	t.Setenv("LOANS_PORT", "eighty")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "LOANS_PORT")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Port = 0
	cfg.Server.ReadTimeout = "soon"
	cfg.Data.Path = ""
	cfg.Data.Delimiter = "::"
	cfg.Logging.Level = "chatty"
	cfg.Dashboard.GridLimit = -1
	cfg.Dashboard.ChartWidth = 10
	cfg.Server.ChartRateLimit = -5

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"invalid port 0", "read_timeout", "data path", "delimiter", "log level", "grid_limit", "chart size", "chart_rate_limit"} {
		assert.Contains(t, err.Error(), want)
	}
}
