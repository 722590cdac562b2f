/*
* Scanner configuration
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package config handles configuration loading and validation for the scanner.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Gilah-EnE/sampen_scanner/internal/anomaly"
	"github.com/Gilah-EnE/sampen_scanner/internal/sampen"
)

// Config holds the complete scanner configuration.
type Config struct {
	// Scan configuration for the entropy analysis.
	Scan ScanConfig `toml:"scan" json:"scan" yaml:"scan"`

	// Report configuration for output.
	Report ReportConfig `toml:"report" json:"report" yaml:"report"`

	// Store configuration for the run history.
	Store StoreConfig `toml:"store" json:"store" yaml:"store"`

	// Watch configuration for rescans on change.
	Watch WatchConfig `toml:"watch" json:"watch" yaml:"watch"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// ScanConfig holds the analysis parameters.
type ScanConfig struct {
	// ShingleLength is the window length k. It has no default.
	ShingleLength int `toml:"shingle_length" json:"shingle_length" yaml:"shingle_length"`

	// ComparisonLength is the template length m.
	ComparisonLength int `toml:"comparison_length" json:"comparison_length" yaml:"comparison_length"`

	// Tolerance is the normalized Hamming tolerance r.
	Tolerance float64 `toml:"tolerance" json:"tolerance" yaml:"tolerance"`

	// Threshold is the absolute z-score above which a file is flagged.
	Threshold float64 `toml:"threshold" json:"threshold" yaml:"threshold"`

	// Workers bounds the match counter pool. 0 means one per CPU.
	Workers int `toml:"workers" json:"workers" yaml:"workers"`

	// FollowSymlinks determines whether symbolic links to regular files are
	// scanned. Off by default, so linked files are left out of the groups
	// unless enabled. Linked directories are never descended into either way.
	FollowSymlinks bool `toml:"follow_symlinks" json:"follow_symlinks" yaml:"follow_symlinks"`

	// MaxFileSize is the largest file analyzed, in bytes. 0 means unlimited.
	MaxFileSize int64 `toml:"max_file_size" json:"max_file_size" yaml:"max_file_size"`
}

// ReportConfig holds output configuration.
type ReportConfig struct {
	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the JSON report path. Empty means stdout.
	Output string `toml:"output" json:"output" yaml:"output"`

	// Details enriches findings with byte statistics and signature sweeps.
	Details bool `toml:"details" json:"details" yaml:"details"`

	// Color enables colored console output.
	Color bool `toml:"color" json:"color" yaml:"color"`

	// SweepLimit caps the bytes examined by the container sweep.
	SweepLimit int `toml:"sweep_limit" json:"sweep_limit" yaml:"sweep_limit"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// Enabled turns on the SQLite run history.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the database file.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// WatchConfig holds watch mode configuration.
type WatchConfig struct {
	// Enabled keeps the scanner running and rescans on change.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// DebounceMs is the quiet period before a rescan, in milliseconds.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stderr", "stdout" or "file".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file when Output is "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			ComparisonLength: sampen.DefaultComparisonLength,
			Tolerance:        sampen.DefaultTolerance,
			Threshold:        anomaly.DefaultThreshold,
		},
		Report: ReportConfig{
			Format:     "text",
			Color:      true,
			SweepLimit: 16 * 1024 * 1024,
		},
		Store: StoreConfig{
			Path: "sampen.db",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// ApplyEnvOverrides applies SAMPEN_* environment variables over the
// current values. Unparsable values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SAMPEN_SHINGLE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scan.ShingleLength = n
		}
	}
	if v := os.Getenv("SAMPEN_COMPARISON_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scan.ComparisonLength = n
		}
	}
	if v := os.Getenv("SAMPEN_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scan.Tolerance = f
		}
	}
	if v := os.Getenv("SAMPEN_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scan.Threshold = f
		}
	}
	if v := os.Getenv("SAMPEN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scan.Workers = n
		}
	}
	if v := os.Getenv("SAMPEN_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Scan.MaxFileSize = n
		}
	}
	if v := os.Getenv("SAMPEN_FOLLOW_SYMLINKS"); v != "" {
		c.Scan.FollowSymlinks = parseBool(v)
	}
	if v := os.Getenv("SAMPEN_REPORT_FORMAT"); v != "" {
		c.Report.Format = v
	}
	if v := os.Getenv("SAMPEN_REPORT_OUTPUT"); v != "" {
		c.Report.Output = v
	}
	if v := os.Getenv("SAMPEN_DETAILS"); v != "" {
		c.Report.Details = parseBool(v)
	}
	if os.Getenv("NO_COLOR") != "" {
		c.Report.Color = false
	}
	if v := os.Getenv("SAMPEN_DB"); v != "" {
		c.Store.Enabled = true
		c.Store.Path = v
	}
	if v := os.Getenv("SAMPEN_WATCH"); v != "" {
		c.Watch.Enabled = parseBool(v)
	}
	if v := os.Getenv("SAMPEN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SAMPEN_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SAMPEN_LOG_FILE"); v != "" {
		c.Logging.Output = "file"
		c.Logging.FilePath = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
