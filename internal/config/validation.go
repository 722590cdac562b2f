/*
* Configuration validation
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

package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/Gilah-EnE/sampen_scanner/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate checks the configuration and returns ValidationErrors on failure.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Scan.ShingleLength < 1 {
		add("scan.shingle_length", "must be a positive integer (got %d)", c.Scan.ShingleLength)
	}
	if c.Scan.ComparisonLength < 1 {
		add("scan.comparison_length", "must be at least 1 (got %d)", c.Scan.ComparisonLength)
	}
	if math.IsNaN(c.Scan.Tolerance) || c.Scan.Tolerance < 0 || c.Scan.Tolerance > 1 {
		add("scan.tolerance", "must be in [0, 1] (got %v)", c.Scan.Tolerance)
	}
	if math.IsNaN(c.Scan.Threshold) || c.Scan.Threshold < 0 {
		add("scan.threshold", "must be non-negative (got %v)", c.Scan.Threshold)
	}
	if c.Scan.Workers < 0 {
		add("scan.workers", "must be non-negative (got %d)", c.Scan.Workers)
	}
	if c.Scan.MaxFileSize < 0 {
		add("scan.max_file_size", "must be non-negative (got %d)", c.Scan.MaxFileSize)
	}

	switch c.Report.Format {
	case "text", "json":
	default:
		add("report.format", "must be text or json (got %q)", c.Report.Format)
	}
	if c.Report.SweepLimit < 0 {
		add("report.sweep_limit", "must be non-negative (got %d)", c.Report.SweepLimit)
	}

	if c.Store.Enabled && c.Store.Path == "" {
		add("store.path", "is required when the store is enabled")
	}

	if c.Watch.DebounceMs < 0 {
		add("watch.debounce_ms", "must be non-negative (got %d)", c.Watch.DebounceMs)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "%v", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		add("logging.format", "%v", err)
	}
	switch c.Logging.Output {
	case "", "stderr", "stdout":
	case "file":
		if c.Logging.FilePath == "" {
			add("logging.file_path", "is required when output is file")
		}
	default:
		add("logging.output", "must be stderr, stdout or file (got %q)", c.Logging.Output)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	out := logging.DefaultConfig()
	out.Level = level
	out.Format = format
	out.Output = c.Logging.Output
	out.FilePath = c.Logging.FilePath
	return out, nil
}
