package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError && err == nil {
				t.Error("expected error, got nil")
			}
			if !test.hasError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if level != test.expected {
				t.Errorf("expected %v, got %v", test.expected, level)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(LevelString(level))
		if err != nil {
			t.Fatalf("round trip of %v: %v", level, err)
		}
		if parsed != level {
			t.Errorf("expected %v, got %v", level, parsed)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("expected json format, got %v (%v)", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("expected text format, got %v (%v)", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestJSONOutputCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelDebug, Format: FormatJSON, Writer: &buf, Component: "scanner"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Debug("calculated entropy", "path", "/tmp/a.txt", "entropy", 0.5)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["component"] != "scanner" {
		t.Errorf("expected component scanner, got %v", record["component"])
	}
	if record["path"] != "/tmp/a.txt" {
		t.Errorf("expected path attribute, got %v", record["path"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelWarn, Writer: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scan.log")
	logger, err := New(&Config{Level: LevelInfo, Output: "file", FilePath: path})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.WithComponent("test").Info("written to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "written to file") || !strings.Contains(string(data), "component=test") {
		t.Errorf("unexpected log content: %q", data)
	}
}

func TestInvalidOutput(t *testing.T) {
	if _, err := New(&Config{Output: "file"}); err == nil {
		t.Error("expected error for file output without path")
	}
	if _, err := New(&Config{Output: "syslog"}); err == nil {
		t.Error("expected error for unknown output")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing happens")
	if err := logger.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
