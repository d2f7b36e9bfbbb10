package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		off     slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tt := range tests {
		logger, closer := New(Config{Level: tt.level}, &bytes.Buffer{})
		if !logger.Enabled(context.Background(), tt.enabled) {
			t.Errorf("level %q: expected %v enabled", tt.level, tt.enabled)
		}
		if logger.Enabled(context.Background(), tt.off) {
			t.Errorf("level %q: expected %v disabled", tt.level, tt.off)
		}
		closer.Close()
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Config{Level: "info", Format: "json"}, &buf)
	defer closer.Close()

	logger.Info("scan complete", "projects", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "scan complete" {
		t.Errorf("msg = %v, want %q", entry["msg"], "scan complete")
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Config{Level: "info", Format: "text"}, &buf)
	defer closer.Close()

	logger.Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wiper.log")
	var console bytes.Buffer
	logger, closer := New(Config{Level: "info", Format: "text", FilePath: path}, &console)

	logger.Info("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing entry: %q", data)
	}
	if !strings.Contains(console.String(), "to file") {
		t.Errorf("console missing entry: %q", console.String())
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	for _, l := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(l) {
			t.Errorf("ValidLevel(%q) = false", l)
		}
	}
	if ValidLevel("trace") {
		t.Error("ValidLevel(trace) = true")
	}
	if !ValidFormat("json") || !ValidFormat("text") || ValidFormat("xml") {
		t.Error("ValidFormat returned an unexpected result")
	}
}

func TestConfigString(t *testing.T) {
	c := Config{Level: "info", Format: "json"}
	if got := c.String(); got != "level=info format=json" {
		t.Errorf("String() = %q", got)
	}
}
