package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		logLevel  slog.Level
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:     "Text Logger Info Level",
			config:   Config{Level: "info", Format: "text"},
			logLevel: slog.LevelInfo,
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "INF") && !strings.Contains(output, "INFO") {
					t.Errorf("Expected text log output with info level, got: %s", output)
				}
				if !strings.Contains(output, "test message") {
					t.Errorf("Expected text log output with message, got: %s", output)
				}
			},
		},
		{
			name:     "JSON Logger Debug Level",
			config:   Config{Level: "debug", Format: "json"},
			logLevel: slog.LevelDebug,
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				err := json.Unmarshal([]byte(output), &logEntry)
				if err != nil {
					t.Fatalf("Failed to unmarshal JSON log: %v, output: %s", err, output)
				}
				if logEntry["level"] != "DEBUG" || logEntry["msg"] != "test message" {
					t.Errorf("Expected JSON log output with debug level and message, got: %v", logEntry)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.config, &buf)

			logger.Log(t.Context(), tt.logLevel, "test message")

			tt.checkFunc(t, buf.String())
		})
	}
}

func TestNewLogger_InfoSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "info", Format: "json"}, &buf)

	logger.Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("Expected debug message to be suppressed at info level, got: %s", buf.String())
	}
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Level: "bogus", Format: "json"}, &buf)

	logger.Info("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected info message at default level, got: %s", buf.String())
	}
}
