package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupLoggerFiltersByLevel(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	testCases := []struct {
		name      string
		level     LogLevel
		shouldLog map[slog.Level]bool
	}{
		{
			name:  "Debug level",
			level: LevelDebug,
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: true,
				slog.LevelInfo:  true,
				slog.LevelWarn:  true,
				slog.LevelError: true,
			},
		},
		{
			name:  "Warn level",
			level: LevelWarn,
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: false,
				slog.LevelInfo:  false,
				slog.LevelWarn:  true,
				slog.LevelError: true,
			},
		},
		{
			name:  "Invalid level defaults to Info",
			level: LogLevel("loud"),
			shouldLog: map[slog.Level]bool{
				slog.LevelDebug: false,
				slog.LevelInfo:  true,
				slog.LevelWarn:  true,
				slog.LevelError: true,
			},
		},
	}

	logFuncs := map[slog.Level]func(string, ...any){
		slog.LevelDebug: Debug,
		slog.LevelInfo:  Info,
		slog.LevelWarn:  Warn,
		slog.LevelError: Error,
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLogger(&buf, tc.level)

			for level, logFunc := range logFuncs {
				buf.Reset()
				logFunc("sync step", "entry_id", 42)
				didLog := strings.Contains(buf.String(), "sync step")

				if didLog != tc.shouldLog[level] {
					t.Errorf("level %s: expected logged=%v, got output %q", level, tc.shouldLog[level], buf.String())
				}
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	testCases := []struct {
		envValue string
		expected LogLevel
	}{
		{envValue: "", expected: LevelWarn},
		{envValue: "DEBUG", expected: LevelDebug},
		{envValue: " info ", expected: LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.envValue, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tc.envValue)
			if got := LevelFromEnv(); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestWithAddsAttributes(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo)

	With("run_id", "abc").Info("run started")

	output := buf.String()
	if !strings.Contains(output, "run_id=abc") {
		t.Errorf("Expected run_id attribute in output, got: %s", output)
	}
}

func TestMaskSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty string", input: "", expected: "<not set>"},
		{name: "Short string", input: "abc", expected: "<set>"},
		{name: "Exactly 4 characters", input: "abcd", expected: "<set>"},
		{name: "Token-like string", input: "1971800d4d82861d8f2c1651fea4d212", expected: "1971...***"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := MaskSensitive(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}
