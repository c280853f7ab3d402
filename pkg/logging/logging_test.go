package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}

			logPath := filepath.Join(tempDir, "revdiff", "revdiff.log")
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("Log file was not created at %s", logPath)
			}
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	tests := []struct {
		name         string
		xdgState     string
		wantContains string
	}{
		{
			name:         "with XDG_STATE_HOME",
			xdgState:     "/custom/state",
			wantContains: "/custom/state/revdiff/revdiff.log",
		},
		{
			name:         "without XDG_STATE_HOME",
			xdgState:     "",
			wantContains: ".local/state/revdiff/revdiff.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_STATE_HOME", tt.xdgState)

			got := getLogFilePath()
			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("getLogFilePath() = %s, want to contain %s", got, tt.wantContains)
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("test-component")
	logger.Info().Msg("test message")
}

func TestLogOperationStart(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "mirror")
	done()

	out := buf.String()
	if !strings.Contains(out, "Operation started") {
		t.Errorf("start event missing from output: %s", out)
	}
	if !strings.Contains(out, "Operation completed") {
		t.Errorf("completion event missing from output: %s", out)
	}
	if !strings.Contains(out, `"operation":"mirror"`) {
		t.Errorf("operation name missing from output: %s", out)
	}
	if !strings.Contains(out, `"duration"`) {
		t.Errorf("duration missing from completion event: %s", out)
	}
}
