package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLogger_StructuredProperties(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, InfoLevel)

	log.Info("Resolved {PackageName} with icon {IconURI}", "Newtonsoft.Json", "https://example.test/icon.png")

	output := buf.String()
	if !strings.Contains(output, "Newtonsoft.Json") {
		t.Errorf("Output missing PackageName: %s", output)
	}
	if !strings.Contains(output, "https://example.test/icon.png") {
		t.Errorf("Output missing IconURI: %s", output)
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name          string
		level         LogLevel
		logFunc       func(Logger)
		shouldContain bool
	}{
		{
			name:          "Info level allows Info",
			level:         InfoLevel,
			logFunc:       func(l Logger) { l.Info("Info message") },
			shouldContain: true,
		},
		{
			name:          "Info level blocks Debug",
			level:         InfoLevel,
			logFunc:       func(l Logger) { l.Debug("Debug message") },
			shouldContain: false,
		},
		{
			name:          "Debug level allows Debug",
			level:         DebugLevel,
			logFunc:       func(l Logger) { l.Debug("Debug message") },
			shouldContain: true,
		},
		{
			name:          "Error level blocks Warn",
			level:         ErrorLevel,
			logFunc:       func(l Logger) { l.Warn("Warn message") },
			shouldContain: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewLogger(buf, tt.level)

			tt.logFunc(log)

			contains := buf.Len() > 0
			if contains != tt.shouldContain {
				t.Errorf("Message presence = %v, want %v. Output: %s", contains, tt.shouldContain, buf.String())
			}
		})
	}
}

func TestLogger_ContextLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(buf, DebugLevel)
	ctx := context.Background()

	log.DebugContext(ctx, "Debug context message")
	log.InfoContext(ctx, "Info context message")
	log.WarnContext(ctx, "Warn context message")
	log.ErrorContext(ctx, "Error context message")

	output := buf.String()
	for _, want := range []string{"Debug context", "Info context", "Warn context", "Error context"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q: %s", want, output)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNullLogger(t *testing.T) {
	log := NewNullLogger()
	log.Info("discarded {Value}", 1)
	if log.ForContext("k", "v") != log {
		t.Error("ForContext on null logger should return itself")
	}
}
