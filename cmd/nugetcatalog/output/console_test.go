package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_Println(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Println("hello")
	if got := out.String(); got != "hello\n" {
		t.Errorf("Println() = %q, want %q", got, "hello\n")
	}
}

func TestConsole_Printf(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Printf("hello %s", "world")
	if got := out.String(); got != "hello world" {
		t.Errorf("Printf() = %q, want %q", got, "hello world")
	}
}

func TestConsole_ErrorGoesToErr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityNormal)
	c.SetColors(false)
	c.Error("operation failed")
	got := errBuf.String()
	if !strings.Contains(got, "Error:") || !strings.Contains(got, "operation failed") {
		t.Errorf("Error() output doesn't contain expected message, got: %q", got)
	}
	if outBuf.Len() != 0 {
		t.Errorf("Error() wrote to out: %q", outBuf.String())
	}
}

func TestConsole_WarningGoesToErr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityNormal)
	c.SetColors(false)
	c.Warning("stale catalog")
	if got := errBuf.String(); got != "Warning: stale catalog\n" {
		t.Errorf("Warning() = %q", got)
	}
}

func TestConsole_VerbosityQuiet(t *testing.T) {
	var out, errBuf bytes.Buffer
	c := NewConsole(&out, &errBuf, VerbosityQuiet)
	c.SetColors(false)

	c.Success("success message")
	c.Warning("warning message")
	c.Info("info message")
	c.Detail("detail message")
	c.Debug("debug message")

	if out.Len() != 0 || errBuf.Len() != 0 {
		t.Errorf("Quiet mode should not output normal messages, got: %q %q", out.String(), errBuf.String())
	}

	c.Error("error message")
	if !strings.Contains(errBuf.String(), "error message") {
		t.Errorf("Quiet mode should output error messages")
	}
}

func TestConsole_VerbosityLevels(t *testing.T) {
	tests := []struct {
		verbosity  Verbosity
		wantDetail bool
		wantDebug  bool
	}{
		{VerbosityNormal, false, false},
		{VerbosityDetailed, true, false},
		{VerbosityDiagnostic, true, true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := NewConsole(&out, &out, tt.verbosity)
		c.SetColors(false)
		c.Detail("detail")
		c.Debug("debug")

		got := out.String()
		if strings.Contains(got, "detail") != tt.wantDetail {
			t.Errorf("verbosity %d: detail present = %v, want %v", tt.verbosity, !tt.wantDetail, tt.wantDetail)
		}
		if strings.Contains(got, "[DEBUG] debug") != tt.wantDebug {
			t.Errorf("verbosity %d: debug present = %v, want %v", tt.verbosity, !tt.wantDebug, tt.wantDebug)
		}
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"quiet", VerbosityQuiet, false},
		{"", VerbosityNormal, false},
		{"Detailed", VerbosityDetailed, false},
		{"diag", VerbosityDiagnostic, false},
		{"chatty", VerbosityNormal, true},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, %v; want %v, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestIsTerminal_Buffer(t *testing.T) {
	var buf bytes.Buffer
	if IsTerminal(&buf) {
		t.Error("a buffer is not a terminal")
	}
	if IsColorEnabled(&buf) {
		t.Error("colors should be disabled for a buffer")
	}
	if got := TerminalWidth(&buf, 80); got != 80 {
		t.Errorf("TerminalWidth() = %d, want fallback 80", got)
	}
}
