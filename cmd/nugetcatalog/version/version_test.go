package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	got := Info()
	if !strings.HasPrefix(got, "nugetcatalog version "+Version) {
		t.Errorf("Info() = %q", got)
	}
	if strings.Contains(got, "go:") {
		t.Errorf("Info() should not include the Go version: %q", got)
	}
}

func TestFullInfo(t *testing.T) {
	got := FullInfo()
	if !strings.Contains(got, "go: "+GoVersion) {
		t.Errorf("FullInfo() = %q, missing Go version", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); !strings.HasPrefix(got, "nugetcatalog/"+Version) {
		t.Errorf("UserAgent() = %q", got)
	}
}
