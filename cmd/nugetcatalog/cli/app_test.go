package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/output"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/version"
)

func TestGetVersion(t *testing.T) {
	if got := GetVersion(); got != version.Version {
		t.Errorf("GetVersion() = %v, want %v", got, version.Version)
	}
}

func TestGetFullVersion(t *testing.T) {
	if got := GetFullVersion(); !strings.Contains(got, "nugetcatalog version") {
		t.Errorf("GetFullVersion() = %q", got)
	}
}

func TestRoot_VerbosityFlag(t *testing.T) {
	ran := false
	stub := &cobra.Command{
		Use: "stub",
		RunE: func(cmd *cobra.Command, args []string) error {
			ran = true
			return nil
		},
	}
	AddCommand(stub)
	t.Cleanup(func() {
		rootCmd.RemoveCommand(stub)
		Console.SetVerbosity(output.VerbosityNormal)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"stub", "--verbosity", "quiet"})
	if err := Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !ran {
		t.Fatal("stub command did not run")
	}
	if got := Console.GetVerbosity(); got != output.VerbosityQuiet {
		t.Errorf("verbosity = %v, want quiet", got)
	}

	rootCmd.SetArgs([]string{"stub", "--verbosity", "loud"})
	if err := Execute(); err == nil {
		t.Error("Execute() should reject an unknown verbosity")
	}
}
