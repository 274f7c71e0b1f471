package commands

import (
	"github.com/spf13/cobra"

	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/cli"
	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/output"
)

// NewVersionCommand creates the version command
func NewVersionCommand(console *output.Console) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  `Display detailed version information including commit, build date and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console.Println(cli.GetFullVersion())
			return nil
		},
	}
}
