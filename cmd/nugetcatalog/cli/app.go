// Package cli holds the nugetcatalog root command.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/output"
)

var rootCmd = &cobra.Command{
	Use:   "nugetcatalog",
	Short: "Catalog the NuGet packages a GitHub repository references",
	Long: `nugetcatalog scans a GitHub repository for project files, resolves every
PackageReference against a NuGet v3 feed and stores the resulting catalog of
package names, icons and details links.

Configuration is read from nugetcatalog.toml and NUGETCATALOG_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := cmd.Flags().GetString("verbosity")
		if err != nil {
			return err
		}
		verbosity, err := output.ParseVerbosity(v)
		if err != nil {
			return err
		}
		Console.SetVerbosity(verbosity)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands
var Console *output.Console

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	Console = output.DefaultConsole()

	rootCmd.PersistentFlags().String("verbosity", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}
