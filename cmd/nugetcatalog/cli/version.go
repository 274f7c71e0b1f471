package cli

import "github.com/willibrandon/nugetcatalog/cmd/nugetcatalog/version"

// GetVersion returns the short version string.
func GetVersion() string {
	return version.Version
}

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return version.FullInfo()
}
