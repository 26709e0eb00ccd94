// ABOUTME: Version constants for the loopdeck player
// ABOUTME: Single place the build stamps release information

package version

// Set at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
var (
	Version = "0.1.0-dev"
	Product = "loopdeck"
)
