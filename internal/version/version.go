// Package version exposes the build-time version string, overridden via
// -ldflags "-X github.com/hookdeck/dwn-go/internal/version.version=...".
package version

var version = "dev"

func Version() string {
	return version
}
