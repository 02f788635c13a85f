package version

// Name is the service name used in logs and startup banners.
const Name = "togglekeep"

// Version is overridden at build time via -ldflags.
var Version = "dev"

// Full returns the printable version string.
func Full() string {
	return Version
}
