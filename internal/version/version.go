package version

// Version is the current version of argo-history.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-history/internal/version.Version=0.2.0"
// The default value "main" indicates a development build.
var Version = "main"

// GetVersion returns the current version of the tool.
func GetVersion() string {
	return Version
}
