package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckConfigCompatibility checks whether a config file declaring configVersion can be
// read by a tool built as toolVersion. Returns nil if compatible.
//
// Compatibility Rules:
//   - An empty config version or a "main" tool build skips the check
//   - The tool must satisfy the caret range of the config version (^configVersion)
//   - Prerelease and build metadata of the tool are ignored
//
// Examples:
//   - Tool 1.2.0, Config 1.2.0 -> OK
//   - Tool 1.4.2, Config 1.2.0 -> OK (newer minor reads older files)
//   - Tool 1.1.0, Config 1.2.0 -> ERROR (config is newer)
//   - Tool 2.0.0, Config 1.2.0 -> ERROR (major differs)
//   - Tool 0.3.0, Config 0.2.0 -> ERROR (minor is breaking before 1.0)
func CheckConfigCompatibility(toolVersion, configVersion string) error {
	toolVersion = strings.TrimPrefix(strings.TrimSpace(toolVersion), "v")
	configVersion = strings.TrimPrefix(strings.TrimSpace(configVersion), "v")

	if configVersion == "" || toolVersion == "main" {
		return nil
	}

	tool, err := semver.NewVersion(toolVersion)
	if err != nil {
		return fmt.Errorf("invalid tool version '%s': %w", toolVersion, err)
	}

	release, err := tool.SetPrerelease("")
	if err != nil {
		return fmt.Errorf("invalid tool version '%s': %w", toolVersion, err)
	}

	release, err = release.SetMetadata("")
	if err != nil {
		return fmt.Errorf("invalid tool version '%s': %w", toolVersion, err)
	}

	if _, err := semver.NewVersion(configVersion); err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	constraint, err := semver.NewConstraint("^" + configVersion)
	if err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	if !constraint.Check(&release) {
		return fmt.Errorf("config version %s is not supported by argo-history %s", configVersion, tool.String())
	}

	return nil
}
