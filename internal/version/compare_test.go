package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		toolVersion   string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			toolVersion:   "1.2.0",
			configVersion: "1.2.0",
		},
		{
			name:          "tool patch higher",
			toolVersion:   "1.2.3",
			configVersion: "1.2.0",
		},
		{
			name:          "tool minor higher",
			toolVersion:   "1.4.0",
			configVersion: "1.2.0",
		},
		{
			name:          "config newer than tool",
			toolVersion:   "1.1.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "not supported",
		},
		{
			name:          "major version differs",
			toolVersion:   "2.0.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "not supported",
		},
		{
			name:          "minor differs before 1.0",
			toolVersion:   "0.3.0",
			configVersion: "0.2.0",
			expectError:   true,
			errorContains: "not supported",
		},
		{
			name:          "patch differs before 1.0",
			toolVersion:   "0.2.4",
			configVersion: "0.2.1",
		},
		{
			name:          "empty config version",
			toolVersion:   "1.0.0",
			configVersion: "",
		},
		{
			name:          "tool is main",
			toolVersion:   "main",
			configVersion: "9.9.9",
		},
		{
			name:          "v prefix on both",
			toolVersion:   "v1.2.0",
			configVersion: "v1.2",
		},
		{
			name:          "tool prerelease",
			toolVersion:   "1.2.0-rc.1",
			configVersion: "1.2.0",
		},
		{
			name:          "tool build metadata",
			toolVersion:   "1.2.0+build123",
			configVersion: "1.2.0",
		},
		{
			name:          "invalid tool version",
			toolVersion:   "not-a-version",
			configVersion: "1.0.0",
			expectError:   true,
			errorContains: "invalid tool version",
		},
		{
			name:          "invalid config version",
			toolVersion:   "1.0.0",
			configVersion: "latest",
			expectError:   true,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.toolVersion, tt.configVersion)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "1.0.0"
	assert.Equal(t, "1.0.0", GetVersion())
}
