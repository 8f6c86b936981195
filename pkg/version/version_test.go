package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	buildInfo := Get()

	if buildInfo.Version == "" {
		t.Error("Expected Version to be populated")
	}

	// GitCommit and BuildDate may be empty in dev builds.
	if buildInfo.GoVersion != runtime.Version() {
		t.Errorf("Expected GoVersion '%s', got '%s'", runtime.Version(), buildInfo.GoVersion)
	}

	expectedPlatform := runtime.GOOS + "/" + runtime.GOARCH
	if buildInfo.Platform != expectedPlatform {
		t.Errorf("Expected Platform '%s', got '%s'", expectedPlatform, buildInfo.Platform)
	}
}

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name      string
		buildInfo BuildInfo
		expected  []string // strings that should be present in output
	}{
		{
			name: "complete build info",
			buildInfo: BuildInfo{
				Version:   "1.0.0",
				GitCommit: "abc123",
				BuildDate: "2023-01-01",
				GoVersion: "go1.24.0",
				Platform:  "linux/amd64",
			},
			expected: []string{
				"wikipen version 1.0.0",
				"(abc123)",
				"built on 2023-01-01",
				"go1.24.0",
				"linux/amd64",
			},
		},
		{
			name: "minimal build info (dev)",
			buildInfo: BuildInfo{
				Version:   "dev",
				GoVersion: "go1.24.0",
				Platform:  "darwin/arm64",
			},
			expected: []string{
				"wikipen version dev",
				"go1.24.0",
				"darwin/arm64",
			},
		},
		{
			name: "with commit but no build date",
			buildInfo: BuildInfo{
				Version:   "v0.1.0",
				GitCommit: "def456",
				GoVersion: "go1.24.0",
				Platform:  "windows/amd64",
			},
			expected: []string{
				"wikipen version v0.1.0",
				"(def456)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.buildInfo.String()
			for _, want := range tt.expected {
				if !strings.Contains(result, want) {
					t.Errorf("Expected output to contain '%s', got: %s", want, result)
				}
			}
		})
	}
}

func TestBuildInfoStringOmitsEmptyFields(t *testing.T) {
	buildInfo := BuildInfo{
		Version:   "dev",
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
	}

	result := buildInfo.String()
	if strings.Contains(result, "(") {
		t.Errorf("Expected no commit parens for empty GitCommit, got: %s", result)
	}
	if strings.Contains(result, "built on") {
		t.Errorf("Expected no build date for empty BuildDate, got: %s", result)
	}
}
