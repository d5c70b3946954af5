package engine

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/mgit-dev/mgit/internal/model"
)

// Platform tokens accepted in a step's platform field.
const (
	PlatformWindows = "windows"
	PlatformLinux   = "linux"
	PlatformMacOS   = "macos"
	PlatformAll     = "all"
)

var knownPlatforms = map[string]bool{
	PlatformWindows: true,
	PlatformLinux:   true,
	PlatformMacOS:   true,
	PlatformAll:     true,
}

// CurrentPlatform maps runtime.GOOS to a platform token.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformLinux
	}
}

// ParsePlatforms parses a comma separated platform constraint. An empty
// constraint means every platform. Unknown tokens are a configuration error,
// never silently ignored.
func ParsePlatforms(constraint string) ([]string, error) {
	if strings.TrimSpace(constraint) == "" {
		return []string{PlatformAll}, nil
	}

	parts := strings.Split(constraint, ",")
	platforms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if !knownPlatforms[p] {
			return nil, fmt.Errorf("unknown platform token %q: %w", p, model.ErrNotValid)
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// EligibleOn reports whether a step constrained to platforms may run on the
// given platform.
func EligibleOn(platforms []string, platform string) bool {
	for _, p := range platforms {
		if p == PlatformAll || p == platform {
			return true
		}
	}
	return false
}
