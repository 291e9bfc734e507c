package geminstall

import (
	"fmt"
	"os/exec"
	"strings"
)

// ToolChecker is an optional interface for builders that require external
// tools. The extension-build orchestrator consults it before spawning
// anything, so a machine without a compiler fails fast with a clear message
// instead of a half-finished build.
type ToolChecker interface {
	// RequiredTools returns the tools this builder needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available and
	// returns an error naming the missing ones.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency. Alternatives handle
// platform differences: gmake for FreeBSD, nmake and cl on Windows, clang on
// macOS.
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "make", "ruby").
	Name string

	// Alternatives are tool names that also satisfy this requirement.
	Alternatives []string

	// Optional tools are checked but never cause an error when missing.
	Optional bool

	// Purpose is a human-readable reason the tool is needed.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available, trying the
// alternatives of each requirement in order. All missing required tools are
// reported in a single error.
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	}

	return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
}
