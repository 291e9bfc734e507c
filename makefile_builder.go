package geminstall

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// MakefileBuilder handles gems that ship a Makefile directly, without an
// extconf.rb or configure script. Common in legacy gems that predate the
// extconf conventions.
type MakefileBuilder struct{}

// Name returns the builder name
func (b *MakefileBuilder) Name() string {
	return "Makefile"
}

// RequiredTools returns the tools needed for Makefile builds
func (b *MakefileBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:         "make",
			Alternatives: []string{"gmake", "nmake"},
			Purpose:      "Build automation tool",
		},
		{
			Name:         "gcc",
			Alternatives: []string{"clang", "cc", "cl"},
			Purpose:      "C/C++ compiler",
		},
	}
}

// CheckTools verifies that make and a compiler are available
func (b *MakefileBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// CanBuild checks if this builder can handle the extension file
func (b *MakefileBuilder) CanBuild(extensionFile string) bool {
	filename := strings.ToLower(filepath.Base(extensionFile))
	return filename == "makefile" || filename == "gnumakefile"
}

// Build compiles the extension using the shipped Makefile
func (b *MakefileBuilder) Build(ctx context.Context, config *BuildConfig, extensionFile string) (*BuildResult, error) {
	return runCommonBuild(ctx, config, extensionFile, commonBuildSteps{
		configureFunc: b.patchOnly,
		buildFunc: func(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error {
			return runMakeAndInstall(ctx, config, extensionDir, result, b.Name())
		},
		findFunc: findBuiltArtifacts,
	})
}

// patchOnly points the existing Makefile's install directories at the
// destination; no generation step is needed.
func (b *MakefileBuilder) patchOnly(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error {
	if config.DestPath == "" {
		return nil
	}

	makefilePath := filepath.Join(extensionDir, "Makefile")
	if _, err := os.Stat(makefilePath); err != nil {
		if os.IsNotExist(err) {
			makefilePath = filepath.Join(extensionDir, "GNUmakefile")
		}
	}
	if _, err := os.Stat(makefilePath); err != nil {
		return nil
	}

	if err := patchMakefile(makefilePath, config.DestPath); err != nil {
		return BuildFailure(b.Name(), result.Output, err)
	}

	return nil
}
