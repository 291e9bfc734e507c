package geminstall

import (
	"context"
	"path/filepath"
)

// commonBuildSteps is the standard 3-step build pattern shared by the
// builders: configure generates build files, build compiles and installs,
// find locates the produced artifacts.
type commonBuildSteps struct {
	configureFunc func(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error
	buildFunc     func(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error
	findFunc      func(extensionDir string) ([]string, error)
}

// runCommonBuild executes the 3-step build process. If any step fails,
// processing stops, result.Error is set and the partial result is returned
// alongside the error so callers can still persist the captured output.
func runCommonBuild(ctx context.Context, config *BuildConfig, extensionFile string, steps commonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Success: false,
		Output:  []string{},
	}

	extensionPath := filepath.Join(config.GemDir, extensionFile)
	extensionDir := filepath.Dir(extensionPath)

	if err := steps.configureFunc(ctx, config, extensionDir, result); err != nil {
		result.Error = err
		return result, err
	}

	if err := steps.buildFunc(ctx, config, extensionDir, result); err != nil {
		result.Error = err
		return result, err
	}

	artifacts, err := steps.findFunc(extensionDir)
	if err != nil {
		result.Error = err
		return result, err
	}

	result.Artifacts = artifacts
	result.Success = true
	return result, nil
}
