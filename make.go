package geminstall

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// makeProgram returns the build tool to invoke: the MAKE environment
// override when set, else the platform default.
func makeProgram() string {
	if program := os.Getenv("MAKE"); program != "" {
		return program
	}

	switch runtime.GOOS {
	case "windows":
		return "nmake"
	default:
		return "make"
	}
}

var makefileDestVars = regexp.MustCompile(`(?m)^(RUBYARCHDIR|RUBYLIBDIR)\s*=.*$`)

// patchMakefile rewrites the install-directory variables of a generated
// Makefile to point at destPath. The same paths are also passed as make
// command-line variables; the rewrite covers makefiles that re-derive the
// variables from their own assignments. A Makefile without either variable
// is left alone.
func patchMakefile(makefilePath, destPath string) error {
	content, err := os.ReadFile(makefilePath)
	if err != nil {
		return err
	}

	patched := makefileDestVars.ReplaceAllFunc(content, func(line []byte) []byte {
		name := strings.SplitN(string(line), "=", 2)[0]
		name = strings.TrimSpace(name)
		return []byte(name + " = " + destPath)
	})

	if string(patched) == string(content) {
		return nil
	}

	info, err := os.Stat(makefilePath)
	if err != nil {
		return err
	}

	return os.WriteFile(makefilePath, patched, info.Mode().Perm())
}

// runCommand spawns one build step in dir, recording the command line and its
// combined output into result.Output.
func runCommand(ctx context.Context, config *BuildConfig, dir string, result *BuildResult, name string, args ...string) error {
	result.Output = append(result.Output, strings.TrimSpace(name+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	cmd.Env = os.Environ()
	for key, value := range config.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	output, err := cmd.CombinedOutput()
	result.Output = append(result.Output, strings.Split(strings.TrimRight(string(output), "\n"), "\n")...)

	if config.Verbose {
		result.Output = append(result.Output, fmt.Sprintf("Working directory: %s", dir))
	}

	return err
}

// runMakeAndInstall drives the build tool twice, once to build and once to
// install, passing the install directories as explicit make variables.
func runMakeAndInstall(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult, builderName string) error {
	program := makeProgram()

	var overrides []string
	if config.DestPath != "" {
		overrides = []string{
			"RUBYARCHDIR=" + config.DestPath,
			"RUBYLIBDIR=" + config.DestPath,
		}
	}

	if err := runCommand(ctx, config, extensionDir, result, program, overrides...); err != nil {
		return BuildFailure(builderName, result.Output, err)
	}

	installArgs := append(append([]string{}, overrides...), "install")
	if err := runCommand(ctx, config, extensionDir, result, program, installArgs...); err != nil {
		return BuildFailure(builderName+" install", result.Output, err)
	}

	return nil
}

// findBuiltArtifacts locates compiled extension files in extensionDir,
// returned relative to it.
func findBuiltArtifacts(extensionDir string) ([]string, error) {
	var artifacts []string

	patterns := []string{
		"*.so",     // Linux/Unix shared libraries
		"*.bundle", // macOS bundles
		"*.dll",    // Windows dynamic libraries
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(extensionDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s in %s: %v", pattern, extensionDir, err)
		}

		for _, match := range matches {
			if relPath, err := filepath.Rel(extensionDir, match); err == nil {
				artifacts = append(artifacts, relPath)
			}
		}
	}

	return artifacts, nil
}
