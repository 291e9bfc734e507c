package geminstall

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMakeProgramHonorsEnvOverride(t *testing.T) {
	t.Setenv("MAKE", "gmake")
	if got := makeProgram(); got != "gmake" {
		t.Errorf("expected gmake, got %s", got)
	}
}

func TestPatchMakefileRewritesInstallDirs(t *testing.T) {
	dir := t.TempDir()
	makefile := filepath.Join(dir, "Makefile")
	writeTestFile(t, makefile, "CC = gcc\nRUBYARCHDIR = /usr/lib/ruby\nRUBYLIBDIR=/usr/lib/ruby\n\nall:\n\ttrue\n")

	if err := patchMakefile(makefile, "/gems/json-1.0/lib"); err != nil {
		t.Fatalf("patchMakefile returned error: %v", err)
	}

	content, err := os.ReadFile(makefile)
	if err != nil {
		t.Fatalf("failed to re-read Makefile: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "RUBYARCHDIR = /gems/json-1.0/lib\n") {
		t.Errorf("RUBYARCHDIR not rewritten:\n%s", text)
	}
	if !strings.Contains(text, "RUBYLIBDIR = /gems/json-1.0/lib\n") {
		t.Errorf("RUBYLIBDIR not rewritten:\n%s", text)
	}
	if !strings.Contains(text, "CC = gcc") {
		t.Errorf("unrelated assignment was touched:\n%s", text)
	}
}

func TestMakefileBuilderDrivesBuildAndInstall(t *testing.T) {
	gemDir := t.TempDir()
	extDir := filepath.Join(gemDir, "ext")
	writeTestFile(t, filepath.Join(extDir, "Makefile"), "RUBYARCHDIR = /old\nRUBYLIBDIR = /old\nall:\n")

	// Fake make that records its arguments and produces an artifact.
	fakeMake := filepath.Join(t.TempDir(), "make")
	script := "#!/bin/sh\necho \"$@\" >> invocations.txt\ntouch fake.so\n"
	if err := os.WriteFile(fakeMake, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake make: %v", err)
	}
	t.Setenv("MAKE", fakeMake)

	config := &BuildConfig{
		GemDir:   gemDir,
		DestPath: filepath.Join(gemDir, "lib"),
	}

	builder := &MakefileBuilder{}
	result, err := builder.Build(context.Background(), config, "ext/Makefile")
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	found := false
	for _, artifact := range result.Artifacts {
		if artifact == "fake.so" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fake.so in artifacts, got %v", result.Artifacts)
	}

	invocations, err := os.ReadFile(filepath.Join(extDir, "invocations.txt"))
	if err != nil {
		t.Fatalf("fake make never ran: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(invocations)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected build and install invocations, got %v", lines)
	}
	if !strings.Contains(lines[0], "RUBYARCHDIR="+config.DestPath) {
		t.Errorf("build invocation missing install dir override: %s", lines[0])
	}
	if !strings.Contains(lines[1], "install") {
		t.Errorf("second invocation is not the install step: %s", lines[1])
	}

	makefile, _ := os.ReadFile(filepath.Join(extDir, "Makefile"))
	if !strings.Contains(string(makefile), "RUBYARCHDIR = "+config.DestPath) {
		t.Error("Makefile install dirs were not patched")
	}
}

// okBuilder and failBuilder drive the orchestrator without external tools.
type okBuilder struct{}

func (okBuilder) Name() string              { return "Ok" }
func (okBuilder) CanBuild(file string) bool { return strings.HasSuffix(file, ".okbuild") }
func (okBuilder) Build(ctx context.Context, config *BuildConfig, extensionFile string) (*BuildResult, error) {
	return &BuildResult{Success: true, Output: []string{"ok build", "done"}}, nil
}

type failBuilder struct{}

func (failBuilder) Name() string              { return "Fail" }
func (failBuilder) CanBuild(file string) bool { return strings.HasSuffix(file, ".failbuild") }
func (failBuilder) Build(ctx context.Context, config *BuildConfig, extensionFile string) (*BuildResult, error) {
	result := &BuildResult{Output: []string{"simulated failure"}}
	err := BuildFailure("Fail", result.Output, errors.New("boom"))
	result.Error = err
	return result, err
}

func newTestExtensionBuilder(builders ...Builder) *ExtensionBuilder {
	factory := &BuilderFactory{}
	for _, b := range builders {
		factory.Register(b)
	}
	return &ExtensionBuilder{Factory: factory, Logger: quietLogger()}
}

func TestBuildExtensionsIsNoOpWithoutExtensions(t *testing.T) {
	pkgDir := t.TempDir()
	spec := &Specification{Name: "plain", Version: MustParseVersion("1.0")}

	e := newTestExtensionBuilder(failBuilder{})
	if err := e.BuildExtensions(context.Background(), pkgDir, spec, BuildConfig{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		t.Fatalf("failed to read package dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("no-op build touched the package dir: %v", entries)
	}
}

func TestBuildExtensionsWritesLogOnSuccess(t *testing.T) {
	pkgDir := t.TempDir()
	writeTestFile(t, filepath.Join(pkgDir, "ext", "thing.okbuild"), "")

	spec := &Specification{
		Name:       "native",
		Version:    MustParseVersion("2.0"),
		Extensions: []string{"ext/thing.okbuild"},
	}

	e := newTestExtensionBuilder(okBuilder{})
	if err := e.BuildExtensions(context.Background(), pkgDir, spec, BuildConfig{}); err != nil {
		t.Fatalf("BuildExtensions returned error: %v", err)
	}

	logContent, err := os.ReadFile(filepath.Join(pkgDir, "ext", BuildLogName))
	if err != nil {
		t.Fatalf("build log missing: %v", err)
	}
	if !strings.Contains(string(logContent), "ok build") {
		t.Errorf("build log missing captured output: %s", logContent)
	}

	if _, err := os.Stat(filepath.Join(pkgDir, "lib")); err != nil {
		t.Errorf("destination require path not created: %v", err)
	}
}

func TestBuildExtensionsReportsFailureWithLogPointer(t *testing.T) {
	pkgDir := t.TempDir()
	writeTestFile(t, filepath.Join(pkgDir, "ext", "thing.failbuild"), "")

	spec := &Specification{
		Name:       "native",
		Version:    MustParseVersion("2.0"),
		Extensions: []string{"ext/thing.failbuild"},
	}

	e := newTestExtensionBuilder(failBuilder{})
	err := e.BuildExtensions(context.Background(), pkgDir, spec, BuildConfig{})

	var buildErr *ExtensionBuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *ExtensionBuildError, got %v", err)
	}

	if buildErr.LogPath != filepath.Join(pkgDir, "ext", BuildLogName) {
		t.Errorf("unexpected log path %s", buildErr.LogPath)
	}
	if _, statErr := os.Stat(buildErr.LogPath); statErr != nil {
		t.Errorf("build log was not written: %v", statErr)
	}
}

func TestBuildExtensionsFailsWhenNoBuilderMatches(t *testing.T) {
	pkgDir := t.TempDir()
	writeTestFile(t, filepath.Join(pkgDir, "ext", "strange.txt"), "")

	spec := &Specification{
		Name:       "native",
		Version:    MustParseVersion("2.0"),
		Extensions: []string{"ext/strange.txt"},
	}

	e := newTestExtensionBuilder(okBuilder{})
	err := e.BuildExtensions(context.Background(), pkgDir, spec, BuildConfig{})

	var buildErr *ExtensionBuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *ExtensionBuildError, got %v", err)
	}
}
