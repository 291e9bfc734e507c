package geminstall

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoadSpecification(t *testing.T) {
	installDir := t.TempDir()
	specDir := filepath.Join(installDir, "specifications")
	mustMkdir(t, specDir)

	spec := &Specification{
		Name:    "builder",
		Version: MustParseVersion("1.2.4"),
		Dependencies: []Dependency{
			{Name: "rake", Requirement: MustParseRequirement(">= 0.4")},
		},
		Executables:  []string{"builder"},
		Autorequire:  "builder",
		RequirePaths: []string{"lib"},
	}

	path, err := SaveSpecification(specDir, spec)
	if err != nil {
		t.Fatalf("SaveSpecification returned error: %v", err)
	}
	if filepath.Base(path) != "builder-1.2.4"+SpecExtension {
		t.Fatalf("descriptor named %s, expected builder-1.2.4%s", filepath.Base(path), SpecExtension)
	}

	loaded, err := LoadSpecification(path)
	if err != nil {
		t.Fatalf("LoadSpecification returned error: %v", err)
	}

	if loaded.FullName() != "builder-1.2.4" {
		t.Errorf("expected full name builder-1.2.4, got %s", loaded.FullName())
	}
	if loaded.LoadedFrom == "" {
		t.Error("LoadedFrom not set on load")
	}
	if loaded.InstallationPath != installDir {
		t.Errorf("expected installation path %s, got %s", installDir, loaded.InstallationPath)
	}
	if len(loaded.Dependencies) != 1 || loaded.Dependencies[0].Name != "rake" {
		t.Fatalf("dependencies not preserved: %+v", loaded.Dependencies)
	}
	if !loaded.Dependencies[0].Requirement.Satisfies(MustParseVersion("0.5")) {
		t.Error("dependency requirement lost its semantics through persistence")
	}
}

func TestLoadSpecificationRejectsNameless(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken"+SpecExtension)
	writeTestFile(t, path, "version = \"1.0\"\n")

	if _, err := LoadSpecification(path); err == nil {
		t.Fatal("expected error for descriptor without a name")
	}
}

func TestFirstRequirePathDefaultsToLib(t *testing.T) {
	spec := &Specification{Name: "x", Version: MustParseVersion("1.0")}
	if got := spec.FirstRequirePath(); got != "lib" {
		t.Errorf("expected lib, got %s", got)
	}

	spec.RequirePaths = []string{"ext", "lib"}
	if got := spec.FirstRequirePath(); got != "ext" {
		t.Errorf("expected ext, got %s", got)
	}
}
