package geminstall

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// SpecExtension is the file extension of persisted specification descriptors.
const SpecExtension = ".toml"

// Dependency is a named version constraint declared by a specification.
type Dependency struct {
	Name        string      `toml:"name"`
	Requirement Requirement `toml:"requirement"`
}

// Specification is the metadata record of a gem: identity, dependencies, and
// everything the installer needs to lay the gem out on disk.
//
// FullName (name-version) is unique among the specifications persisted under
// one install directory; the descriptor file is named after it.
type Specification struct {
	Name         string       `toml:"name"`
	Version      Version      `toml:"version"`
	Dependencies []Dependency `toml:"dependencies,omitempty"`
	Executables  []string     `toml:"executables,omitempty"`
	Autorequire  string       `toml:"autorequire,omitempty"`
	Extensions   []string     `toml:"extensions,omitempty"`
	RequirePaths []string     `toml:"require_paths,omitempty"`

	// InstallationPath is the install root this spec lives under.
	// Set on install and on load, never persisted.
	InstallationPath string `toml:"-"`

	// LoadedFrom is the path of the persisted descriptor file.
	// Set on install and on load, never persisted.
	LoadedFrom string `toml:"-"`
}

// FullName returns the unique name-version identifier.
func (s *Specification) FullName() string {
	return s.Name + "-" + s.Version.String()
}

// FirstRequirePath returns the first declared require path, defaulting to
// "lib" when none is declared. Native extensions are installed under it.
func (s *Specification) FirstRequirePath() string {
	if len(s.RequirePaths) == 0 {
		return "lib"
	}
	return s.RequirePaths[0]
}

// SaveSpecification serializes spec into specDir as <FullName>.toml and
// returns the descriptor path.
func SaveSpecification(specDir string, spec *Specification) (string, error) {
	if spec.Name == "" {
		return "", fmt.Errorf("cannot persist specification without a name")
	}

	data, err := toml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to encode specification %s: %w", spec.FullName(), err)
	}

	path := filepath.Join(specDir, spec.FullName()+SpecExtension)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write specification %s: %w", path, err)
	}

	return path, nil
}

// LoadSpecification reads a persisted descriptor and sets LoadedFrom and
// InstallationPath from its location.
func LoadSpecification(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec Specification
	if err := toml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("malformed specification %s: %w", path, err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("malformed specification %s: missing name", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	spec.LoadedFrom = abs
	spec.InstallationPath = filepath.Dir(filepath.Dir(abs))

	return &spec, nil
}
