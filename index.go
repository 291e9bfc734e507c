package geminstall

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceIndex is the lookup over installed specifications. The installer uses
// it for the dependency preflight, the uninstaller for candidate lookup and
// the dependents scan.
type SourceIndex interface {
	// Search returns the installed specifications matching name whose
	// version satisfies req, sorted by ascending version.
	Search(name string, req Requirement) ([]*Specification, error)

	// Specs returns every installed specification.
	Specs() ([]*Specification, error)
}

// DirectoryIndex is the standard SourceIndex: it scans the specifications
// directory under an install root. There is no caching; each call reflects
// the current on-disk state.
type DirectoryIndex struct {
	dir string
}

var _ SourceIndex = (*DirectoryIndex)(nil)

// NewDirectoryIndex returns an index over installDir/specifications.
func NewDirectoryIndex(installDir string) *DirectoryIndex {
	return &DirectoryIndex{dir: filepath.Join(installDir, "specifications")}
}

// Specs loads every descriptor in the specifications directory. A missing
// directory is an empty index, not an error.
func (ix *DirectoryIndex) Specs() ([]*Specification, error) {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var specs []*Specification
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SpecExtension) {
			continue
		}

		spec, err := LoadSpecification(filepath.Join(ix.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// Search implements SourceIndex.
func (ix *DirectoryIndex) Search(name string, req Requirement) ([]*Specification, error) {
	all, err := ix.Specs()
	if err != nil {
		return nil, err
	}

	var matches []*Specification
	for _, spec := range all {
		if spec.Name == name && req.Satisfies(spec.Version) {
			matches = append(matches, spec)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Version.Compare(matches[j].Version) < 0
	})

	return matches, nil
}
