package geminstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Uninstaller removes installed packages: candidate lookup through the
// index, interactive disambiguation, the reverse-dependency check, and the
// removal of every installed artifact.
//
// Like the Installer, it assumes exclusive ownership of the install
// directory for the duration of a call.
type Uninstaller struct {
	Dir    string
	Index  SourceIndex
	Env    RubyEnv
	UI     Console
	Logger *log.Logger
}

// NewUninstaller returns an uninstaller rooted at installDir, prompting on
// stdin/stdout. Automated callers replace UI with their own Console.
func NewUninstaller(installDir string) *Uninstaller {
	return &Uninstaller{
		Dir:    installDir,
		Index:  NewDirectoryIndex(installDir),
		Env:    DefaultRubyEnv(),
		UI:     NewTerminalConsole(os.Stdin, os.Stdout),
		Logger: log.New(os.Stderr),
	}
}

// Uninstall removes the installed gems matching name and constraint. An
// empty constraint matches every released version.
//
// No match is reported and is not an error, so removing an already-removed
// gem is idempotent. A single match is removed directly. Multiple matches
// prompt for a selection, with an extra "All versions" entry; invalid input
// returns a *SelectionError and takes no action.
func (u *Uninstaller) Uninstall(ctx context.Context, name, constraint string) error {
	req := DefaultRequirement()
	if constraint != "" {
		parsed, err := ParseRequirement(constraint)
		if err != nil {
			return err
		}
		req = parsed
	}

	matches, err := u.Index.Search(name, req)
	if err != nil {
		return err
	}

	// Removal decisions consider every installed version of the gem, not
	// just the ones the constraint selected: launcher and stub cleanup
	// must see the versions that survive.
	list, err := u.Index.Search(name, DefaultRequirement())
	if err != nil {
		return err
	}

	switch len(matches) {
	case 0:
		u.Logger.Warn("unknown gem", "name", name, "constraint", req.String())
		return nil
	case 1:
		_, err := u.Remove(ctx, matches[0], list)
		return err
	}

	choices := make([]string, 0, len(matches)+1)
	for _, spec := range matches {
		choices = append(choices, spec.FullName())
	}
	choices = append(choices, "All versions")

	selected, err := u.UI.Choose(fmt.Sprintf("Select gem to uninstall (%s):", name), choices)
	if err != nil {
		return err
	}

	if selected < len(matches) {
		_, err := u.Remove(ctx, matches[selected], list)
		return err
	}

	remaining := list
	for _, spec := range append([]*Specification{}, matches...) {
		remaining, err = u.Remove(ctx, spec, remaining)
		if err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes one installed gem and returns the updated set of remaining
// specifications for that gem.
//
// The dependent check runs first and completes before anything is deleted:
// a declined confirmation returns *DependentExistsError with the filesystem
// untouched. On success the package directory, descriptor, cached archive
// and generated documentation are all removed together, and launcher and
// library stubs are reconciled against the remaining versions.
func (u *Uninstaller) Remove(ctx context.Context, spec *Specification, remaining []*Specification) ([]*Specification, error) {
	if err := ctx.Err(); err != nil {
		return remaining, err
	}

	if err := u.confirmDependents(spec); err != nil {
		return remaining, err
	}

	if err := u.deleteArtifacts(spec); err != nil {
		return remaining, err
	}

	updated := make([]*Specification, 0, len(remaining))
	for _, other := range remaining {
		if other.FullName() != spec.FullName() {
			updated = append(updated, other)
		}
	}

	u.cleanupStubs(spec, updated)

	u.Logger.Info("uninstalled", "gem", spec.FullName())
	return updated, nil
}

// confirmDependents walks every installed gem whose dependency constraint is
// satisfied by spec and asks for confirmation per dependent. Any decline
// aborts with *DependentExistsError before any filesystem change.
func (u *Uninstaller) confirmDependents(spec *Specification) error {
	all, err := u.Index.Specs()
	if err != nil {
		return err
	}

	for _, other := range all {
		if other.FullName() == spec.FullName() {
			continue
		}

		for _, dep := range other.Dependencies {
			if dep.Name != spec.Name || !dep.Requirement.Satisfies(spec.Version) {
				continue
			}

			var satisfying []string
			for _, candidate := range all {
				if candidate.Name == spec.Name && dep.Requirement.Satisfies(candidate.Version) {
					satisfying = append(satisfying, candidate.FullName())
				}
			}

			prompt := fmt.Sprintf(
				"%s depends on %s (%s)\nsatisfied by: %s\nRemove %s anyway?",
				other.FullName(), spec.Name, dep.Requirement,
				strings.Join(satisfying, ", "), spec.FullName())

			confirmed, err := u.UI.Confirm(prompt)
			if err != nil {
				return err
			}
			if !confirmed {
				return &DependentExistsError{FullName: spec.FullName(), Dependent: other.FullName()}
			}
		}
	}

	return nil
}

// deleteArtifacts removes the installed manifestation of spec: package
// directory, descriptor, cached archive, generated documentation.
func (u *Uninstaller) deleteArtifacts(spec *Specification) error {
	fullName := spec.FullName()

	if err := os.RemoveAll(filepath.Join(u.Dir, "gems", fullName)); err != nil {
		return fmt.Errorf("failed to remove package directory: %w", err)
	}

	descriptor := spec.LoadedFrom
	if descriptor == "" {
		descriptor = filepath.Join(u.Dir, "specifications", fullName+SpecExtension)
	}
	if err := os.Remove(descriptor); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove descriptor: %w", err)
	}

	cached := filepath.Join(u.Dir, "cache", fullName+".gem")
	if err := os.Remove(cached); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cached archive: %w", err)
	}

	if err := os.RemoveAll(filepath.Join(u.Dir, "doc", fullName)); err != nil {
		return fmt.Errorf("failed to remove documentation: %w", err)
	}

	return nil
}

// cleanupStubs reconciles launcher and library stubs after a removal.
//
// Launchers belonging only to the removed version are deleted; launchers
// shared with a remaining version are regenerated from the latest remaining
// one. The library stub follows the same rule: the latest remaining version
// decides which autorequire stub exists.
func (u *Uninstaller) cleanupStubs(spec *Specification, remaining []*Specification) {
	var latest *Specification
	for _, other := range remaining {
		if other.Name != spec.Name {
			continue
		}
		if latest == nil || other.Version.Compare(latest.Version) > 0 {
			latest = other
		}
	}

	for _, executable := range spec.Executables {
		target := filepath.Join(u.Env.BinDir, executable)

		if latest != nil && containsString(latest.Executables, executable) {
			script := LauncherScript(u.Env.RubyPath, latest.Name, latest.Version, executable)
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				u.Logger.Warn("failed to regenerate launcher", "path", target, "error", err)
			}
			continue
		}

		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			u.Logger.Warn("failed to remove launcher", "path", target, "error", err)
		}
	}

	if spec.Autorequire == "" || u.Env.SiteLibDir == "" {
		return
	}

	oldStub := filepath.Join(u.Env.SiteLibDir, spec.Autorequire+".rb")

	switch {
	case latest == nil || latest.Autorequire == "":
		if err := os.Remove(oldStub); err != nil && !os.IsNotExist(err) {
			u.Logger.Warn("failed to remove library stub", "path", oldStub, "error", err)
		}
	case latest.Autorequire != spec.Autorequire:
		if err := os.Remove(oldStub); err != nil && !os.IsNotExist(err) {
			u.Logger.Warn("failed to remove library stub", "path", oldStub, "error", err)
		}
		newStub := filepath.Join(u.Env.SiteLibDir, latest.Autorequire+".rb")
		if err := os.WriteFile(newStub, []byte(LibraryStub(latest.Name)), 0o644); err != nil {
			u.Logger.Warn("failed to write library stub", "path", newStub, "error", err)
		}
	}
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
