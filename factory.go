package geminstall

import (
	"fmt"
	"path/filepath"
)

// BuilderFactory holds the registered builders and picks the right one for a
// declared extension file. Builders are checked in registration order; the
// first whose CanBuild returns true wins.
//
// Not thread-safe for registration. Register all builders before use.
type BuilderFactory struct {
	builders []Builder
}

// NewBuilderFactory creates a factory with the standard builders registered:
//
//  1. ExtConfBuilder - extconf.rb scripts
//  2. ConfigureBuilder - configure scripts
//  3. MakefileBuilder - pre-existing Makefiles
func NewBuilderFactory() *BuilderFactory {
	factory := &BuilderFactory{}

	factory.Register(&ExtConfBuilder{})
	factory.Register(&ConfigureBuilder{})
	factory.Register(&MakefileBuilder{})

	return factory
}

// Register adds a builder to the factory.
func (f *BuilderFactory) Register(builder Builder) {
	f.builders = append(f.builders, builder)
}

// BuilderFor returns the builder handling extensionFile, or an error when no
// registered builder can.
func (f *BuilderFactory) BuilderFor(extensionFile string) (Builder, error) {
	filename := filepath.Base(extensionFile)

	for _, builder := range f.builders {
		if builder.CanBuild(filename) {
			return builder, nil
		}
	}

	return nil, fmt.Errorf("no builder found for extension file: %s", filename)
}

// ListBuilders returns a copy of all registered builders.
func (f *BuilderFactory) ListBuilders() []Builder {
	return append([]Builder{}, f.builders...)
}
