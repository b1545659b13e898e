// Package generator defines the collaborator contract at the pipeline
// boundary: per-language generators take an immutable canonical schema and
// produce files. The core never touches the filesystem; writing the
// returned files is the caller's job.
package generator

import (
	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

// GeneratedFile is one rendered output file. Path is relative to the
// target's output directory.
type GeneratedFile struct {
	Path       string
	Content    string
	Executable bool
}

// Generator is the per-language generation capability. Implementations
// must allocate their own type-mapper per Generate call; mapped names are
// language- and run-specific and must not be shared across runs.
type Generator interface {
	// Language returns the target identifier (e.g. "typescript").
	Language() string
	// Generate renders files for the target from the canonical schema.
	Generate(target config.Target, s *schema.CanonicalSchema) ([]GeneratedFile, error)
}

// Registry manages available generators.
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds a generator, replacing any previous one for the language.
func (r *Registry) Register(gen Generator) {
	r.generators[gen.Language()] = gen
}

// Get retrieves a generator by language.
func (r *Registry) Get(language string) (Generator, bool) {
	gen, ok := r.generators[language]
	return gen, ok
}

// Languages returns all registered target languages.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.generators))
	for lang := range r.generators {
		out = append(out, lang)
	}
	return out
}
