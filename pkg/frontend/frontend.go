// Package frontend defines the capability every provider parser implements
// and the orchestration that turns a raw document into a parse result. New
// providers implement Frontend and register themselves; shared logic never
// grows provider branches.
package frontend

import (
	"fmt"
	"sort"

	"github.com/unigen-dev/uirgen/pkg/resolver"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

// Diagnostic taxonomy codes. Warnings are recoverable (a default is
// substituted and conversion continues); errors mark the result unusable at
// the scope they occurred.
const (
	CodeSchemaValidation      = "SchemaValidationError"
	CodeUnknownTypeKind       = "UnknownTypeKind"
	CodeUnresolvedReference   = "UnresolvedReference"
	CodeAmbiguousArrayItems   = "AmbiguousArrayItems"
	CodeUnsupportedAuthScheme = "UnsupportedAuthScheme"
)

// Input identifies a source document either by path or as an already-parsed
// in-memory structure. Exactly one field should be set; Document wins when
// both are.
type Input struct {
	// Path is a filesystem path or HTTP(S) URL, depending on what the
	// frontend's loader supports.
	Path string
	// Document is a frontend-specific in-memory document (e.g. *openapi3.T
	// for the OpenAPI frontend, *llmdialect.Document or raw bytes for the
	// dialect frontend).
	Document any
}

// Result is the sole output of a parse. All failure is funneled here;
// Parse never panics past this boundary. A failed result may still carry a
// partial schema for inspection.
type Result struct {
	Success  bool                    `json:"success"`
	Schema   *schema.CanonicalSchema `json:"schema,omitempty"`
	Errors   []string                `json:"errors"`
	Warnings []string                `json:"warnings"`
}

// Frontend is the per-provider parsing capability. Implementations hold no
// per-parse state; everything mutable lives in the resolver handed to
// Convert.
type Frontend interface {
	// ID returns the provider identifier the frontend is registered under.
	ID() string
	// Load turns an Input into the frontend's document form. This is the
	// only point in the pipeline that may touch I/O; external references
	// are fully bundled before Load returns.
	Load(input Input) (any, error)
	// Validate checks required top-level document fields. A returned error
	// aborts the parse with no schema.
	Validate(doc any) error
	// Convert walks the document and assembles the canonical schema,
	// driving res for all type allocation. Node-level issues are recorded
	// on res; only catastrophic failures return an error.
	Convert(doc any, res *resolver.Resolver) (*schema.CanonicalSchema, error)
}

// Parse orchestrates one parse invocation: fresh per-parse state, load,
// validate, convert, collect diagnostics.
func Parse(f Frontend, input Input) Result {
	res := resolver.New()

	doc, err := f.Load(input)
	if err != nil {
		return Result{
			Success:  false,
			Errors:   []string{CodeSchemaValidation + ": " + err.Error()},
			Warnings: []string{},
		}
	}

	if err := f.Validate(doc); err != nil {
		return Result{
			Success:  false,
			Errors:   []string{CodeSchemaValidation + ": " + err.Error()},
			Warnings: []string{},
		}
	}

	s, err := f.Convert(doc, res)
	errs := append([]string{}, res.Errors()...)
	if err != nil {
		errs = append(errs, CodeSchemaValidation+": "+err.Error())
	}
	warnings := append([]string{}, res.Warnings()...)

	return Result{
		Success:  len(errs) == 0,
		Schema:   s,
		Errors:   errs,
		Warnings: warnings,
	}
}

// Registry maps provider ids to frontends.
type Registry struct {
	frontends map[string]Frontend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{frontends: make(map[string]Frontend)}
}

// Register adds a frontend, replacing any previous one with the same id.
func (r *Registry) Register(f Frontend) {
	r.frontends[f.ID()] = f
}

// Get retrieves a frontend by provider id.
func (r *Registry) Get(id string) (Frontend, bool) {
	f, ok := r.frontends[id]
	return f, ok
}

// Parse looks up the provider's frontend and runs a parse.
func (r *Registry) Parse(providerID string, input Input) (Result, error) {
	f, ok := r.frontends[providerID]
	if !ok {
		return Result{}, fmt.Errorf("no frontend registered for provider %q", providerID)
	}
	return Parse(f, input), nil
}

// IDs returns the registered provider ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.frontends))
	for id := range r.frontends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
