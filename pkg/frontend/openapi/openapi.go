// Package openapi implements the OpenAPI 3.0/3.1 frontend on top of
// kin-openapi. The loader bundles external references before conversion
// begins, so Convert only ever sees a self-contained document.
package openapi

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/unigen-dev/uirgen/pkg/frontend"
	"github.com/unigen-dev/uirgen/pkg/resolver"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

// ProviderID is the identifier this frontend registers under.
const ProviderID = "openapi"

// Frontend parses OpenAPI 3.x documents. It is stateless; all per-parse
// state lives in the resolver handed to Convert.
type Frontend struct{}

// New creates the OpenAPI frontend.
func New() *Frontend {
	return &Frontend{}
}

// ID returns the provider identifier.
func (f *Frontend) ID() string { return ProviderID }

// Load resolves the input to a bundled *openapi3.T. Paths may be local
// files or HTTP(S) URLs; in-memory inputs may be an already-loaded document
// or raw bytes.
func (f *Frontend) Load(input frontend.Input) (any, error) {
	switch doc := input.Document.(type) {
	case *openapi3.T:
		return doc, nil
	case []byte:
		loader := newLoader()
		return loader.LoadFromData(doc)
	case nil:
		// fall through to path loading
	default:
		return nil, fmt.Errorf("unsupported OpenAPI input type %T", input.Document)
	}
	if input.Path == "" {
		return nil, errors.New("no document or path provided")
	}
	return loadFromPath(newLoader(), input.Path)
}

func newLoader() *openapi3.Loader {
	return &openapi3.Loader{IsExternalRefsAllowed: true}
}

func loadFromPath(loader *openapi3.Loader, input string) (*openapi3.T, error) {
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return loader.LoadFromURI(u)
	}
	return loader.LoadFromFile(input)
}

// Validate checks the required top-level fields. Anything missing here is
// an immediate, schema-less failure.
func (f *Frontend) Validate(doc any) error {
	d, ok := doc.(*openapi3.T)
	if !ok {
		return fmt.Errorf("expected *openapi3.T, got %T", doc)
	}
	if d.OpenAPI == "" {
		return errors.New("missing openapi version field")
	}
	if d.Info == nil {
		return errors.New("missing info block")
	}
	if d.Paths == nil || d.Paths.Len() == 0 {
		return errors.New("document declares no paths")
	}
	return nil
}

// Convert assembles the canonical schema from a validated document.
func (f *Frontend) Convert(doc any, res *resolver.Resolver) (*schema.CanonicalSchema, error) {
	d, ok := doc.(*openapi3.T)
	if !ok {
		return nil, fmt.Errorf("expected *openapi3.T, got %T", doc)
	}
	c := &converter{doc: d, res: res}
	return c.convert(), nil
}
