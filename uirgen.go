// Package uirgen normalizes LLM-provider API descriptions into one
// canonical schema and renders typed models from it.
//
// The pipeline has three stages: a provider frontend parses a source
// document (OpenAPI 3.x or the YAML dialect) into the canonical schema, a
// type mapper projects schema references onto target-language type
// expressions, and per-language generators render model files.
//
// Quick start:
//
//	import "github.com/unigen-dev/uirgen"
//
//	result, err := uirgen.Parse("openapi", "./openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.Success {
//		log.Fatalf("parse failed: %v", result.Errors)
//	}
//
// For full control over registries and targets, see the pkg/frontend and
// pkg/generator packages.
package uirgen

import (
	"fmt"

	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/frontend"
	"github.com/unigen-dev/uirgen/pkg/frontend/llmdialect"
	"github.com/unigen-dev/uirgen/pkg/frontend/openapi"
	"github.com/unigen-dev/uirgen/pkg/generator"
	"github.com/unigen-dev/uirgen/pkg/generator/golang"
	"github.com/unigen-dev/uirgen/pkg/generator/python"
	"github.com/unigen-dev/uirgen/pkg/generator/typescript"
)

// DefaultFrontends returns a registry with every built-in provider
// frontend registered.
func DefaultFrontends() *frontend.Registry {
	reg := frontend.NewRegistry()
	reg.Register(openapi.New())
	reg.Register(llmdialect.New())
	return reg
}

// DefaultGenerators returns a registry with every built-in language
// generator registered.
func DefaultGenerators() *generator.Registry {
	reg := generator.NewRegistry()
	reg.Register(typescript.New())
	reg.Register(golang.New())
	reg.Register(python.New())
	return reg
}

// Parse runs the named provider frontend over a source document path or
// URL and returns the parse result.
//
// Example:
//
//	result, err := uirgen.Parse("llm-dialect", "./provider.yaml")
func Parse(providerID, specPath string) (frontend.Result, error) {
	return DefaultFrontends().Parse(providerID, frontend.Input{Path: specPath})
}

// ParseDocument runs the named provider frontend over an already-loaded
// document (e.g. *openapi3.T, raw bytes, or a decoded dialect document).
func ParseDocument(providerID string, doc any) (frontend.Result, error) {
	return DefaultFrontends().Parse(providerID, frontend.Input{Document: doc})
}

// Generate parses the configured source document once and renders every
// target, returning the files grouped by target index. Nothing is written
// to disk; callers own persistence.
func Generate(cfg *config.Config) ([][]generator.GeneratedFile, error) {
	result, err := Parse(cfg.Provider, cfg.Spec)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("parsing %s failed: %v", cfg.Spec, result.Errors)
	}

	gens := DefaultGenerators()
	out := make([][]generator.GeneratedFile, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		gen, ok := gens.Get(target.Language)
		if !ok {
			return nil, fmt.Errorf("unsupported target language: %s", target.Language)
		}
		files, err := gen.Generate(target, result.Schema)
		if err != nil {
			return nil, err
		}
		out = append(out, files)
	}
	return out, nil
}
