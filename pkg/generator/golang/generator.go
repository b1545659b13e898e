// Package golang renders Go model declarations from a canonical schema.
package golang

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/generator"
	"github.com/unigen-dev/uirgen/pkg/schema"
	"github.com/unigen-dev/uirgen/pkg/typemap"
)

//go:embed templates/*
var templatesFS embed.FS

// Generator implements the Go target.
type Generator struct{}

// New creates a Go generator.
func New() *Generator {
	return &Generator{}
}

// Language returns the target identifier.
func (g *Generator) Language() string { return typemap.LangGo }

// Generate renders the models file for the schema.
func (g *Generator) Generate(target config.Target, s *schema.CanonicalSchema) ([]generator.GeneratedFile, error) {
	mapper := typemap.New(s)
	view, err := buildModelsView(target, s, mapper)
	if err != nil {
		return nil, err
	}
	content, err := render("models.go.gotmpl", view)
	if err != nil {
		return nil, err
	}
	return []generator.GeneratedFile{{Path: "models.go", Content: content}}, nil
}

func render(templateName string, data any) (string, error) {
	raw, err := templatesFS.ReadFile("templates/" + templateName)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", templateName, err)
	}
	tmpl, err := template.New(templateName).Funcs(sprig.FuncMap()).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}
