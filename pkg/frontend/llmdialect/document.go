package llmdialect

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the provider-dialect description of an LLM API. YAML is the
// native encoding; JSON documents decode through the same tags since JSON
// is valid YAML.
type Document struct {
	Provider  string               `yaml:"provider"`
	Name      string               `yaml:"name"`
	Version   string               `yaml:"version"`
	BaseURL   string               `yaml:"base_url"`
	Models    []Model              `yaml:"models"`
	Endpoints []Endpoint           `yaml:"endpoints"`
	Types     map[string]*TypeSpec `yaml:"types"`
	Errors    []ErrorSpec          `yaml:"errors"`
	Metadata  map[string]string    `yaml:"metadata"`
}

// Model is an informational entry in the provider's model list. It is
// copied into the canonical schema's config block untouched.
type Model struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	ContextWindow int    `yaml:"context_window"`
	Deprecated    bool   `yaml:"deprecated"`
}

// Endpoint declares one operation.
type Endpoint struct {
	ID          string         `yaml:"id"`
	Path        string         `yaml:"path"`
	Method      string         `yaml:"method"`
	Description string         `yaml:"description"`
	Streaming   *bool          `yaml:"streaming"`
	Parameters  []Parameter    `yaml:"parameters"`
	Request     *RequestSpec   `yaml:"request"`
	Responses   []ResponseSpec `yaml:"responses"`
	Deprecated  bool           `yaml:"deprecated"`
}

// Parameter declares one endpoint parameter. Type is a scalar shorthand
// ("string", "integer", ...) or a "#/types/Name" reference; Schema is the
// full form and wins when both are present.
type Parameter struct {
	Name        string    `yaml:"name"`
	In          string    `yaml:"in"`
	Type        string    `yaml:"type"`
	Schema      *TypeSpec `yaml:"schema"`
	Required    bool      `yaml:"required"`
	Description string    `yaml:"description"`
}

// RequestSpec declares an endpoint request body.
type RequestSpec struct {
	Type        string    `yaml:"type"`
	Schema      *TypeSpec `yaml:"schema"`
	Required    bool      `yaml:"required"`
	ContentType string    `yaml:"content_type"`
}

// ResponseSpec declares one endpoint response.
type ResponseSpec struct {
	Status      int       `yaml:"status"`
	Type        string    `yaml:"type"`
	Schema      *TypeSpec `yaml:"schema"`
	ContentType string    `yaml:"content_type"`
	Description string    `yaml:"description"`
}

// ErrorSpec declares a provider error.
type ErrorSpec struct {
	Code      string `yaml:"code"`
	Status    int    `yaml:"status"`
	Message   string `yaml:"message"`
	Type      string `yaml:"type"`
	Retryable *bool  `yaml:"retryable"`
}

// TypeSpec is the dialect's schema node. Named specs live under the
// document's types map and are referenced as "#/types/<name>".
type TypeSpec struct {
	Ref         string `yaml:"$ref"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Deprecated  bool   `yaml:"deprecated"`
	Nullable    bool   `yaml:"nullable"`

	Properties           map[string]*TypeSpec `yaml:"properties"`
	Required             RequiredSpec         `yaml:"required"`
	AdditionalProperties *TypeSpec            `yaml:"additional_properties"`

	Items *TypeSpec `yaml:"items"`

	Enum []any `yaml:"enum"`

	OneOf         []*TypeSpec        `yaml:"one_of"`
	Discriminator *DiscriminatorSpec `yaml:"discriminator"`

	Default     any      `yaml:"default"`
	Format      string   `yaml:"format"`
	Pattern     string   `yaml:"pattern"`
	Minimum     *float64 `yaml:"minimum"`
	Maximum     *float64 `yaml:"maximum"`
	MinLength   *int     `yaml:"min_length"`
	MaxLength   *int     `yaml:"max_length"`
	MinItems    *int     `yaml:"min_items"`
	MaxItems    *int     `yaml:"max_items"`
	UniqueItems bool     `yaml:"unique_items"`
}

// DiscriminatorSpec mirrors the canonical discriminator shape.
type DiscriminatorSpec struct {
	PropertyName string            `yaml:"property_name"`
	Mapping      map[string]string `yaml:"mapping"`
}

// RequiredSpec accepts both forms the dialect allows for `required`: a
// name list on an object spec, or a bare bool on a property spec. The
// object's list is unioned with individually marked properties during
// conversion.
type RequiredSpec struct {
	Names []string
	Flag  bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RequiredSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&r.Names)
	case yaml.ScalarNode:
		return node.Decode(&r.Flag)
	default:
		return fmt.Errorf("required: expected bool or list, got yaml kind %d", node.Kind)
	}
}
