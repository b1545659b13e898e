// Package llmdialect implements the frontend for the provider-specific
// schema dialect: a YAML/JSON document listing an LLM provider's models,
// endpoints, named types, and errors.
package llmdialect

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unigen-dev/uirgen/pkg/frontend"
	"github.com/unigen-dev/uirgen/pkg/resolver"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

// ProviderID is the identifier this frontend registers under.
const ProviderID = "llm-dialect"

const typeRefPrefix = "#/types/"

// The dialect has no security scheme declarations; every provider using it
// authenticates with a fixed API-key header.
const (
	authSchemeID  = "api_key"
	authHeaderKey = "X-API-Key"
)

// Frontend parses provider-dialect documents.
type Frontend struct{}

// New creates the dialect frontend.
func New() *Frontend {
	return &Frontend{}
}

// ID returns the provider identifier.
func (f *Frontend) ID() string { return ProviderID }

// Load resolves the input to a *Document. In-memory inputs may be an
// already-decoded document, raw bytes, or a generic map.
func (f *Frontend) Load(input frontend.Input) (any, error) {
	switch doc := input.Document.(type) {
	case *Document:
		return doc, nil
	case []byte:
		return decode(doc)
	case map[string]any:
		raw, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return decode(raw)
	case nil:
		// fall through to path loading
	default:
		return nil, fmt.Errorf("unsupported dialect input type %T", input.Document)
	}
	if input.Path == "" {
		return nil, errors.New("no document or path provided")
	}
	raw, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the required top-level fields: provider id, version,
// base URL, and a non-empty endpoint list.
func (f *Frontend) Validate(doc any) error {
	d, ok := doc.(*Document)
	if !ok {
		return fmt.Errorf("expected *llmdialect.Document, got %T", doc)
	}
	if d.Provider == "" {
		return errors.New("missing provider field")
	}
	if d.Version == "" {
		return errors.New("missing version field")
	}
	if d.BaseURL == "" {
		return errors.New("missing base_url field")
	}
	if len(d.Endpoints) == 0 {
		return errors.New("document declares no endpoints")
	}
	return nil
}

// Convert assembles the canonical schema from a validated document.
func (f *Frontend) Convert(doc any, res *resolver.Resolver) (*schema.CanonicalSchema, error) {
	d, ok := doc.(*Document)
	if !ok {
		return nil, fmt.Errorf("expected *llmdialect.Document, got %T", doc)
	}
	c := &converter{doc: d, res: res}
	return c.convert(), nil
}

type converter struct {
	doc *Document
	res *resolver.Resolver
}

func (c *converter) convert() *schema.CanonicalSchema {
	d := c.doc
	s := &schema.CanonicalSchema{
		Metadata: schema.SchemaMetadata{
			ProviderID:   d.Provider,
			ProviderName: d.Name,
			APIVersion:   d.Version,
			GeneratedAt:  time.Now().UTC(),
			Extra:        map[string]string{"base_url": d.BaseURL},
		},
	}
	for k, v := range d.Metadata {
		s.Metadata.Extra[k] = v
	}
	if len(d.Models) > 0 {
		models := make([]map[string]any, 0, len(d.Models))
		for _, m := range d.Models {
			entry := map[string]any{"id": m.ID}
			if m.Name != "" {
				entry["name"] = m.Name
			}
			if m.ContextWindow > 0 {
				entry["context_window"] = m.ContextWindow
			}
			if m.Deprecated {
				entry["deprecated"] = true
			}
			models = append(models, entry)
		}
		s.Config = map[string]any{"models": models}
	}

	// Named types first so references resolve onto stable ids.
	names := make([]string, 0, len(d.Types))
	for name := range d.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.convertNamed(name, d.Types[name])
	}

	s.Authentication = []schema.AuthScheme{{
		ID:   authSchemeID,
		Kind: schema.AuthAPIKey,
		In:   "header",
		Name: authHeaderKey,
	}}

	for _, ep := range d.Endpoints {
		s.Endpoints = append(s.Endpoints, c.convertEndpoint(ep))
	}

	for _, e := range d.Errors {
		def := schema.ErrorDefinition{
			Code:       e.Code,
			StatusCode: e.Status,
			Message:    e.Message,
			Retryable:  e.Retryable,
		}
		if e.Type != "" {
			ref := c.convertSpec(shorthand(e.Type), "Error."+e.Code)
			def.Type = &ref
		}
		s.Errors = append(s.Errors, def)
	}

	s.Types = c.res.Types()
	return s
}

func (c *converter) convertNamed(name string, ts *TypeSpec) schema.TypeReference {
	if ts == nil {
		c.res.Warnf(frontend.CodeUnknownTypeKind, "named type %q is empty; substituting placeholder", name)
		return c.res.Placeholder(name)
	}
	key := resolver.Key{Ref: typeRefPrefix + name, Identity: ts, Pointer: name}
	ref, _ := c.res.Resolve(key, func(def *schema.TypeDefinition) error {
		return c.buildDefinition(def, ts, name)
	})
	ref.Nullable = ts.Nullable
	return ref
}

// convertSpec converts one schema node, resolving "#/types/" references
// against the document's named types.
func (c *converter) convertSpec(ts *TypeSpec, hint string) schema.TypeReference {
	if ts == nil {
		c.res.Warnf(frontend.CodeUnknownTypeKind, "missing schema at %s; substituting placeholder", hint)
		return c.res.Placeholder(hint)
	}
	if ts.Ref != "" {
		name := strings.TrimPrefix(ts.Ref, typeRefPrefix)
		target, ok := c.doc.Types[name]
		if !ok || target == nil {
			c.res.Warnf(frontend.CodeUnresolvedReference, "reference %q cannot be matched to a declared type", ts.Ref)
			return c.res.Placeholder(name)
		}
		ref := c.convertNamed(name, target)
		if ts.Nullable {
			ref.Nullable = true
		}
		return ref
	}
	key := resolver.Key{Identity: ts, Pointer: hint}
	ref, _ := c.res.Resolve(key, func(def *schema.TypeDefinition) error {
		return c.buildDefinition(def, ts, hint)
	})
	ref.Nullable = ts.Nullable
	return ref
}

// buildDefinition classifies the node with the same precedence the OpenAPI
// frontend uses: enum, object shape, array shape, one_of, primitive.
func (c *converter) buildDefinition(def *schema.TypeDefinition, ts *TypeSpec, hint string) error {
	def.Name = hint
	def.Description = ts.Description
	def.Deprecated = ts.Deprecated

	if len(ts.Enum) > 0 {
		def.Kind = schema.KindEnum
		def.EnumValues = append([]any{}, ts.Enum...)
		def.ValueType = enumValueType(ts)
		return nil
	}

	if len(ts.Properties) > 0 || ts.Type == "object" {
		def.Kind = schema.KindObject
		c.buildObject(def, ts, hint)
		return nil
	}

	if ts.Type == "array" || ts.Items != nil {
		def.Kind = schema.KindArray
		if ts.Items == nil {
			c.res.Errorf(frontend.CodeAmbiguousArrayItems, "array %s has no items definition", hint)
			return nil
		}
		item := c.convertSpec(ts.Items, hint+".Item")
		def.Items = &item
		def.MinItems = ts.MinItems
		def.MaxItems = ts.MaxItems
		def.UniqueItems = ts.UniqueItems
		return nil
	}

	if len(ts.OneOf) > 0 {
		def.Kind = schema.KindUnion
		for i, sub := range ts.OneOf {
			v := c.convertSpec(sub, fmt.Sprintf("%s.Variant%d", hint, i))
			def.Variants = append(def.Variants, v)
		}
		if ts.Discriminator != nil {
			def.Discriminator = &schema.Discriminator{
				PropertyName: ts.Discriminator.PropertyName,
				Mapping:      ts.Discriminator.Mapping,
			}
		}
		return nil
	}

	def.Kind = schema.KindPrimitive
	switch ts.Type {
	case "string":
		def.Primitive = schema.PrimitiveString
	case "integer":
		def.Primitive = schema.PrimitiveInteger
	case "number":
		def.Primitive = schema.PrimitiveNumber
	case "boolean":
		def.Primitive = schema.PrimitiveBoolean
	case "null":
		def.Primitive = schema.PrimitiveNull
	default:
		c.res.Warnf(frontend.CodeUnknownTypeKind, "type kind %q at %s is not recognized; substituting placeholder", ts.Type, hint)
		def.Primitive = schema.PrimitiveUnknown
	}
	def.Constraints = constraintsOf(ts)
	return nil
}

// buildObject unions the declared required list with properties
// individually marked required, then mirrors the result onto each
// property's flag.
func (c *converter) buildObject(def *schema.TypeDefinition, ts *TypeSpec, hint string) {
	required := map[string]bool{}
	for _, name := range ts.Required.Names {
		required[name] = true
	}
	for name, prop := range ts.Properties {
		if prop != nil && prop.Required.Flag {
			required[name] = true
		}
	}

	names := make([]string, 0, len(ts.Properties))
	for name := range ts.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := ts.Properties[name]
		pd := schema.PropertyDefinition{
			Name:     name,
			Type:     c.convertSpec(prop, hint+"."+name),
			Required: required[name],
		}
		if prop != nil {
			pd.Description = prop.Description
			pd.Default = prop.Default
			pd.Constraints = constraintsOf(prop)
		}
		def.Properties = append(def.Properties, pd)
	}

	for _, p := range def.Properties {
		if p.Required {
			def.Required = append(def.Required, p.Name)
		}
	}
	sort.Strings(def.Required)

	if ts.AdditionalProperties != nil {
		ap := c.convertSpec(ts.AdditionalProperties, hint+".AdditionalProperties")
		def.AdditionalProperties = &ap
	}
}

func (c *converter) convertEndpoint(ep Endpoint) schema.EndpointDefinition {
	method := strings.ToUpper(ep.Method)
	if method == "" {
		method = "POST"
	}
	out := schema.EndpointDefinition{
		ID:             ep.ID,
		OperationID:    ep.ID,
		Path:           ep.Path,
		Method:         method,
		Description:    ep.Description,
		Streaming:      streamingFlag(ep),
		Authentication: []string{authSchemeID},
		Deprecated:     ep.Deprecated,
	}

	for _, p := range ep.Parameters {
		loc := schema.ParameterLocation(p.In)
		switch loc {
		case schema.InPath, schema.InQuery, schema.InHeader:
		default:
			loc = schema.InQuery
		}
		out.Parameters = append(out.Parameters, schema.ParameterDefinition{
			Name:        p.Name,
			In:          loc,
			Type:        c.convertSpec(effectiveSpec(p.Schema, p.Type), ep.ID+"."+p.Name),
			Required:    p.Required,
			Description: p.Description,
		})
	}

	if ep.Request != nil {
		ct := ep.Request.ContentType
		if ct == "" {
			ct = "application/json"
		}
		out.RequestBody = &schema.RequestBody{
			ContentType: ct,
			Type:        c.convertSpec(effectiveSpec(ep.Request.Schema, ep.Request.Type), ep.ID+".Request"),
			Required:    ep.Request.Required,
		}
	}

	for _, r := range ep.Responses {
		resp := schema.ResponseDefinition{
			StatusCode:  r.Status,
			ContentType: r.ContentType,
			Description: r.Description,
		}
		if r.Schema != nil || r.Type != "" {
			ref := c.convertSpec(effectiveSpec(r.Schema, r.Type), fmt.Sprintf("%s.Response%d", ep.ID, r.Status))
			resp.Type = &ref
		}
		out.Responses = append(out.Responses, resp)
	}
	return out
}

// streamingFlag prefers the explicit field and otherwise falls back to the
// keyword heuristic on the endpoint description.
func streamingFlag(ep Endpoint) bool {
	if ep.Streaming != nil {
		return *ep.Streaming
	}
	return strings.Contains(strings.ToLower(ep.Description), "stream")
}

// effectiveSpec reconciles the shorthand and full schema forms.
func effectiveSpec(full *TypeSpec, short string) *TypeSpec {
	if full != nil {
		return full
	}
	return shorthand(short)
}

func shorthand(s string) *TypeSpec {
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, typeRefPrefix) {
		return &TypeSpec{Ref: s}
	}
	return &TypeSpec{Type: s}
}

func enumValueType(ts *TypeSpec) schema.PrimitiveKind {
	switch ts.Type {
	case "string":
		return schema.PrimitiveString
	case "integer":
		return schema.PrimitiveInteger
	case "number":
		return schema.PrimitiveNumber
	case "boolean":
		return schema.PrimitiveBoolean
	}
	if len(ts.Enum) > 0 {
		switch ts.Enum[0].(type) {
		case string:
			return schema.PrimitiveString
		case int, int64:
			return schema.PrimitiveInteger
		case float32, float64:
			return schema.PrimitiveNumber
		case bool:
			return schema.PrimitiveBoolean
		}
	}
	return schema.PrimitiveUnknown
}

func constraintsOf(ts *TypeSpec) *schema.Constraints {
	if ts == nil {
		return nil
	}
	c := &schema.Constraints{
		Format:    ts.Format,
		Pattern:   ts.Pattern,
		Minimum:   ts.Minimum,
		Maximum:   ts.Maximum,
		MinLength: ts.MinLength,
		MaxLength: ts.MaxLength,
	}
	if c.Empty() {
		return nil
	}
	return c
}
