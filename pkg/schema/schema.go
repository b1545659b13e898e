// Package schema defines the canonical, provider-agnostic representation of
// an LLM provider API. Every frontend produces a CanonicalSchema and every
// generator consumes one; nothing in this package has behavior beyond
// lookups and integrity checks.
package schema

import (
	"fmt"
	"time"
)

// TypeKind discriminates the TypeDefinition variants. The set is closed;
// consumers must switch exhaustively and treat unknown kinds as errors.
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindObject    TypeKind = "object"
	KindArray     TypeKind = "array"
	KindUnion     TypeKind = "union"
	KindEnum      TypeKind = "enum"
)

// PrimitiveKind identifies the scalar family of a primitive or enum type.
type PrimitiveKind string

const (
	PrimitiveString  PrimitiveKind = "string"
	PrimitiveInteger PrimitiveKind = "integer"
	PrimitiveNumber  PrimitiveKind = "number"
	PrimitiveBoolean PrimitiveKind = "boolean"
	PrimitiveNull    PrimitiveKind = "null"
	// PrimitiveUnknown marks placeholder types substituted for nodes whose
	// kind could not be determined. Mappers project it to the target's
	// top/any type.
	PrimitiveUnknown PrimitiveKind = "unknown"
)

// TypeReference points at a TypeDefinition by id. It is always a foreign
// key into the owning schema's type list, never an embedded copy.
type TypeReference struct {
	TypeID   string `json:"typeId"`
	Nullable bool   `json:"nullable,omitempty"`
}

// Constraints carries validation metadata that most target type systems
// cannot express directly. It is passed through for generators to render
// as validation code rather than dropped.
type Constraints struct {
	Format      string   `json:"format,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	MinItems    *int     `json:"minItems,omitempty"`
	MaxItems    *int     `json:"maxItems,omitempty"`
	UniqueItems bool     `json:"uniqueItems,omitempty"`
}

// Empty reports whether no constraint field is set.
func (c *Constraints) Empty() bool {
	if c == nil {
		return true
	}
	return c.Format == "" && c.Pattern == "" && c.Minimum == nil && c.Maximum == nil &&
		c.MinLength == nil && c.MaxLength == nil && c.MinItems == nil && c.MaxItems == nil &&
		!c.UniqueItems
}

// PropertyDefinition is a single field of an object type. Required mirrors
// membership of Name in the owning object's Required list; conversion code
// keeps the two views synchronized.
type PropertyDefinition struct {
	Name        string        `json:"name"`
	Type        TypeReference `json:"type"`
	Required    bool          `json:"required"`
	Description string        `json:"description,omitempty"`
	Default     any           `json:"default,omitempty"`
	Constraints *Constraints  `json:"constraints,omitempty"`
}

// Discriminator describes how union variants are told apart on the wire.
type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty"`
}

// TypeDefinition is the canonical type node, discriminated by Kind. Only
// the field group matching Kind is populated. Definitions are append-only:
// once a frontend hands the schema back, nothing mutates them.
type TypeDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        TypeKind `json:"kind"`
	Description string   `json:"description,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`

	// Kind == KindPrimitive
	Primitive   PrimitiveKind `json:"primitive,omitempty"`
	Constraints *Constraints  `json:"constraints,omitempty"`

	// Kind == KindObject
	Properties           []PropertyDefinition `json:"properties,omitempty"`
	Required             []string             `json:"required,omitempty"`
	AdditionalProperties *TypeReference       `json:"additionalProperties,omitempty"`

	// Kind == KindArray
	Items       *TypeReference `json:"items,omitempty"`
	MinItems    *int           `json:"minItems,omitempty"`
	MaxItems    *int           `json:"maxItems,omitempty"`
	UniqueItems bool           `json:"uniqueItems,omitempty"`

	// Kind == KindUnion
	Variants      []TypeReference `json:"variants,omitempty"`
	Discriminator *Discriminator  `json:"discriminator,omitempty"`

	// Kind == KindEnum
	EnumValues []any         `json:"enumValues,omitempty"`
	ValueType  PrimitiveKind `json:"valueType,omitempty"`
}

// ParameterLocation is where an endpoint parameter is carried.
type ParameterLocation string

const (
	InPath   ParameterLocation = "path"
	InQuery  ParameterLocation = "query"
	InHeader ParameterLocation = "header"
)

// ParameterDefinition describes one endpoint parameter.
type ParameterDefinition struct {
	Name        string            `json:"name"`
	In          ParameterLocation `json:"in"`
	Type        TypeReference     `json:"type"`
	Required    bool              `json:"required"`
	Description string            `json:"description,omitempty"`
}

// RequestBody describes an endpoint request payload.
type RequestBody struct {
	ContentType string        `json:"contentType"`
	Type        TypeReference `json:"type"`
	Required    bool          `json:"required"`
}

// ResponseDefinition describes one endpoint response. Type is nil for
// bodiless responses (e.g. 204).
type ResponseDefinition struct {
	StatusCode  int            `json:"statusCode"`
	ContentType string         `json:"contentType,omitempty"`
	Type        *TypeReference `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
}

// EndpointDefinition is one callable operation. Authentication lists
// AuthScheme ids by name; it is a weak reference, not ownership.
type EndpointDefinition struct {
	ID             string                `json:"id"`
	OperationID    string                `json:"operationId"`
	Path           string                `json:"path"`
	Method         string                `json:"method"`
	Description    string                `json:"description,omitempty"`
	Parameters     []ParameterDefinition `json:"parameters,omitempty"`
	RequestBody    *RequestBody          `json:"requestBody,omitempty"`
	Responses      []ResponseDefinition  `json:"responses,omitempty"`
	Streaming      bool                  `json:"streaming"`
	Authentication []string              `json:"authentication,omitempty"`
	Deprecated     bool                  `json:"deprecated,omitempty"`
}

// AuthKind discriminates the AuthScheme variants.
type AuthKind string

const (
	AuthAPIKey AuthKind = "apiKey"
	AuthBearer AuthKind = "bearer"
	AuthOAuth2 AuthKind = "oauth2"
	AuthBasic  AuthKind = "basic"
)

// OAuthFlow is a single OAuth2 flow declaration.
type OAuthFlow struct {
	Kind             string            `json:"kind"`
	AuthorizationURL string            `json:"authorizationUrl,omitempty"`
	TokenURL         string            `json:"tokenUrl,omitempty"`
	Scopes           map[string]string `json:"scopes,omitempty"`
}

// AuthScheme describes one way of authenticating against the provider.
type AuthScheme struct {
	ID     string      `json:"id"`
	Kind   AuthKind    `json:"kind"`
	In     string      `json:"in,omitempty"`     // apiKey: header, query, cookie
	Name   string      `json:"name,omitempty"`   // apiKey: header/query name
	Scheme string      `json:"scheme,omitempty"` // bearer/basic: the HTTP scheme
	Flows  []OAuthFlow `json:"flows,omitempty"`  // oauth2
}

// ErrorDefinition describes a provider error shape.
type ErrorDefinition struct {
	Code       string         `json:"code"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message,omitempty"`
	Type       *TypeReference `json:"type,omitempty"`
	Retryable  *bool          `json:"retryable,omitempty"`
}

// SchemaMetadata identifies the provider and the parse that produced the
// schema. GeneratedAt is the only field expected to differ between two
// parses of the same document.
type SchemaMetadata struct {
	ProviderID   string            `json:"providerId"`
	ProviderName string            `json:"providerName,omitempty"`
	APIVersion   string            `json:"apiVersion,omitempty"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// CanonicalSchema is the root aggregate. It exclusively owns everything it
// contains, lives for one generation run, and is immutable once a frontend
// returns it.
type CanonicalSchema struct {
	Metadata       SchemaMetadata       `json:"metadata"`
	Types          []*TypeDefinition    `json:"types"`
	Endpoints      []EndpointDefinition `json:"endpoints"`
	Authentication []AuthScheme         `json:"authentication,omitempty"`
	Errors         []ErrorDefinition    `json:"errors,omitempty"`
	Config         map[string]any       `json:"config,omitempty"`
}

// TypeByID returns the definition for id, or false when no entry exists.
func (s *CanonicalSchema) TypeByID(id string) (*TypeDefinition, bool) {
	for _, def := range s.Types {
		if def.ID == id {
			return def, true
		}
	}
	return nil, false
}

// TypeIndex builds an id -> definition map. Callers that resolve many
// references (the type mapper, closure checks) build one up front rather
// than scanning per lookup.
func (s *CanonicalSchema) TypeIndex() map[string]*TypeDefinition {
	idx := make(map[string]*TypeDefinition, len(s.Types))
	for _, def := range s.Types {
		idx[def.ID] = def
	}
	return idx
}

// CheckClosure verifies referential closure: every TypeReference reachable
// from the schema must resolve to an entry in Types. It returns one message
// per dangling reference.
func (s *CanonicalSchema) CheckClosure() []string {
	idx := s.TypeIndex()
	var broken []string
	check := func(ref TypeReference, where string) {
		if _, ok := idx[ref.TypeID]; !ok {
			broken = append(broken, fmt.Sprintf("%s references unknown type %q", where, ref.TypeID))
		}
	}
	for _, def := range s.Types {
		switch def.Kind {
		case KindObject:
			for _, p := range def.Properties {
				check(p.Type, fmt.Sprintf("type %s property %s", def.ID, p.Name))
			}
			if def.AdditionalProperties != nil {
				check(*def.AdditionalProperties, fmt.Sprintf("type %s additionalProperties", def.ID))
			}
		case KindArray:
			if def.Items != nil {
				check(*def.Items, fmt.Sprintf("type %s items", def.ID))
			}
		case KindUnion:
			for i, v := range def.Variants {
				check(v, fmt.Sprintf("type %s variant %d", def.ID, i))
			}
		case KindPrimitive, KindEnum:
			// no outgoing references
		}
	}
	for _, ep := range s.Endpoints {
		for _, p := range ep.Parameters {
			check(p.Type, fmt.Sprintf("endpoint %s parameter %s", ep.ID, p.Name))
		}
		if ep.RequestBody != nil {
			check(ep.RequestBody.Type, fmt.Sprintf("endpoint %s request body", ep.ID))
		}
		for _, r := range ep.Responses {
			if r.Type != nil {
				check(*r.Type, fmt.Sprintf("endpoint %s response %d", ep.ID, r.StatusCode))
			}
		}
	}
	for _, e := range s.Errors {
		if e.Type != nil {
			check(*e.Type, fmt.Sprintf("error %s", e.Code))
		}
	}
	return broken
}
