package openapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/unigen-dev/uirgen/pkg/frontend"
	"github.com/unigen-dev/uirgen/pkg/resolver"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

const componentSchemaPrefix = "#/components/schemas/"

// converter holds the document and the per-parse resolver for one Convert
// call.
type converter struct {
	doc *openapi3.T
	res *resolver.Resolver
}

func (c *converter) convert() *schema.CanonicalSchema {
	s := &schema.CanonicalSchema{
		Metadata: schema.SchemaMetadata{
			ProviderID:   ProviderID,
			GeneratedAt:  time.Now().UTC(),
			ProviderName: c.doc.Info.Title,
			APIVersion:   c.doc.Info.Version,
			Extra:        map[string]string{"openapi": c.doc.OpenAPI},
		},
	}

	// Named components first so they claim ids before inline usages; the
	// reference cache then folds every $ref onto the same definition.
	c.convertComponents()

	s.Authentication = c.convertSecuritySchemes()
	authIDs := make(map[string]bool, len(s.Authentication))
	for _, a := range s.Authentication {
		authIDs[a.ID] = true
	}

	s.Endpoints = c.convertEndpoints(authIDs)
	s.Errors = c.deriveErrors(s.Endpoints)
	s.Types = c.res.Types()
	return s
}

func (c *converter) convertComponents() {
	if c.doc.Components == nil || c.doc.Components.Schemas == nil {
		return
	}
	names := make([]string, 0, len(c.doc.Components.Schemas))
	for name := range c.doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sr := c.doc.Components.Schemas[name]
		if sr == nil {
			continue
		}
		c.convertComponent(name, sr)
	}
}

// convertComponent registers a named component under its canonical $ref
// path so later references short-circuit on the reference cache.
func (c *converter) convertComponent(name string, sr *openapi3.SchemaRef) schema.TypeReference {
	if sr.Value == nil {
		c.res.Warnf(frontend.CodeUnresolvedReference, "component %q has no schema value", name)
		return c.res.Placeholder(name)
	}
	key := resolver.Key{
		Ref:      componentSchemaPrefix + name,
		Identity: sr.Value,
		Pointer:  name,
	}
	ref, _ := c.res.Resolve(key, func(def *schema.TypeDefinition) error {
		return c.buildDefinition(def, sr.Value, name)
	})
	ref.Nullable = isNullable(sr.Value)
	return ref
}

// convertSchemaRef is the conversion entry point for every schema node
// reached during endpoint and property walking. hint is the structural path
// used both for naming and as the pointer-cache key.
func (c *converter) convertSchemaRef(sr *openapi3.SchemaRef, hint string) schema.TypeReference {
	if sr == nil {
		c.res.Warnf(frontend.CodeUnknownTypeKind, "missing schema at %s; substituting placeholder", hint)
		return c.res.Placeholder(hint)
	}
	if sr.Ref != "" {
		name := refName(sr.Ref)
		if sr.Value == nil {
			c.res.Warnf(frontend.CodeUnresolvedReference, "reference %q cannot be resolved", sr.Ref)
			return c.res.Placeholder(name)
		}
		key := resolver.Key{Ref: sr.Ref, Identity: sr.Value, Pointer: name}
		ref, _ := c.res.Resolve(key, func(def *schema.TypeDefinition) error {
			return c.buildDefinition(def, sr.Value, name)
		})
		ref.Nullable = isNullable(sr.Value)
		return ref
	}
	if sr.Value == nil {
		c.res.Warnf(frontend.CodeUnknownTypeKind, "empty schema at %s; substituting placeholder", hint)
		return c.res.Placeholder(hint)
	}
	key := resolver.Key{Identity: sr.Value, Pointer: hint}
	ref, _ := c.res.Resolve(key, func(def *schema.TypeDefinition) error {
		return c.buildDefinition(def, sr.Value, hint)
	})
	ref.Nullable = isNullable(sr.Value)
	return ref
}

// buildDefinition classifies the node and fills the kind-specific fields.
// Dispatch precedence: enum, object shape, array shape, oneOf, primitive.
// A node may satisfy several signals at once; the order here is the
// contract.
func (c *converter) buildDefinition(def *schema.TypeDefinition, s *openapi3.Schema, hint string) error {
	def.Name = hint
	def.Description = s.Description
	def.Deprecated = s.Deprecated

	// Enum wins over everything, including composition keywords on the
	// same node. Matches the observed precedence of the source pipeline.
	if len(s.Enum) > 0 {
		def.Kind = schema.KindEnum
		def.EnumValues = append([]any{}, s.Enum...)
		def.ValueType = enumValueType(s)
		return nil
	}

	if isObjectShaped(s) {
		def.Kind = schema.KindObject
		c.buildObject(def, s, hint)
		return nil
	}

	if isArrayShaped(s) {
		def.Kind = schema.KindArray
		if s.Items == nil {
			// There is no safe placeholder for an unknown item type.
			c.res.Errorf(frontend.CodeAmbiguousArrayItems, "array %s has no items definition", hint)
			return nil
		}
		item := c.convertSchemaRef(s.Items, hint+".Item")
		def.Items = &item
		if s.MinItems > 0 {
			v := int(s.MinItems)
			def.MinItems = &v
		}
		if s.MaxItems != nil {
			v := int(*s.MaxItems)
			def.MaxItems = &v
		}
		def.UniqueItems = s.UniqueItems
		return nil
	}

	if len(s.OneOf) > 0 {
		def.Kind = schema.KindUnion
		for i, sub := range s.OneOf {
			v := c.convertSchemaRef(sub, fmt.Sprintf("%s.Variant%d", hint, i))
			def.Variants = append(def.Variants, v)
		}
		if s.Discriminator != nil {
			def.Discriminator = &schema.Discriminator{
				PropertyName: s.Discriminator.PropertyName,
				Mapping:      s.Discriminator.Mapping,
			}
		}
		return nil
	}

	def.Kind = schema.KindPrimitive
	switch {
	case s.Type.Includes(openapi3.TypeString):
		def.Primitive = schema.PrimitiveString
	case s.Type.Includes(openapi3.TypeInteger):
		def.Primitive = schema.PrimitiveInteger
	case s.Type.Includes(openapi3.TypeNumber):
		def.Primitive = schema.PrimitiveNumber
	case s.Type.Includes(openapi3.TypeBoolean):
		def.Primitive = schema.PrimitiveBoolean
	case s.Type.Is(openapi3.TypeNull):
		def.Primitive = schema.PrimitiveNull
	default:
		c.res.Warnf(frontend.CodeUnknownTypeKind, "schema %s has no recognizable type; substituting placeholder", hint)
		def.Primitive = schema.PrimitiveUnknown
	}
	def.Constraints = constraintsOf(s)
	return nil
}

// buildObject merges the node's own properties with its allOf/anyOf
// branches. The declared required list is unioned across branches and then
// mirrored onto each property's Required flag; the two views always agree.
func (c *converter) buildObject(def *schema.TypeDefinition, s *openapi3.Schema, hint string) {
	branches := flattenBranches(s, nil)

	required := map[string]bool{}
	for _, b := range branches {
		for _, name := range b.Required {
			required[name] = true
		}
	}

	seen := map[string]bool{}
	for _, b := range branches {
		names := make([]string, 0, len(b.Properties))
		for name := range b.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			pr := b.Properties[name]
			prop := schema.PropertyDefinition{
				Name:     name,
				Type:     c.convertSchemaRef(pr, hint+"."+name),
				Required: required[name],
			}
			if pr != nil && pr.Value != nil {
				prop.Description = pr.Value.Description
				prop.Default = pr.Value.Default
				prop.Constraints = constraintsOf(pr.Value)
			}
			def.Properties = append(def.Properties, prop)
		}
	}

	for _, p := range def.Properties {
		if p.Required {
			def.Required = append(def.Required, p.Name)
		}
	}
	sort.Strings(def.Required)

	for _, b := range branches {
		if b.AdditionalProperties.Schema != nil {
			ap := c.convertSchemaRef(b.AdditionalProperties.Schema, hint+".AdditionalProperties")
			def.AdditionalProperties = &ap
			break
		}
	}

	if s.Discriminator != nil {
		def.Discriminator = &schema.Discriminator{
			PropertyName: s.Discriminator.PropertyName,
			Mapping:      s.Discriminator.Mapping,
		}
	}
}

// flattenBranches returns s followed by every allOf/anyOf branch,
// recursively, in declaration order.
func flattenBranches(s *openapi3.Schema, acc []*openapi3.Schema) []*openapi3.Schema {
	acc = append(acc, s)
	for _, group := range [][]*openapi3.SchemaRef{s.AllOf, s.AnyOf} {
		for _, sub := range group {
			if sub == nil || sub.Value == nil {
				continue
			}
			acc = flattenBranches(sub.Value, acc)
		}
	}
	return acc
}

var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD", "TRACE"}

func operationsOf(item *openapi3.PathItem) map[string]*openapi3.Operation {
	return map[string]*openapi3.Operation{
		"GET": item.Get, "POST": item.Post, "PUT": item.Put, "PATCH": item.Patch,
		"DELETE": item.Delete, "OPTIONS": item.Options, "HEAD": item.Head, "TRACE": item.Trace,
	}
}

func (c *converter) convertEndpoints(authIDs map[string]bool) []schema.EndpointDefinition {
	paths := make([]string, 0, c.doc.Paths.Len())
	for path := range c.doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var endpoints []schema.EndpointDefinition
	for _, path := range paths {
		item := c.doc.Paths.Value(path)
		if item == nil {
			continue
		}
		ops := operationsOf(item)
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			endpoints = append(endpoints, c.convertOperation(path, method, item, op, authIDs))
		}
	}
	return endpoints
}

func (c *converter) convertOperation(path, method string, item *openapi3.PathItem, op *openapi3.Operation, authIDs map[string]bool) schema.EndpointDefinition {
	opID := op.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + strings.NewReplacer("/", "_", "{", "", "}", "").Replace(path)
	}

	ep := schema.EndpointDefinition{
		ID:          opID,
		OperationID: op.OperationID,
		Path:        path,
		Method:      method,
		Description: op.Description,
		Streaming:   detectStreaming(op.Description, op.Summary),
		Deprecated:  op.Deprecated,
	}

	// Path-item parameters apply to every operation beneath it.
	for _, params := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, pr := range params {
			if pr == nil || pr.Value == nil {
				continue
			}
			p := pr.Value
			loc, ok := parameterLocation(p.In)
			if !ok {
				continue
			}
			ep.Parameters = append(ep.Parameters, schema.ParameterDefinition{
				Name:        p.Name,
				In:          loc,
				Type:        c.convertSchemaRef(p.Schema, opID+"."+p.Name),
				Required:    p.Required,
				Description: p.Description,
			})
		}
	}

	ep.RequestBody = c.convertRequestBody(op, opID)
	ep.Responses = c.convertResponses(op, opID)
	ep.Authentication = c.operationAuth(op, authIDs)
	return ep
}

func parameterLocation(in string) (schema.ParameterLocation, bool) {
	switch in {
	case openapi3.ParameterInPath:
		return schema.InPath, true
	case openapi3.ParameterInQuery:
		return schema.InQuery, true
	case openapi3.ParameterInHeader:
		return schema.InHeader, true
	}
	return "", false
}

func (c *converter) convertRequestBody(op *openapi3.Operation, opID string) *schema.RequestBody {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	rb := op.RequestBody.Value
	ct, media := pickContent(rb.Content)
	if media == nil {
		return nil
	}
	return &schema.RequestBody{
		ContentType: ct,
		Type:        c.convertSchemaRef(media.Schema, opID+".Request"),
		Required:    rb.Required,
	}
}

func (c *converter) convertResponses(op *openapi3.Operation, opID string) []schema.ResponseDefinition {
	if op.Responses == nil {
		return nil
	}
	m := op.Responses.Map()
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []schema.ResponseDefinition
	for _, code := range codes {
		rr := m[code]
		if rr == nil || rr.Value == nil {
			continue
		}
		// "default" and range keys like "5XX" are carried with status 0.
		status, err := strconv.Atoi(code)
		if err != nil {
			status = 0
		}
		resp := schema.ResponseDefinition{StatusCode: status}
		if rr.Value.Description != nil {
			resp.Description = *rr.Value.Description
		}
		if ct, media := pickContent(rr.Value.Content); media != nil {
			ref := c.convertSchemaRef(media.Schema, fmt.Sprintf("%s.Response%s", opID, code))
			resp.ContentType = ct
			resp.Type = &ref
		}
		out = append(out, resp)
	}
	return out
}

// pickContent prefers application/json and otherwise takes the first media
// type in sorted order, so repeated parses pick the same one.
func pickContent(content openapi3.Content) (string, *openapi3.MediaType) {
	if media, ok := content["application/json"]; ok && media != nil {
		return "application/json", media
	}
	cts := make([]string, 0, len(content))
	for ct := range content {
		cts = append(cts, ct)
	}
	sort.Strings(cts)
	for _, ct := range cts {
		if media := content[ct]; media != nil {
			return ct, media
		}
	}
	return "", nil
}

func (c *converter) operationAuth(op *openapi3.Operation, authIDs map[string]bool) []string {
	reqs := c.doc.Security
	if op.Security != nil {
		reqs = *op.Security
	}
	set := map[string]bool{}
	for _, req := range reqs {
		for name := range req {
			if authIDs[name] {
				set[name] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// convertSecuritySchemes maps declared security schemes onto canonical
// auth variants. Unsupported scheme types are dropped with a warning, not
// an error.
func (c *converter) convertSecuritySchemes() []schema.AuthScheme {
	if c.doc.Components == nil || c.doc.Components.SecuritySchemes == nil {
		return nil
	}
	names := make([]string, 0, len(c.doc.Components.SecuritySchemes))
	for name := range c.doc.Components.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []schema.AuthScheme
	for _, name := range names {
		sr := c.doc.Components.SecuritySchemes[name]
		if sr == nil || sr.Value == nil {
			continue
		}
		s := sr.Value
		switch s.Type {
		case "apiKey":
			out = append(out, schema.AuthScheme{ID: name, Kind: schema.AuthAPIKey, In: s.In, Name: s.Name})
		case "http":
			switch strings.ToLower(s.Scheme) {
			case "bearer":
				out = append(out, schema.AuthScheme{ID: name, Kind: schema.AuthBearer, Scheme: "bearer"})
			case "basic":
				out = append(out, schema.AuthScheme{ID: name, Kind: schema.AuthBasic, Scheme: "basic"})
			default:
				c.res.Warnf(frontend.CodeUnsupportedAuthScheme, "http scheme %q on %q is not supported; dropped", s.Scheme, name)
			}
		case "oauth2":
			out = append(out, schema.AuthScheme{ID: name, Kind: schema.AuthOAuth2, Flows: convertFlows(s.Flows)})
		default:
			c.res.Warnf(frontend.CodeUnsupportedAuthScheme, "security scheme type %q on %q is not supported; dropped", s.Type, name)
		}
	}
	return out
}

func convertFlows(flows *openapi3.OAuthFlows) []schema.OAuthFlow {
	if flows == nil {
		return nil
	}
	var out []schema.OAuthFlow
	add := func(kind string, f *openapi3.OAuthFlow) {
		if f == nil {
			return
		}
		out = append(out, schema.OAuthFlow{
			Kind:             kind,
			AuthorizationURL: f.AuthorizationURL,
			TokenURL:         f.TokenURL,
			Scopes:           f.Scopes,
		})
	}
	add("authorizationCode", flows.AuthorizationCode)
	add("clientCredentials", flows.ClientCredentials)
	add("implicit", flows.Implicit)
	add("password", flows.Password)
	return out
}

// deriveErrors collects one ErrorDefinition per distinct 4xx/5xx status
// seen across all endpoints.
func (c *converter) deriveErrors(endpoints []schema.EndpointDefinition) []schema.ErrorDefinition {
	byStatus := map[int]schema.ErrorDefinition{}
	for _, ep := range endpoints {
		for _, resp := range ep.Responses {
			if resp.StatusCode < 400 {
				continue
			}
			if _, ok := byStatus[resp.StatusCode]; ok {
				continue
			}
			byStatus[resp.StatusCode] = schema.ErrorDefinition{
				Code:       fmt.Sprintf("http_%d", resp.StatusCode),
				StatusCode: resp.StatusCode,
				Message:    resp.Description,
				Type:       resp.Type,
			}
		}
	}
	statuses := make([]int, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)
	out := make([]schema.ErrorDefinition, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, byStatus[status])
	}
	return out
}

func refName(ref string) string {
	if strings.HasPrefix(ref, componentSchemaPrefix) {
		return strings.TrimPrefix(ref, componentSchemaPrefix)
	}
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

func isObjectShaped(s *openapi3.Schema) bool {
	return len(s.Properties) > 0 || len(s.AllOf) > 0 || len(s.AnyOf) > 0 ||
		s.Type.Includes(openapi3.TypeObject)
}

func isArrayShaped(s *openapi3.Schema) bool {
	return s.Type.Includes(openapi3.TypeArray) || s.Items != nil
}

func isNullable(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	return s.Nullable || (s.Type != nil && len(*s.Type) > 1 && s.Type.Includes(openapi3.TypeNull))
}

// enumValueType prefers the explicit scalar type and falls back to the
// first enum value's dynamic type.
func enumValueType(s *openapi3.Schema) schema.PrimitiveKind {
	switch {
	case s.Type.Includes(openapi3.TypeString):
		return schema.PrimitiveString
	case s.Type.Includes(openapi3.TypeInteger):
		return schema.PrimitiveInteger
	case s.Type.Includes(openapi3.TypeNumber):
		return schema.PrimitiveNumber
	case s.Type.Includes(openapi3.TypeBoolean):
		return schema.PrimitiveBoolean
	}
	if len(s.Enum) > 0 {
		switch s.Enum[0].(type) {
		case string:
			return schema.PrimitiveString
		case int, int32, int64:
			return schema.PrimitiveInteger
		case float32, float64:
			return schema.PrimitiveNumber
		case bool:
			return schema.PrimitiveBoolean
		}
	}
	return schema.PrimitiveUnknown
}

// detectStreaming is a best-effort keyword match on free text; the flag is
// a hint for generators, not a structural guarantee.
func detectStreaming(texts ...string) bool {
	for _, t := range texts {
		if strings.Contains(strings.ToLower(t), "stream") {
			return true
		}
	}
	return false
}

func constraintsOf(s *openapi3.Schema) *schema.Constraints {
	if s == nil {
		return nil
	}
	c := &schema.Constraints{Format: s.Format, Pattern: s.Pattern}
	if s.Min != nil {
		v := *s.Min
		c.Minimum = &v
	}
	if s.Max != nil {
		v := *s.Max
		c.Maximum = &v
	}
	if s.MinLength > 0 {
		v := int(s.MinLength)
		c.MinLength = &v
	}
	if s.MaxLength != nil {
		v := int(*s.MaxLength)
		c.MaxLength = &v
	}
	if c.Empty() {
		return nil
	}
	return c
}
