package openapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigen-dev/uirgen/pkg/frontend"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

const chatSpec = `
openapi: 3.0.3
info:
  title: Acme Chat API
  version: "1.2.0"
security:
  - apiKeyAuth: []
paths:
  /chat/completions:
    post:
      operationId: createChatCompletion
      description: Create a chat completion. Supports streaming via SSE.
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/ChatRequest"
      responses:
        "200":
          description: The completion.
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Message"
        "429":
          description: Rate limited.
  /models:
    get:
      operationId: listModels
      description: List available models.
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: Model list.
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Model"
components:
  securitySchemes:
    apiKeyAuth:
      type: apiKey
      in: header
      name: X-API-Key
  schemas:
    Model:
      type: object
      properties:
        id:
          type: string
      required: [id]
    Role:
      type: string
      enum: [system, user, assistant]
    Message:
      type: object
      description: One conversation turn.
      properties:
        role:
          $ref: "#/components/schemas/Role"
        content:
          type: string
      required: [role, content]
    ChatRequest:
      type: object
      properties:
        model:
          type: string
        messages:
          type: array
          items:
            $ref: "#/components/schemas/Message"
        temperature:
          type: number
          minimum: 0
          maximum: 2
      required: [model, messages]
`

func parseSpec(t *testing.T, spec string) frontend.Result {
	t.Helper()
	return frontend.Parse(New(), frontend.Input{Document: []byte(spec)})
}

func findType(s *schema.CanonicalSchema, name string, kind schema.TypeKind) *schema.TypeDefinition {
	for _, def := range s.Types {
		if def.Name == name && def.Kind == kind {
			return def
		}
	}
	return nil
}

func TestParseValidSpec(t *testing.T) {
	result := parseSpec(t, chatSpec)
	require.True(t, result.Success, "errors: %v", result.Errors)
	s := result.Schema

	assert.Equal(t, ProviderID, s.Metadata.ProviderID)
	assert.Equal(t, "Acme Chat API", s.Metadata.ProviderName)
	assert.Equal(t, "1.2.0", s.Metadata.APIVersion)
	assert.Equal(t, "3.0.3", s.Metadata.Extra["openapi"])

	assert.Empty(t, s.CheckClosure())
}

func TestEnumWinsOverScalarType(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)

	role := findType(s, "Role", schema.KindEnum)
	require.NotNil(t, role, "Role declares type string and enum; enum wins")
	assert.Equal(t, schema.PrimitiveString, role.ValueType)
	assert.Equal(t, []any{"system", "user", "assistant"}, role.EnumValues)
}

func TestComponentReferencesShareOneDefinition(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)

	// Message is referenced from ChatRequest.messages and from the 200
	// response, yet there is exactly one definition.
	count := 0
	for _, def := range s.Types {
		if def.Name == "Message" && def.Kind == schema.KindObject {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRequiredMirroredOntoProperties(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)

	req := findType(s, "ChatRequest", schema.KindObject)
	require.NotNil(t, req)
	assert.Equal(t, []string{"messages", "model"}, req.Required)

	for _, p := range req.Properties {
		want := p.Name == "model" || p.Name == "messages"
		assert.Equal(t, want, p.Required, p.Name)
	}
}

func TestConstraintsCarried(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)

	req := findType(s, "ChatRequest", schema.KindObject)
	require.NotNil(t, req)
	for _, p := range req.Properties {
		if p.Name != "temperature" {
			continue
		}
		require.NotNil(t, p.Constraints)
		require.NotNil(t, p.Constraints.Minimum)
		require.NotNil(t, p.Constraints.Maximum)
		assert.Equal(t, 0.0, *p.Constraints.Minimum)
		assert.Equal(t, 2.0, *p.Constraints.Maximum)
	}
}

func TestEndpointsSortedAndStreamingDetected(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)
	require.Len(t, s.Endpoints, 2)

	// Paths are emitted in sorted order.
	assert.Equal(t, "/chat/completions", s.Endpoints[0].Path)
	assert.Equal(t, "/models", s.Endpoints[1].Path)

	assert.True(t, s.Endpoints[0].Streaming, "description mentions streaming")
	assert.False(t, s.Endpoints[1].Streaming)

	post := s.Endpoints[0]
	require.NotNil(t, post.RequestBody)
	assert.Equal(t, "application/json", post.RequestBody.ContentType)
	assert.True(t, post.RequestBody.Required)
}

func TestDocumentSecurityAppliesToOperations(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)

	require.Len(t, s.Authentication, 1)
	assert.Equal(t, "apiKeyAuth", s.Authentication[0].ID)
	assert.Equal(t, schema.AuthAPIKey, s.Authentication[0].Kind)
	assert.Equal(t, "X-API-Key", s.Authentication[0].Name)

	for _, ep := range s.Endpoints {
		assert.Equal(t, []string{"apiKeyAuth"}, ep.Authentication, ep.ID)
	}
}

func TestErrorsDerivedFromStatuses(t *testing.T) {
	s := parseSpec(t, chatSpec).Schema
	require.NotNil(t, s)

	require.Len(t, s.Errors, 1)
	assert.Equal(t, "http_429", s.Errors[0].Code)
	assert.Equal(t, 429, s.Errors[0].StatusCode)
	assert.Equal(t, "Rate limited.", s.Errors[0].Message)
}

func TestUnsupportedAuthSchemeDropsWithWarning(t *testing.T) {
	spec := strings.Replace(chatSpec, `    apiKeyAuth:
      type: apiKey
      in: header
      name: X-API-Key`, `    apiKeyAuth:
      type: apiKey
      in: header
      name: X-API-Key
    openId:
      type: openIdConnect
      openIdConnectUrl: https://auth.acme.dev/.well-known/openid-configuration`, 1)
	result := parseSpec(t, spec)
	require.True(t, result.Success, "errors: %v", result.Errors)

	assert.Len(t, result.Schema.Authentication, 1, "openIdConnect is dropped")
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, frontend.CodeUnsupportedAuthScheme) && strings.Contains(w, "openId") {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", result.Warnings)
}

func TestArrayWithoutItemsFails(t *testing.T) {
	spec := strings.Replace(chatSpec, `        messages:
          type: array
          items:
            $ref: "#/components/schemas/Message"`, `        messages:
          type: array`, 1)
	result := parseSpec(t, spec)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], frontend.CodeAmbiguousArrayItems)
	assert.NotNil(t, result.Schema, "partial schema stays attached")
}

func TestValidationFailureYieldsNoSchema(t *testing.T) {
	result := parseSpec(t, `
openapi: 3.0.3
info:
  title: Empty
  version: "1.0.0"
paths: {}
`)
	assert.False(t, result.Success)
	assert.Nil(t, result.Schema)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], frontend.CodeSchemaValidation)
}

func TestAllOfMergesBranches(t *testing.T) {
	spec := `
openapi: 3.0.3
info:
  title: Merge
  version: "1.0.0"
paths:
  /things:
    get:
      operationId: getThing
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Thing"
components:
  schemas:
    Base:
      type: object
      properties:
        id:
          type: string
      required: [id]
    Thing:
      allOf:
        - $ref: "#/components/schemas/Base"
        - type: object
          properties:
            label:
              type: string
          required: [label]
`
	result := parseSpec(t, spec)
	require.True(t, result.Success, "errors: %v", result.Errors)

	thing := findType(result.Schema, "Thing", schema.KindObject)
	require.NotNil(t, thing)

	names := make([]string, 0, len(thing.Properties))
	for _, p := range thing.Properties {
		names = append(names, p.Name)
		assert.True(t, p.Required, p.Name)
	}
	assert.ElementsMatch(t, []string{"id", "label"}, names)
	assert.Equal(t, []string{"id", "label"}, thing.Required)
}

func TestOneOfBecomesUnion(t *testing.T) {
	spec := `
openapi: 3.0.3
info:
  title: Union
  version: "1.0.0"
paths:
  /blocks:
    get:
      operationId: getBlock
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Block"
components:
  schemas:
    Text:
      type: object
      properties:
        text:
          type: string
    Image:
      type: object
      properties:
        url:
          type: string
    Block:
      oneOf:
        - $ref: "#/components/schemas/Text"
        - $ref: "#/components/schemas/Image"
      discriminator:
        propertyName: kind
`
	result := parseSpec(t, spec)
	require.True(t, result.Success, "errors: %v", result.Errors)

	block := findType(result.Schema, "Block", schema.KindUnion)
	require.NotNil(t, block)
	assert.Len(t, block.Variants, 2)
	require.NotNil(t, block.Discriminator)
	assert.Equal(t, "kind", block.Discriminator.PropertyName)
	assert.Empty(t, result.Schema.CheckClosure())
}
