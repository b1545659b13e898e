package llmdialect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigen-dev/uirgen/pkg/frontend"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

const validDoc = `
provider: acme
name: Acme LLM API
version: "2024-06-01"
base_url: https://api.acme.dev/v1

models:
  - id: acme-small
    name: Acme Small
    context_window: 8192

types:
  Message:
    type: object
    description: One turn of a conversation.
    properties:
      role:
        enum: [system, user, assistant]
      content:
        type: string
      name:
        type: string
        required: true
    required: [role, content]

  ChatRequest:
    type: object
    properties:
      model:
        type: string
      messages:
        type: array
        items:
          $ref: "#/types/Message"
      temperature:
        type: number
        minimum: 0
        maximum: 2
    required: [model, messages]

endpoints:
  - id: create_chat_completion
    path: /chat/completions
    method: POST
    description: Create a chat completion. Set stream to receive partial deltas.
    request:
      type: "#/types/ChatRequest"
      required: true
    responses:
      - status: 200
        type: "#/types/Message"
  - id: list_models
    path: /models
    method: GET
    streaming: false
    description: List available models.
    parameters:
      - name: limit
        in: query
        type: integer

errors:
  - code: rate_limit_exceeded
    status: 429
    message: Too many requests.
    retryable: true
`

func parseDoc(t *testing.T, doc string) frontend.Result {
	t.Helper()
	f := New()
	return frontend.Parse(f, frontend.Input{Document: []byte(doc)})
}

func TestParseValidDocument(t *testing.T) {
	result := parseDoc(t, validDoc)
	require.True(t, result.Success, "errors: %v", result.Errors)
	require.NotNil(t, result.Schema)
	s := result.Schema

	assert.Equal(t, "acme", s.Metadata.ProviderID)
	assert.Equal(t, "Acme LLM API", s.Metadata.ProviderName)
	assert.Equal(t, "2024-06-01", s.Metadata.APIVersion)
	assert.Equal(t, "https://api.acme.dev/v1", s.Metadata.Extra["base_url"])

	assert.Empty(t, s.CheckClosure())
}

func TestValidationFailureYieldsNoSchema(t *testing.T) {
	doc := strings.Replace(validDoc, "base_url: https://api.acme.dev/v1", "", 1)
	result := parseDoc(t, doc)

	assert.False(t, result.Success)
	assert.Nil(t, result.Schema)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], frontend.CodeSchemaValidation)
	assert.Contains(t, result.Errors[0], "base_url")
}

func TestFixedAPIKeyAuthIsInjected(t *testing.T) {
	s := parseDoc(t, validDoc).Schema
	require.NotNil(t, s)

	require.Len(t, s.Authentication, 1)
	auth := s.Authentication[0]
	assert.Equal(t, "api_key", auth.ID)
	assert.Equal(t, schema.AuthAPIKey, auth.Kind)
	assert.Equal(t, "header", auth.In)
	assert.Equal(t, "X-API-Key", auth.Name)

	for _, ep := range s.Endpoints {
		assert.Equal(t, []string{"api_key"}, ep.Authentication, ep.ID)
	}
}

func TestStreamingFlag(t *testing.T) {
	s := parseDoc(t, validDoc).Schema
	require.NotNil(t, s)
	require.Len(t, s.Endpoints, 2)

	// Heuristic: "stream" appears in the description, no explicit flag.
	assert.True(t, s.Endpoints[0].Streaming)
	// Explicit false wins even though nothing matches anyway.
	assert.False(t, s.Endpoints[1].Streaming)
}

func TestExplicitStreamingOverridesHeuristic(t *testing.T) {
	doc := strings.Replace(validDoc,
		"  - id: list_models\n    path: /models\n    method: GET\n    streaming: false\n    description: List available models.",
		"  - id: list_models\n    path: /models\n    method: GET\n    streaming: false\n    description: Stream of models.", 1)
	result := parseDoc(t, doc)
	require.True(t, result.Success)
	assert.False(t, result.Schema.Endpoints[1].Streaming)
}

func TestRequiredUnionOfBothForms(t *testing.T) {
	s := parseDoc(t, validDoc).Schema
	require.NotNil(t, s)

	var msg *schema.TypeDefinition
	for _, def := range s.Types {
		if def.Name == "Message" && def.Kind == schema.KindObject {
			msg = def
			break
		}
	}
	require.NotNil(t, msg)

	// "role" and "content" from the object list, "name" from its own flag.
	assert.Equal(t, []string{"content", "name", "role"}, msg.Required)
	for _, p := range msg.Properties {
		assert.Equal(t, p.Required, containsString(msg.Required, p.Name), p.Name)
	}
}

func TestSharedReferenceResolvesToOneType(t *testing.T) {
	doc := strings.Replace(validDoc, "errors:", `  - id: get_message
    path: /messages/last
    method: GET
    responses:
      - status: 200
        type: "#/types/Message"

errors:`, 1)
	result := parseDoc(t, doc)
	require.True(t, result.Success, "errors: %v", result.Errors)
	s := result.Schema

	count := 0
	for _, def := range s.Types {
		if def.Name == "Message" && def.Kind == schema.KindObject {
			count++
		}
	}
	assert.Equal(t, 1, count, "both usages must share one definition")
}

func TestUnresolvedReferenceWarnsAndSubstitutes(t *testing.T) {
	doc := strings.Replace(validDoc, `$ref: "#/types/Message"`, `$ref: "#/types/Missing"`, 1)
	result := parseDoc(t, doc)

	require.True(t, result.Success, "unresolved refs are recoverable")
	require.NotEmpty(t, result.Warnings)
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, frontend.CodeUnresolvedReference) && strings.Contains(w, "#/types/Missing") {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", result.Warnings)
	assert.Empty(t, result.Schema.CheckClosure(), "placeholder must keep the closure intact")
}

func TestArrayWithoutItemsFailsWithPartialSchema(t *testing.T) {
	doc := strings.Replace(validDoc, "        items:\n          $ref: \"#/types/Message\"\n", "", 1)
	result := parseDoc(t, doc)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], frontend.CodeAmbiguousArrayItems)
	assert.NotNil(t, result.Schema, "partial schema stays attached for inspection")
}

func TestModelsLandInConfig(t *testing.T) {
	s := parseDoc(t, validDoc).Schema
	require.NotNil(t, s)

	models, ok := s.Config["models"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, models, 1)
	assert.Equal(t, "acme-small", models[0]["id"])
	assert.Equal(t, 8192, models[0]["context_window"])
}

func TestErrorsAreCarriedOver(t *testing.T) {
	s := parseDoc(t, validDoc).Schema
	require.NotNil(t, s)

	require.Len(t, s.Errors, 1)
	e := s.Errors[0]
	assert.Equal(t, "rate_limit_exceeded", e.Code)
	assert.Equal(t, 429, e.StatusCode)
	require.NotNil(t, e.Retryable)
	assert.True(t, *e.Retryable)
}

func TestDeterministicAcrossParses(t *testing.T) {
	first := parseDoc(t, validDoc)
	second := parseDoc(t, validDoc)
	require.True(t, first.Success)
	require.True(t, second.Success)

	// Everything except the parse timestamp must match.
	first.Schema.Metadata.GeneratedAt = second.Schema.Metadata.GeneratedAt
	assert.Equal(t, first.Schema, second.Schema)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
