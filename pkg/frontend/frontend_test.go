package frontend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigen-dev/uirgen/pkg/resolver"
	"github.com/unigen-dev/uirgen/pkg/schema"
)

// stub is a minimal frontend whose stages can be failed one at a time.
type stub struct {
	id          string
	loadErr     error
	validateErr error
	convert     func(res *resolver.Resolver) *schema.CanonicalSchema
}

func (s *stub) ID() string { return s.id }

func (s *stub) Load(input Input) (any, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return input.Document, nil
}

func (s *stub) Validate(doc any) error { return s.validateErr }

func (s *stub) Convert(doc any, res *resolver.Resolver) (*schema.CanonicalSchema, error) {
	if s.convert != nil {
		return s.convert(res), nil
	}
	return &schema.CanonicalSchema{}, nil
}

func TestParseSuccess(t *testing.T) {
	result := Parse(&stub{id: "x"}, Input{Document: struct{}{}})
	assert.True(t, result.Success)
	assert.NotNil(t, result.Schema)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors, "errors list is present even when empty")
	assert.NotNil(t, result.Warnings)
}

func TestParseLoadFailure(t *testing.T) {
	result := Parse(&stub{id: "x", loadErr: errors.New("no such file")}, Input{Path: "/nope"})
	assert.False(t, result.Success)
	assert.Nil(t, result.Schema)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], CodeSchemaValidation)
}

func TestParseValidationFailure(t *testing.T) {
	result := Parse(&stub{id: "x", validateErr: errors.New("missing version")}, Input{Document: struct{}{}})
	assert.False(t, result.Success)
	assert.Nil(t, result.Schema, "validation failure yields no schema at all")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing version")
}

func TestParseCollectsResolverDiagnostics(t *testing.T) {
	f := &stub{id: "x", convert: func(res *resolver.Resolver) *schema.CanonicalSchema {
		res.Warnf(CodeUnresolvedReference, "dangling ref")
		res.Errorf(CodeAmbiguousArrayItems, "array items missing")
		return &schema.CanonicalSchema{Types: res.Types()}
	}}
	result := Parse(f, Input{Document: struct{}{}})

	assert.False(t, result.Success, "resolver errors fail the parse")
	assert.NotNil(t, result.Schema, "partial schema is kept")
	require.Len(t, result.Errors, 1)
	require.Len(t, result.Warnings, 1)
}

func TestParseWarningsDoNotFail(t *testing.T) {
	f := &stub{id: "x", convert: func(res *resolver.Resolver) *schema.CanonicalSchema {
		res.Warnf(CodeUnknownTypeKind, "odd node")
		return &schema.CanonicalSchema{}
	}}
	result := Parse(f, Input{Document: struct{}{}})
	assert.True(t, result.Success)
	assert.Len(t, result.Warnings, 1)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stub{id: "openapi"})
	reg.Register(&stub{id: "llm-dialect"})

	assert.Equal(t, []string{"llm-dialect", "openapi"}, reg.IDs())

	_, ok := reg.Get("openapi")
	assert.True(t, ok)

	result, err := reg.Parse("llm-dialect", Input{Document: struct{}{}})
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = reg.Parse("unknown", Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no frontend registered")
}
