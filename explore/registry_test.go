package explore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, reg.Get(ActionReadFile))

	reg.Register(ActionReadFile, func(ctx context.Context, params map[string]any) (any, error) {
		return "content", nil
	})
	require.NotNil(t, reg.Get(ActionReadFile))
	assert.Equal(t, 1, reg.Count())

	reg.Unregister(ActionReadFile)
	assert.Nil(t, reg.Get(ActionReadFile))
	assert.Equal(t, 0, reg.Count())
}

func TestRegistryKindsSorted(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, params map[string]any) (any, error) { return nil, nil }
	reg.Register(ActionSearchFiles, noop)
	reg.Register(ActionAnalyzeCode, noop)
	reg.Register(ActionReadFile, noop)

	assert.Equal(t, []ActionKind{ActionAnalyzeCode, ActionReadFile, ActionSearchFiles}, reg.Kinds())
}

func TestRegisterCoreToolsCoversAllKinds(t *testing.T) {
	reg := NewRegistry()
	RegisterCoreTools(reg, NewMapWorkspace(nil), nil, nil)

	for kind := range requiredParams {
		assert.NotNil(t, reg.Get(kind), string(kind))
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]any{
		"path":  "main.go",
		"depth": float64(3),
		"count": 7,
		"deep":  true,
	}

	s, ok := GetStringParam(params, "path")
	assert.True(t, ok)
	assert.Equal(t, "main.go", s)
	_, ok = GetStringParam(params, "depth")
	assert.False(t, ok)

	n, ok := GetIntParam(params, "depth")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	n, ok = GetIntParam(params, "count")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = GetIntParam(params, "path")
	assert.False(t, ok)

	b, ok := GetBoolParam(params, "deep")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = GetBoolParam(params, "missing")
	assert.False(t, ok)
}
