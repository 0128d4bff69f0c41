package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorFunc(t *testing.T) {
	var got string
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		got = prompt
		return "response", nil
	})

	text, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "response", text)
	assert.Equal(t, "hello", got)
}

func TestGeneratorFuncPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", boom
	})

	_, err := gen.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)
}
