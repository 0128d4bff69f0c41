package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      any
		retryable bool
	}{
		{"unauthorized", "401 unauthorized", &AuthenticationError{}, false},
		{"bad key", "invalid API key provided", &AuthenticationError{}, false},
		{"rate limited", "429 rate limit exceeded", &RateLimitError{}, true},
		{"context window", "prompt exceeds context length", &ContextLengthError{}, false},
		{"filtered", "blocked by content filter", &ContentFilterError{}, false},
		{"server", "500 internal server error", &ServerError{}, true},
		{"timed out", "request timeout after 30s", &RequestTimeoutError{}, true},
		{"unknown", "connection reset by peer", &ProviderError{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := errors.New(tt.raw)
			classified := classifyError("openai", raw)

			assert.IsType(t, tt.want, classified)
			assert.Equal(t, tt.retryable, IsRetryable(classified))
			assert.ErrorIs(t, classified, raw, "the raw error must stay reachable via Unwrap")
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	assert.NoError(t, classifyError("openai", nil))
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{
		GenerationError: GenerationError{Message: "boom"},
		Provider:        "anthropic",
		StatusCode:      500,
		Retryable:       true,
	}
	assert.Equal(t, "[anthropic] boom (status=500, retryable=true)", err.Error())
}

func TestGenerationErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := &GenerationError{Message: "generation failed", Cause: cause}

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "generation failed: socket closed", err.Error())
}

func TestIsRetryableDefaults(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("anything unrecognized")))
	assert.False(t, IsRetryable(&AbortError{GenerationError: GenerationError{Message: "cancelled"}}))
}
