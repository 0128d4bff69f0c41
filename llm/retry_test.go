package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         0.001,
		MaxDelay:          0.01,
		BackoffMultiplier: 2.0,
	}
}

func TestDelayExponentialGrowth(t *testing.T) {
	p := RetryPolicy{BaseDelay: 1.0, MaxDelay: 30.0, BackoffMultiplier: 2.0}

	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
}

func TestDelayCappedAtMax(t *testing.T) {
	p := RetryPolicy{BaseDelay: 1.0, MaxDelay: 5.0, BackoffMultiplier: 2.0}

	assert.Equal(t, 5*time.Second, p.Delay(10))
}

func TestDelayJitterStaysInRange(t *testing.T) {
	p := RetryPolicy{BaseDelay: 2.0, MaxDelay: 30.0, BackoffMultiplier: 2.0, Jitter: true}

	for i := 0; i < 50; i++ {
		d := p.Delay(0)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), quickPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &ServerError{ProviderError: ProviderError{
				GenerationError: GenerationError{Message: "internal server error"},
				Provider:        "openai",
				StatusCode:      500,
				Retryable:       true,
			}}
		}
		return "answer", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", result)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), quickPolicy(), func(ctx context.Context) (string, error) {
		calls++
		return "", &AuthenticationError{ProviderError: ProviderError{
			GenerationError: GenerationError{Message: "invalid api key"},
			Provider:        "openai",
			StatusCode:      401,
		}}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	var authErr *AuthenticationError
	assert.True(t, errors.As(err, &authErr))
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), quickPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, &RateLimitError{ProviderError: ProviderError{
			GenerationError: GenerationError{Message: "rate limit exceeded"},
			Provider:        "anthropic",
			StatusCode:      429,
			Retryable:       true,
		}}
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls, "one initial call plus three retries")
}

func TestRetryReportsAttempts(t *testing.T) {
	var attempts []int
	policy := quickPolicy()
	policy.OnRetry = func(err error, attempt int, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, err := Retry(context.Background(), policy, func(ctx context.Context) (string, error) {
		return "", errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestRetryCancelledContext(t *testing.T) {
	policy := quickPolicy()
	policy.BaseDelay = 10.0 // long enough that cancellation wins

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, policy, func(ctx context.Context) (string, error) {
		return "", errors.New("transient")
	})

	var abortErr *AbortError
	require.ErrorAs(t, err, &abortErr)
	assert.ErrorIs(t, err, context.Canceled)
}
