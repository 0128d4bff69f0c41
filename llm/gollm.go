package llm

import (
	"context"
	"fmt"

	"github.com/teilomillet/gollm"
)

// GollmGenerator wraps a gollm.LLM instance behind the Generator interface.
type GollmGenerator struct {
	provider     string
	llm          gollm.LLM
	systemPrompt string
	retry        RetryPolicy
}

// Option configures a GollmGenerator.
type Option func(*gollmConfig)

type gollmConfig struct {
	apiKey       string
	model        string
	maxTokens    int
	temperature  float64
	systemPrompt string
	retry        RetryPolicy
	extraOpts    []gollm.ConfigOption
}

// WithAPIKey sets the provider API key. If empty, gollm reads it from
// environment variables.
func WithAPIKey(key string) Option {
	return func(c *gollmConfig) { c.apiKey = key }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *gollmConfig) { c.model = model }
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) Option {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *gollmConfig) { c.temperature = t }
}

// WithSystemPrompt sets a system prompt applied to every generation.
func WithSystemPrompt(prompt string) Option {
	return func(c *gollmConfig) { c.systemPrompt = prompt }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *gollmConfig) { c.retry = p }
}

// WithGollmOptions appends extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) Option {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmGenerator creates a Generator for the given provider
// ("openai", "anthropic", ...).
func NewGollmGenerator(provider string, opts ...Option) (*GollmGenerator, error) {
	cfg := &gollmConfig{
		maxTokens:   4096,
		temperature: 0.7,
		retry:       DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		switch provider {
		case "anthropic":
			model = "claude-sonnet-4-5"
		default:
			model = "gpt-4o-mini"
		}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retries are handled by our policy
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	inner, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmGenerator{
		provider:     provider,
		llm:          inner,
		systemPrompt: cfg.systemPrompt,
		retry:        cfg.retry,
	}, nil
}

// NewGollmGeneratorFromLLM wraps an existing gollm.LLM instance.
func NewGollmGeneratorFromLLM(provider string, inner gollm.LLM) *GollmGenerator {
	return &GollmGenerator{provider: provider, llm: inner, retry: DefaultRetryPolicy()}
}

// Provider returns the provider identifier.
func (g *GollmGenerator) Provider() string { return g.provider }

// Generate sends the prompt and returns the full response text. Retryable
// provider errors are retried under the configured policy.
func (g *GollmGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	promptOpts := []gollm.PromptOption{}
	if g.systemPrompt != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(g.systemPrompt, gollm.CacheTypeEphemeral))
	}
	p := gollm.NewPrompt(prompt, promptOpts...)

	return Retry(ctx, g.retry, func(ctx context.Context) (string, error) {
		text, err := g.llm.Generate(ctx, p)
		if err != nil {
			return "", classifyError(g.provider, err)
		}
		return text, nil
	})
}
