package explore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CodeFusionAgent/codefusion/cache"
)

// requiredParams is the per-action-kind required-field table consulted before
// any tool is invoked.
var requiredParams = map[ActionKind][]string{
	ActionScanDirectory: {"path"},
	ActionListFiles:     {"pattern"},
	ActionReadFile:      {"path"},
	ActionSearchFiles:   {"pattern"},
	ActionAnalyzeCode:   {"path"},
	ActionLLMReasoning:  {"prompt"},
	ActionLLMSummary:    {"prompt"},
	ActionCacheLookup:   {"key"},
	ActionCacheStore:    {"key", "value"},
}

// Executor dispatches actions to registered tools, enforcing parameter
// validation, per-call timeouts, result validation, and bounded retries.
type Executor struct {
	registry *Registry
	cache    *cache.Cache
	cfg      Config
	logger   *zap.Logger
}

// NewExecutor creates an Executor. The cache may be nil, which disables
// result caching entirely.
func NewExecutor(registry *Registry, resultCache *cache.Cache, cfg Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{registry: registry, cache: resultCache, cfg: cfg, logger: logger}
}

// Act executes one action and always returns an Observation. Validation
// failures short-circuit without invoking the tool; execution and
// result-validation failures are retried up to MaxToolRetries before the
// last error is surfaced in a failed Observation.
func (e *Executor) Act(ctx context.Context, action Action) Observation {
	if err := e.validateParams(action); err != nil {
		e.logger.Debug("executor: parameter validation failed",
			zap.String("kind", string(action.Kind)), zap.Error(err))
		return failedObservation(action, err)
	}

	tool := e.registry.Get(action.Kind)
	if tool == nil {
		return failedObservation(action, &ToolExecutionError{
			Kind:  action.Kind,
			Cause: fmt.Errorf("no tool registered for action kind %q", action.Kind),
		})
	}

	if obs, ok := e.cachedObservation(action); ok {
		return obs
	}

	var result any
	var lastErr error
	attempts := 1 + e.cfg.MaxToolRetries
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			e.logger.Debug("executor: retrying tool",
				zap.String("kind", string(action.Kind)),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return failedObservation(action, &ToolExecutionError{Kind: action.Kind, Cause: ctx.Err()})
			case <-time.After(retryDelay(e.cfg.RetryBaseDelay, attempt-1)):
			}
		}

		var err error
		result, err = e.executeWithTimeout(ctx, tool, action)
		if err != nil {
			lastErr = err
			continue
		}
		if err := validateResult(action.Kind, result); err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return failedObservation(action, lastErr)
	}

	if e.cache != nil && cacheable(action.Kind) {
		e.cache.Set(string(action.Kind), result)
	}
	return e.successObservation(action, result, false)
}

// executeWithTimeout runs the tool on a worker goroutine and joins it with
// the configured timeout. A worker that overruns is abandoned, never killed;
// its eventual result is discarded.
func (e *Executor) executeWithTimeout(ctx context.Context, tool ToolFunc, action Action) (any, error) {
	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	toolCtx, cancel := context.WithTimeout(ctx, e.cfg.ToolTimeout)
	defer cancel()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panic: %v", r)}
			}
		}()
		result, err := tool(toolCtx, action.Params)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, &ToolExecutionError{Kind: action.Kind, Cause: out.err}
		}
		return out.result, nil
	case <-toolCtx.Done():
		if ctx.Err() != nil {
			return nil, &ToolExecutionError{Kind: action.Kind, Cause: ctx.Err()}
		}
		return nil, &ToolExecutionError{Kind: action.Kind, TimedOut: true}
	}
}

func (e *Executor) validateParams(action Action) error {
	required, known := requiredParams[action.Kind]
	if !known {
		// Custom action kinds carry their own contract; nothing to check.
		return nil
	}
	for _, field := range required {
		v, ok := action.Params[field]
		if !ok {
			return &ValidationError{Kind: action.Kind, Field: field, Reason: "is required"}
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return &ValidationError{Kind: action.Kind, Field: field, Reason: "must not be empty"}
		}
	}
	return nil
}

// validateResult applies action-kind-specific sanity checks to a tool result.
func validateResult(kind ActionKind, result any) error {
	switch kind {
	case ActionReadFile, ActionLLMReasoning, ActionLLMSummary:
		s, ok := result.(string)
		if !ok {
			return &ResultValidationError{Kind: kind, Reason: "expected text content"}
		}
		if strings.TrimSpace(s) == "" {
			return &ResultValidationError{Kind: kind, Reason: "content is empty"}
		}
	case ActionScanDirectory, ActionListFiles, ActionAnalyzeCode:
		if result == nil {
			return &ResultValidationError{Kind: kind, Reason: "result is nil"}
		}
	case ActionSearchFiles:
		// Zero matches is a legitimate outcome; only a nil result is invalid.
		if result == nil {
			return &ResultValidationError{Kind: kind, Reason: "result is nil"}
		}
	}
	return nil
}

// cacheable excludes the cache-manipulation kinds from result caching: those
// tools already read and write the cache themselves.
func cacheable(kind ActionKind) bool {
	return kind != ActionCacheLookup && kind != ActionCacheStore
}

func (e *Executor) cachedObservation(action Action) (Observation, bool) {
	if e.cache == nil || !cacheable(action.Kind) {
		return Observation{}, false
	}
	value, ok := e.cache.Get(string(action.Kind))
	if !ok {
		return Observation{}, false
	}
	obs := e.successObservation(action, value, true)
	return obs, true
}

func (e *Executor) successObservation(action Action, result any, fromCache bool) Observation {
	confidence, found := confidenceFor(action.Kind, result)
	insight := insightFor(action, result, found, fromCache)

	// Large text results are truncated in the observation; the cache keeps
	// the full value.
	if s, ok := result.(string); ok {
		result = TruncateOutput(s, defaultResultCharLimit, TruncateHeadTail)
	}

	return Observation{
		ActionDescription: action.Description,
		Result:            result,
		Success:           true,
		Insight:           insight,
		Confidence:        confidence,
		SuggestedNext:     suggestedNext(action.Kind),
		GoalProgress:      confidence / 2,
		CacheHit:          fromCache,
	}
}

func failedObservation(action Action, err error) Observation {
	return Observation{
		ActionDescription: action.Description,
		Success:           false,
		Insight:           fmt.Sprintf("%s failed: %v", action.Kind, err),
		Confidence:        0,
		Error:             err.Error(),
	}
}

// confidenceFor implements the fixed confidence table: 0.9 for read/scan
// actions, 0.8 or 0.3 for searches depending on whether anything was found,
// 0.7 otherwise. Also reports the search found flag for insight text.
func confidenceFor(kind ActionKind, result any) (float64, bool) {
	switch kind {
	case ActionReadFile, ActionScanDirectory, ActionListFiles:
		return 0.9, true
	case ActionSearchFiles:
		if resultCount(result) > 0 {
			return 0.8, true
		}
		return 0.3, false
	default:
		return 0.7, true
	}
}

func resultCount(result any) int {
	switch v := result.(type) {
	case []SearchMatch:
		return len(v)
	case []FileEntry:
		return len(v)
	case []string:
		return len(v)
	case []any:
		return len(v)
	case string:
		return len(v)
	case nil:
		return 0
	default:
		return 1
	}
}

func insightFor(action Action, result any, found bool, fromCache bool) string {
	prefix := ""
	if fromCache {
		prefix = "cache hit: "
	}
	switch action.Kind {
	case ActionScanDirectory:
		path, _ := GetStringParam(action.Params, "path")
		return fmt.Sprintf("%sscanned %s: %d entries", prefix, path, resultCount(result))
	case ActionListFiles:
		pattern, _ := GetStringParam(action.Params, "pattern")
		return fmt.Sprintf("%slisted %d files matching %s", prefix, resultCount(result), pattern)
	case ActionReadFile:
		path, _ := GetStringParam(action.Params, "path")
		return fmt.Sprintf("%sread %s: %d bytes", prefix, path, resultCount(result))
	case ActionSearchFiles:
		pattern, _ := GetStringParam(action.Params, "pattern")
		if !found {
			return fmt.Sprintf("%ssearch %q found nothing", prefix, pattern)
		}
		return fmt.Sprintf("%ssearch %q found %d matches", prefix, pattern, resultCount(result))
	default:
		return fmt.Sprintf("%s%s succeeded", prefix, action.Kind)
	}
}

func suggestedNext(kind ActionKind) string {
	switch kind {
	case ActionScanDirectory:
		return "read the most relevant files found"
	case ActionReadFile:
		return "analyze the content or read related files"
	case ActionSearchFiles:
		return "read the matching files"
	default:
		return ""
	}
}

// retryDelay computes a short exponential backoff between tool retries.
func retryDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base << attempt
	if limit := 2 * time.Second; delay > limit {
		delay = limit
	}
	return delay
}
