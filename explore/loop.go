package explore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CodeFusionAgent/codefusion/cache"
	"github.com/CodeFusionAgent/codefusion/trace"
)

// Controller runs the Reason -> Act -> Observe state machine for one agent.
// It holds the Agent interface, never a concrete agent type.
type Controller struct {
	agent    Agent
	cfg      Config
	executor *Executor
	tracer   *trace.Tracer
	cache    *cache.Cache
	emitter  *EventEmitter
	logger   *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithTracer attaches a tracer; without one, no sessions are recorded.
func WithTracer(t *trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// WithCache attaches the tool-result cache consulted by the executor.
func WithCache(resultCache *cache.Cache) Option {
	return func(c *Controller) { c.cache = resultCache }
}

// WithEmitter attaches an event emitter for host applications.
func WithEmitter(e *EventEmitter) Option {
	return func(c *Controller) { c.emitter = e }
}

// NewController creates a Controller for the agent over the given tool
// registry.
func NewController(agent Agent, registry *Registry, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		agent:  agent,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.executor = NewExecutor(registry, c.cache, cfg, c.logger)
	return c
}

// ExecuteLoop runs the exploration loop for a goal and always returns a
// LoopResult. maxIterations <= 0 uses the configured default. Nothing
// escapes as a panic or error; truly unexpected failures surface in
// LoopResult.Err.
func (c *Controller) ExecuteLoop(ctx context.Context, goal string, maxIterations int) *LoopResult {
	if maxIterations <= 0 {
		maxIterations = c.cfg.MaxIterations
	}

	state := newLoopState(goal, maxIterations)
	detector := NewStuckDetector()
	detector.SetRepeatWindow(c.cfg.MaxSameActionRepeats)
	var history []Action
	consecutiveErrors := 0

	start := time.Now()
	sessionID := c.tracer.StartSession(c.agent.Name(), goal)
	c.emitter.Emit(EventLoopStart, sessionID, 0, map[string]any{"goal": goal})
	c.logger.Info("loop: starting",
		zap.String("agent", c.agent.Name()),
		zap.String("goal", goal),
		zap.Int("max_iterations", maxIterations))

	var (
		goalAchieved bool
		reason       string
		loopErr      error
	)

loop:
	for {
		// 1. Termination checks.
		if c.goalReached(state) {
			goalAchieved = true
			reason = "goal achieved"
			break
		}
		if state.Iteration >= maxIterations {
			reason = "iteration budget exhausted"
			break
		}
		if time.Since(start) > c.cfg.TotalTimeout {
			reason = "total time budget exhausted"
			c.emitter.Emit(EventBudgetExceeded, sessionID, state.Iteration,
				map[string]any{"budget": "total_timeout"})
			break
		}

		iter := state.Iteration
		state.Iteration++
		iterStart := time.Now()

		// 2. REASONING.
		state.Phase = PhaseReasoning
		phaseStart := time.Now()
		reasoning, err := safeReason(c.agent, state)
		if err != nil {
			if c.recordPhaseError(state, sessionID, iter, trace.PhaseReason, err, &consecutiveErrors) {
				reason, loopErr = c.abortReason(consecutiveErrors, state)
				break
			}
			continue
		}
		state.ReasoningHistory = append(state.ReasoningHistory, reasoning)
		c.tracer.TracePhase(sessionID, trace.PhaseReason, iter,
			map[string]any{"reasoning": TruncateOutput(reasoning, 2000, TruncateTail)},
			time.Since(phaseStart), true, "")
		c.emitter.Emit(EventReasoning, sessionID, iter, map[string]any{"reasoning": reasoning})

		if time.Since(start) > c.cfg.TotalTimeout {
			reason = "total time budget exhausted"
			c.emitter.Emit(EventBudgetExceeded, sessionID, iter,
				map[string]any{"budget": "total_timeout"})
			break
		}
		if c.iterationOverrun(iterStart, sessionID, iter) {
			continue
		}

		// 3. ACTING.
		state.Phase = PhaseActing
		phaseStart = time.Now()
		action, err := safePlanAction(c.agent, state, reasoning)
		if err != nil {
			if c.recordPhaseError(state, sessionID, iter, trace.PhaseAct, err, &consecutiveErrors) {
				reason, loopErr = c.abortReason(consecutiveErrors, state)
				break
			}
			continue
		}
		c.emitter.Emit(EventActionPlanned, sessionID, iter,
			map[string]any{"kind": string(action.Kind), "description": action.Description})

		obs := c.executor.Act(ctx, action)
		history = append(history, action)
		state.ActionsTaken = append(state.ActionsTaken, action.Description)
		if obs.CacheHit {
			state.CacheHits++
		}
		c.tracer.TracePhase(sessionID, trace.PhaseAct, iter,
			map[string]any{"kind": string(action.Kind), "description": action.Description, "cache_hit": obs.CacheHit},
			time.Since(phaseStart), obs.Success, obs.Error)
		c.emitter.Emit(EventActionExecuted, sessionID, iter,
			map[string]any{"kind": string(action.Kind), "success": obs.Success})
		c.logger.Debug("loop: acted",
			zap.Int("iteration", iter),
			zap.String("kind", string(action.Kind)),
			zap.Bool("success", obs.Success),
			zap.Bool("cache_hit", obs.CacheHit))

		if c.iterationOverrun(iterStart, sessionID, iter) {
			continue
		}

		// 4. OBSERVING.
		state.Phase = PhaseObserving
		phaseStart = time.Now()
		if err := safeObserve(c.agent, state, obs); err != nil {
			if c.recordPhaseError(state, sessionID, iter, trace.PhaseObserve, err, &consecutiveErrors) {
				reason, loopErr = c.abortReason(consecutiveErrors, state)
				break
			}
			continue
		}
		c.tracer.TracePhase(sessionID, trace.PhaseObserve, iter,
			map[string]any{"insight": obs.Insight, "confidence": obs.Confidence},
			time.Since(phaseStart), obs.Success, "")
		c.emitter.Emit(EventObservation, sessionID, iter,
			map[string]any{"insight": obs.Insight, "success": obs.Success})

		// 5. Error accounting and circuit breaking.
		if obs.Success {
			consecutiveErrors = 0
		} else {
			consecutiveErrors++
			state.Errors++
			if consecutiveErrors >= c.cfg.MaxConsecutiveErrors {
				reason, loopErr = c.abortReason(consecutiveErrors, state)
				break
			}
			if state.Errors >= c.cfg.MaxErrors {
				reason = "error budget exhausted"
				loopErr = fmt.Errorf("aborted after %d errors", state.Errors)
				break
			}
		}

		// 6. Stuck-loop detection and recovery.
		if stuck, pattern := detector.Detect(history); stuck {
			c.emitter.Emit(EventStuckLoop, sessionID, iter, map[string]any{"pattern": pattern})
			c.logger.Warn("loop: stuck pattern detected",
				zap.Int("iteration", iter), zap.String("pattern", pattern))
			if err := detector.Recover(state, history, pattern); err != nil {
				reason = "stuck loop escalation"
				loopErr = err
				c.tracer.TracePhase(sessionID, trace.PhaseError, iter,
					map[string]any{"pattern": pattern}, 0, false, err.Error())
				break loop
			}
			c.emitter.Emit(EventRecovery, sessionID, iter,
				map[string]any{"strategy": state.Context["suggested_strategy"]})
		}

		c.emitter.Emit(EventIterationEnd, sessionID, iter, map[string]any{
			"errors":     state.Errors,
			"cache_hits": state.CacheHits,
		})
	}

	if loopErr != nil {
		state.Phase = PhaseAborted
	} else {
		state.Phase = PhaseDone
	}
	if cbErr, ok := loopErr.(*CircuitBreakerError); ok {
		c.emitter.Emit(EventCircuitBreaker, sessionID, state.Iteration,
			map[string]any{"consecutive_errors": cbErr.ConsecutiveErrors})
	}

	elapsed := time.Since(start)
	result := snapshotResult(state, elapsed)
	result.GoalAchieved = goalAchieved
	result.Err = loopErr
	result.Summary = c.buildSummary(state, reason)

	c.tracer.EndSession(sessionID, map[string]any{
		"goal_achieved": goalAchieved,
		"iterations":    result.Iterations,
		"errors":        result.Errors,
		"cache_hits":    result.CacheHits,
		"reason":        reason,
	})
	c.emitter.Emit(EventLoopEnd, sessionID, state.Iteration, map[string]any{
		"goal_achieved": goalAchieved,
		"reason":        reason,
	})
	c.logger.Info("loop: finished",
		zap.String("agent", c.agent.Name()),
		zap.Bool("goal_achieved", goalAchieved),
		zap.Int("iterations", result.Iterations),
		zap.Duration("elapsed", elapsed),
		zap.String("reason", reason))
	return result
}

// goalReached applies the agent's GoalChecker when present, otherwise the
// default completion-marker predicate.
func (c *Controller) goalReached(state *LoopState) bool {
	if checker, ok := c.agent.(GoalChecker); ok {
		return checker.GoalAchieved(state)
	}
	return defaultGoalAchieved(state)
}

// iterationOverrun reports whether the current iteration has spent its time
// budget. An overrun iteration is abandoned at the next checkpoint, not
// rerun; side effects of already-completed phases stand.
func (c *Controller) iterationOverrun(iterStart time.Time, sessionID string, iter int) bool {
	elapsed := time.Since(iterStart)
	if elapsed <= c.cfg.IterationTimeout {
		return false
	}
	c.emitter.Emit(EventBudgetExceeded, sessionID, iter,
		map[string]any{"budget": "iteration_timeout", "elapsed": elapsed.String()})
	c.logger.Warn("loop: iteration abandoned, time budget spent",
		zap.Int("iteration", iter), zap.Duration("elapsed", elapsed))
	return true
}

// recordPhaseError accounts for a reason/plan/observe failure and reports
// whether the loop must abort.
func (c *Controller) recordPhaseError(state *LoopState, sessionID string, iter int, phase trace.Phase, err error, consecutiveErrors *int) bool {
	state.Errors++
	*consecutiveErrors++
	c.tracer.TracePhase(sessionID, trace.PhaseError, iter,
		map[string]any{"phase": string(phase)}, 0, false, err.Error())
	c.emitter.Emit(EventError, sessionID, iter,
		map[string]any{"phase": string(phase), "error": err.Error()})
	c.logger.Warn("loop: phase failed",
		zap.Int("iteration", iter),
		zap.String("phase", string(phase)),
		zap.Error(err))
	return *consecutiveErrors >= c.cfg.MaxConsecutiveErrors || state.Errors >= c.cfg.MaxErrors
}

// abortReason maps the tripped threshold to a termination reason and error.
func (c *Controller) abortReason(consecutiveErrors int, state *LoopState) (string, error) {
	if consecutiveErrors >= c.cfg.MaxConsecutiveErrors {
		return "circuit breaker tripped", &CircuitBreakerError{ConsecutiveErrors: consecutiveErrors}
	}
	return "error budget exhausted", fmt.Errorf("aborted after %d errors", state.Errors)
}

func (c *Controller) buildSummary(state *LoopState, reason string) string {
	agentSummary := safeSummary(c.agent, state)
	if agentSummary == "" {
		return reason
	}
	return fmt.Sprintf("%s: %s", reason, agentSummary)
}

// The safe* helpers convert agent panics into errors so a buggy agent cannot
// crash the loop.

func safeReason(a Agent, state *LoopState) (reasoning string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reason panic: %v", r)
		}
	}()
	return a.Reason(state)
}

func safePlanAction(a Agent, state *LoopState, reasoning string) (action Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plan_action panic: %v", r)
		}
	}()
	return a.PlanAction(state, reasoning)
}

func safeObserve(a Agent, state *LoopState, obs Observation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observe panic: %v", r)
		}
	}()
	a.Observe(state, obs)
	return nil
}

func safeSummary(a Agent, state *LoopState) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = ""
		}
	}()
	return a.GenerateSummary(state)
}
