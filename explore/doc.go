// Package explore implements the autonomous exploration engine: a generic
// Reason -> Act -> Observe loop controller that drives pluggable agents
// through bounded cycles of decision-making and tool invocation.
//
// The package is organized around these core concepts:
//
//   - Controller: the loop state machine. It enforces iteration and
//     wall-clock budgets, breaks the circuit on consecutive errors, checks
//     goal achievement, and always returns a LoopResult.
//   - Agent: the narrow interface a concrete agent supplies (Reason,
//     PlanAction, Observe, GenerateSummary). The controller only ever holds
//     this interface.
//   - Executor: the tool-execution contract. Parameter validation, registry
//     dispatch, per-call timeout, result validation, and bounded retries.
//   - Registry: the strategy table mapping action kinds to tool functions.
//   - StuckDetector: repetition and oscillation detection over the action
//     history, with a rule-table recovery nudge.
//   - Workspace: the filesystem abstraction behind the built-in tools.
//
// # Quick Start
//
//	reg := explore.NewRegistry()
//	explore.RegisterCoreTools(reg, explore.NewLocalWorkspace("."), gen, resultCache)
//	ctl := explore.NewController(agent, reg, explore.DefaultConfig(),
//	    explore.WithCache(resultCache))
//	result := ctl.ExecuteLoop(ctx, "map the repository documentation", 10)
//	fmt.Println(result.Summary)
package explore
