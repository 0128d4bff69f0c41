package explore

import "time"

// LoopPhase is the controller's state machine position.
type LoopPhase string

const (
	PhaseInit      LoopPhase = "init"
	PhaseReasoning LoopPhase = "reasoning"
	PhaseActing    LoopPhase = "acting"
	PhaseObserving LoopPhase = "observing"
	PhaseDone      LoopPhase = "done"
	PhaseAborted   LoopPhase = "aborted"
)

// LoopState is the mutable state of one loop run. It is mutated exclusively
// by the Controller and lives for one ExecuteLoop invocation; agents read it
// inside Reason/PlanAction/Observe and write only through the Context map.
type LoopState struct {
	Goal             string
	Phase            LoopPhase
	Iteration        int
	MaxIterations    int
	Observations     []string
	ActionsTaken     []string
	ReasoningHistory []string
	CacheHits        int
	Errors           int
	Context          map[string]any
}

func newLoopState(goal string, maxIterations int) *LoopState {
	return &LoopState{
		Goal:          goal,
		Phase:         PhaseInit,
		MaxIterations: maxIterations,
		Context:       make(map[string]any),
	}
}

// LoopResult is the always-returned outcome of ExecuteLoop: a snapshot of the
// final loop state plus the termination verdict.
type LoopResult struct {
	Goal             string         `json:"goal"`
	Iterations       int            `json:"iterations"`
	Elapsed          time.Duration  `json:"elapsed"`
	Observations     []string       `json:"observations"`
	ActionsTaken     []string       `json:"actions_taken"`
	ReasoningHistory []string       `json:"reasoning_history"`
	CacheHits        int            `json:"cache_hits"`
	Errors           int            `json:"errors"`
	FinalContext     map[string]any `json:"final_context"`
	GoalAchieved     bool           `json:"goal_achieved"`
	Summary          string         `json:"summary"`

	// Err is set only for truly unexpected internal failures or loop aborts;
	// budget-driven termination leaves it nil.
	Err error `json:"-"`
}

// snapshotResult copies the loop state into a LoopResult.
func snapshotResult(state *LoopState, elapsed time.Duration) *LoopResult {
	ctx := make(map[string]any, len(state.Context))
	for k, v := range state.Context {
		ctx[k] = v
	}
	return &LoopResult{
		Goal:             state.Goal,
		Iterations:       state.Iteration,
		Elapsed:          elapsed,
		Observations:     append([]string(nil), state.Observations...),
		ActionsTaken:     append([]string(nil), state.ActionsTaken...),
		ReasoningHistory: append([]string(nil), state.ReasoningHistory...),
		CacheHits:        state.CacheHits,
		Errors:           state.Errors,
		FinalContext:     ctx,
	}
}
