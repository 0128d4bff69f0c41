package explore

import "strings"

// Agent is the boundary between the loop controller and a concrete
// exploration strategy. Implementations supply the reasoning and
// action-planning functions; the controller owns everything else.
//
// Reason and PlanAction must not mutate controller-owned state except
// through their return values and the state's Context map.
type Agent interface {
	// Name identifies the agent in traces and logs.
	Name() string

	// Reason produces a reasoning string for the current state.
	Reason(state *LoopState) (string, error)

	// PlanAction maps reasoning to a concrete action.
	PlanAction(state *LoopState, reasoning string) (Action, error)

	// Observe lets the agent incorporate a tool result. The default
	// behavior (see BaseAgent) appends the insight to the observations.
	Observe(state *LoopState, obs Observation)

	// GenerateSummary is called once at loop end to produce the
	// human-readable result summary.
	GenerateSummary(state *LoopState) string
}

// GoalChecker is an optional Agent extension overriding the default
// goal-achieved predicate.
type GoalChecker interface {
	GoalAchieved(state *LoopState) bool
}

// BaseAgent provides the default Observe behavior. Concrete agents embed it
// and implement the remaining Agent methods.
type BaseAgent struct {
	AgentName string
}

// Name returns the configured agent name.
func (b *BaseAgent) Name() string {
	if b.AgentName == "" {
		return "agent"
	}
	return b.AgentName
}

// Observe appends the observation's insight and records the last successful
// action or last error in the context map.
func (b *BaseAgent) Observe(state *LoopState, obs Observation) {
	if obs.Insight != "" {
		state.Observations = append(state.Observations, obs.Insight)
	}
	if obs.Success {
		state.Context["last_successful_action"] = obs.ActionDescription
	} else {
		state.Context["last_error"] = obs.Error
	}
}

// completionMarkers are the phrases the default goal predicate looks for in
// recent observation insights. Deliberately simple; agents that need a real
// predicate implement GoalChecker.
var completionMarkers = []string{"completed", "achieved", "goal reached"}

// defaultGoalAchieved reports whether any of the last 3 observation insights
// contains a completion marker.
func defaultGoalAchieved(state *LoopState) bool {
	start := len(state.Observations) - 3
	if start < 0 {
		start = 0
	}
	for _, insight := range state.Observations[start:] {
		lower := strings.ToLower(insight)
		for _, marker := range completionMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}
