package explore

import "time"

// Stuck-pattern identifiers.
const (
	PatternExactRepeat = "exact_repeat"
	PatternOscillation = "oscillation"
)

const (
	// minHistoryForDetection is the number of actions that must exist before
	// detection rules run at all.
	minHistoryForDetection = 5
	// exactRepeatWindow is how many identical trailing actions count as stuck.
	exactRepeatWindow = 4
	// oscillationWindow is the window checked for a period-2 cycle.
	oscillationWindow = 6
	// maxRecoveries is how many nudges are attempted before escalating.
	maxRecoveries = 3
)

// StuckDetector inspects the action history for repetition and oscillation
// and selects a recovery strategy. One detector serves one loop run.
type StuckDetector struct {
	repeatWindow int
	stuckCount   int
}

// NewStuckDetector creates a StuckDetector with the default repeat window.
func NewStuckDetector() *StuckDetector {
	return &StuckDetector{repeatWindow: exactRepeatWindow}
}

// SetRepeatWindow overrides how many identical trailing actions count as
// stuck. Values below one are ignored.
func (d *StuckDetector) SetRepeatWindow(n int) {
	if n > 0 {
		d.repeatWindow = n
	}
}

// StuckCount returns how many times recovery has been attempted.
func (d *StuckDetector) StuckCount() int { return d.stuckCount }

// Detect reports whether the action history shows a stuck pattern. Rules run
// only once at least minHistoryForDetection actions exist.
func (d *StuckDetector) Detect(history []Action) (bool, string) {
	if len(history) < minHistoryForDetection || len(history) <= d.repeatWindow {
		return false, ""
	}

	sigs := make([]string, len(history))
	for i, a := range history {
		sigs[i] = a.Signature()
	}

	// Exact repeat: the trailing window of actions is identical.
	tail := sigs[len(sigs)-d.repeatWindow:]
	repeat := true
	for _, s := range tail[1:] {
		if s != tail[0] {
			repeat = false
			break
		}
	}
	if repeat {
		return true, PatternExactRepeat
	}

	// Oscillation: of the last 6 actions, the even positions agree and the
	// odd positions agree (a period-2 cycle).
	if len(sigs) >= oscillationWindow {
		window := sigs[len(sigs)-oscillationWindow:]
		if window[0] == window[2] && window[2] == window[4] &&
			window[1] == window[3] && window[3] == window[5] {
			return true, PatternOscillation
		}
	}

	return false, ""
}

// Recover selects a recovery strategy and nudges the loop state. It does not
// force a specific action; the agent's next PlanAction reads the updated
// context. A non-nil error means the situation is unrecoverable.
func (d *StuckDetector) Recover(state *LoopState, history []Action, pattern string) error {
	if d.stuckCount >= maxRecoveries {
		return &StuckLoopError{Pattern: pattern, StuckCount: d.stuckCount}
	}
	d.stuckCount++

	strategy := ActionLLMReasoning
	if kind, ok := lastKindsUniform(history, 3); ok {
		switch kind {
		case ActionReadFile:
			strategy = ActionScanDirectory
		case ActionScanDirectory:
			strategy = ActionSearchFiles
		}
	}

	state.Context["recovery_attempt"] = time.Now()
	state.Context["suggested_strategy"] = string(strategy)
	state.Context["stuck_pattern"] = pattern
	return nil
}

// lastKindsUniform reports the shared kind of the last n actions, if they
// all agree.
func lastKindsUniform(history []Action, n int) (ActionKind, bool) {
	if len(history) < n {
		return "", false
	}
	tail := history[len(history)-n:]
	kind := tail[0].Kind
	for _, a := range tail[1:] {
		if a.Kind != kind {
			return "", false
		}
	}
	return kind, true
}
