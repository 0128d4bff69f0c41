package trace

import (
	"sync"
	"time"
)

// DurationDist is a simple duration distribution.
type DurationDist struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total"`
	Max   time.Duration `json:"max"`
}

// Avg returns the mean duration, or zero for an empty distribution.
func (d DurationDist) Avg() time.Duration {
	if d.Count == 0 {
		return 0
	}
	return d.Total / time.Duration(d.Count)
}

// GlobalSnapshot is a point-in-time copy of the cross-session metrics.
type GlobalSnapshot struct {
	TotalSessions   int                    `json:"total_sessions"`
	TotalIterations int                    `json:"total_iterations"`
	TotalErrors     int                    `json:"total_errors"`
	AgentSessions   map[string]int         `json:"agent_sessions"`
	PhaseDurations  map[Phase]DurationDist `json:"phase_durations"`
}

// globalAccumulator aggregates metrics across all sessions in the process.
// It lives for the process lifetime and starts in an explicit zero state.
type globalAccumulator struct {
	mu              sync.Mutex
	totalSessions   int
	totalIterations int
	totalErrors     int
	agentSessions   map[string]int
	phaseDurations  map[Phase]DurationDist
}

var globalMetrics = &globalAccumulator{
	agentSessions:  make(map[string]int),
	phaseDurations: make(map[Phase]DurationDist),
}

func (g *globalAccumulator) record(session *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.totalSessions++
	g.agentSessions[session.AgentName]++

	maxIteration := 0
	for _, rec := range session.Records {
		if rec.Iteration+1 > maxIteration {
			maxIteration = rec.Iteration + 1
		}
		if rec.Phase == PhaseError || !rec.Success {
			g.totalErrors++
		}
		dist := g.phaseDurations[rec.Phase]
		dist.Count++
		dist.Total += rec.Duration
		if rec.Duration > dist.Max {
			dist.Max = rec.Duration
		}
		g.phaseDurations[rec.Phase] = dist
	}
	g.totalIterations += maxIteration
}

// Global returns a snapshot of the process-wide metrics accumulator.
func Global() GlobalSnapshot {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	snap := GlobalSnapshot{
		TotalSessions:   globalMetrics.totalSessions,
		TotalIterations: globalMetrics.totalIterations,
		TotalErrors:     globalMetrics.totalErrors,
		AgentSessions:   make(map[string]int, len(globalMetrics.agentSessions)),
		PhaseDurations:  make(map[Phase]DurationDist, len(globalMetrics.phaseDurations)),
	}
	for agent, n := range globalMetrics.agentSessions {
		snap.AgentSessions[agent] = n
	}
	for phase, dist := range globalMetrics.phaseDurations {
		snap.PhaseDurations[phase] = dist
	}
	return snap
}

// ResetGlobal clears the process-wide accumulator. Intended for tests.
func ResetGlobal() {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()
	globalMetrics.totalSessions = 0
	globalMetrics.totalIterations = 0
	globalMetrics.totalErrors = 0
	globalMetrics.agentSessions = make(map[string]int)
	globalMetrics.phaseDurations = make(map[Phase]DurationDist)
}
