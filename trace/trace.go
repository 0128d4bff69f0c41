// Package trace records phase-level execution traces for exploration loops.
//
// A Tracer owns sessions: one session per loop run, accumulating an ordered
// list of phase records. Ending a session computes per-phase aggregate
// metrics, optionally persists the whole session to a JSON file, and folds
// the session into the process-wide metrics accumulator.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase identifies which part of a loop iteration a record belongs to.
type Phase string

const (
	PhaseReason  Phase = "reason"
	PhaseAct     Phase = "act"
	PhaseObserve Phase = "observe"
	PhaseError   Phase = "error"
)

// Record is a single traced phase execution.
type Record struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	AgentName string         `json:"agent_name"`
	Iteration int            `json:"iteration"`
	Phase     Phase          `json:"phase"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration"`
	Content   map[string]any `json:"content,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
}

// PhaseMetrics aggregates the records of one phase within a session.
type PhaseMetrics struct {
	Count         int           `json:"count"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
	MaxDuration   time.Duration `json:"max_duration"`
	SuccessRate   float64       `json:"success_rate"`
}

// Session is one full trace for one loop run.
type Session struct {
	ID           string                 `json:"id"`
	AgentName    string                 `json:"agent_name"`
	Goal         string                 `json:"goal"`
	StartedAt    time.Time              `json:"started_at"`
	EndedAt      time.Time              `json:"ended_at"`
	Records      []Record               `json:"records"`
	PhaseMetrics map[Phase]PhaseMetrics `json:"phase_metrics,omitempty"`
	FinalResult  map[string]any         `json:"final_result,omitempty"`
}

// Options configures a Tracer.
type Options struct {
	Enabled bool
	Dir     string      // session persistence directory; empty disables persistence
	Logger  *zap.Logger // optional
}

// Tracer records sessions. It is safe for concurrent use so several agents
// can share one instance.
type Tracer struct {
	enabled bool
	dir     string
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a Tracer.
func New(opts Options) *Tracer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracer{
		enabled:  opts.Enabled,
		dir:      opts.Dir,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Enabled reports whether tracing is active.
func (t *Tracer) Enabled() bool { return t != nil && t.enabled }

// StartSession opens a new session and returns its id. With tracing disabled
// it returns an empty id and all subsequent calls for it are no-ops.
func (t *Tracer) StartSession(agentName, goal string) string {
	if !t.Enabled() {
		return ""
	}
	id := uuid.New().String()
	t.mu.Lock()
	t.sessions[id] = &Session{
		ID:        id,
		AgentName: agentName,
		Goal:      goal,
		StartedAt: time.Now(),
	}
	t.mu.Unlock()
	t.logger.Debug("trace: session started",
		zap.String("session_id", id),
		zap.String("agent", agentName))
	return id
}

// TracePhase appends a phase record to a session and returns the record id.
func (t *Tracer) TracePhase(sessionID string, phase Phase, iteration int, content map[string]any, duration time.Duration, success bool, errText string) string {
	if !t.Enabled() || sessionID == "" {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	session, ok := t.sessions[sessionID]
	if !ok {
		return ""
	}
	rec := Record{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		AgentName: session.AgentName,
		Iteration: iteration,
		Phase:     phase,
		Timestamp: time.Now(),
		Duration:  duration,
		Content:   content,
		Success:   success,
		Error:     errText,
	}
	session.Records = append(session.Records, rec)
	return rec.ID
}

// EndSession finalizes a session: computes per-phase metrics, persists the
// session if a directory is configured, feeds the global accumulator, and
// returns the completed session.
func (t *Tracer) EndSession(sessionID string, finalResult map[string]any) *Session {
	if !t.Enabled() || sessionID == "" {
		return nil
	}
	t.mu.Lock()
	session, ok := t.sessions[sessionID]
	if ok {
		delete(t.sessions, sessionID)
	}
	t.mu.Unlock()
	if !ok {
		return nil
	}

	session.EndedAt = time.Now()
	session.FinalResult = finalResult
	session.PhaseMetrics = computePhaseMetrics(session.Records)

	if t.dir != "" {
		if err := t.persistSession(session); err != nil {
			t.logger.Warn("trace: persist session failed",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	globalMetrics.record(session)
	t.logger.Debug("trace: session ended",
		zap.String("session_id", sessionID),
		zap.Int("records", len(session.Records)))
	return session
}

func computePhaseMetrics(records []Record) map[Phase]PhaseMetrics {
	metrics := make(map[Phase]PhaseMetrics)
	successes := make(map[Phase]int)
	for _, rec := range records {
		m := metrics[rec.Phase]
		m.Count++
		m.TotalDuration += rec.Duration
		if rec.Duration > m.MaxDuration {
			m.MaxDuration = rec.Duration
		}
		if rec.Success {
			successes[rec.Phase]++
		}
		metrics[rec.Phase] = m
	}
	for phase, m := range metrics {
		m.AvgDuration = m.TotalDuration / time.Duration(m.Count)
		m.SuccessRate = float64(successes[phase]) / float64(m.Count)
		metrics[phase] = m
	}
	return metrics
}

func (t *Tracer) persistSession(session *Session) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("session_%s.json", session.ID)
	return os.WriteFile(filepath.Join(t.dir, name), data, 0o644)
}
