package explore

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// ActionKind identifies a unit of work an agent can request.
type ActionKind string

const (
	ActionScanDirectory ActionKind = "scan_directory"
	ActionListFiles     ActionKind = "list_files"
	ActionReadFile      ActionKind = "read_file"
	ActionSearchFiles   ActionKind = "search_files"
	ActionAnalyzeCode   ActionKind = "analyze_code"
	ActionLLMReasoning  ActionKind = "llm_reasoning"
	ActionLLMSummary    ActionKind = "llm_summary"
	ActionCacheLookup   ActionKind = "cache_lookup"
	ActionCacheStore    ActionKind = "cache_store"
)

// Action is a requested unit of work. Immutable once created; produced by an
// agent's PlanAction.
type Action struct {
	Kind            ActionKind     `json:"kind"`
	Description     string         `json:"description"`
	Params          map[string]any `json:"params,omitempty"`
	ExpectedOutcome string         `json:"expected_outcome,omitempty"`
	Tool            string         `json:"tool,omitempty"`
}

// Signature computes a deterministic fingerprint of the action
// (kind + hash of parameters), used for repetition detection.
func (a Action) Signature() string {
	keys := make([]string, 0, len(a.Params))
	for k := range a.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		v, _ := json.Marshal(a.Params[k])
		fmt.Fprintf(h, "%s=%s;", k, v)
	}
	return fmt.Sprintf("%s:%x", a.Kind, h.Sum(nil)[:8])
}

// Observation is the structured result of executing an Action. Immutable;
// produced by the Executor, consumed by an agent's Observe.
type Observation struct {
	ActionDescription string  `json:"action_description"`
	Result            any     `json:"result,omitempty"`
	Success           bool    `json:"success"`
	Insight           string  `json:"insight"`
	Confidence        float64 `json:"confidence"`
	SuggestedNext     string  `json:"suggested_next,omitempty"`
	GoalProgress      float64 `json:"goal_progress"`
	Error             string  `json:"error,omitempty"`
	CacheHit          bool    `json:"cache_hit,omitempty"`
}
