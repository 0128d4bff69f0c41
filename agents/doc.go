// Package agents provides ready-made exploration agents and a supervisor
// for running several of them concurrently over the same goal.
package agents

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/CodeFusionAgent/codefusion/explore"
)

// DocAgent surveys a workspace for documentation, reads every file it
// discovers, and optionally plans a closing model summary. Discovery happens
// through observations: scan and search results feed the read queue.
type DocAgent struct {
	explore.BaseAgent
	summarize  bool
	pending    []string
	queued     map[string]bool
	readCount  int
	scanned    bool
	summarized bool
}

// NewDocAgent creates a DocAgent. With summarize set, the agent ends its run
// with an llm_summary action, so the registry must have a generator wired.
func NewDocAgent(summarize bool) *DocAgent {
	return &DocAgent{
		BaseAgent: explore.BaseAgent{AgentName: "doc-agent"},
		summarize: summarize,
		queued:    make(map[string]bool),
	}
}

func (a *DocAgent) Reason(state *explore.LoopState) (string, error) {
	if hint := recoveryHint(state); hint != "" {
		return fmt.Sprintf("recovery suggested switching to %s", hint), nil
	}
	switch {
	case !a.scanned:
		return "locate documentation by scanning the workspace", nil
	case len(a.pending) > 0:
		return fmt.Sprintf("read the next documentation file, %d queued", len(a.pending)), nil
	case a.summarize && !a.summarized:
		return "condense the collected documentation", nil
	default:
		return "documentation review is finished", nil
	}
}

func (a *DocAgent) PlanAction(state *explore.LoopState, reasoning string) (explore.Action, error) {
	if hint := recoveryHint(state); hint != "" {
		delete(state.Context, "suggested_strategy")
		return recoveryAction(explore.ActionKind(hint), `(?i)readme|# `), nil
	}
	switch {
	case !a.scanned:
		return explore.Action{
			Kind:            explore.ActionScanDirectory,
			Description:     "scan the workspace for documentation",
			Params:          map[string]any{"path": ".", "depth": 3},
			ExpectedOutcome: "a file tree including documentation files",
		}, nil
	case len(a.pending) > 0:
		path := a.pending[0]
		a.pending = a.pending[1:]
		a.readCount++
		return explore.Action{
			Kind:        explore.ActionReadFile,
			Description: "read " + path,
			Params:      map[string]any{"path": path},
		}, nil
	case a.summarize && !a.summarized:
		a.summarized = true
		return explore.Action{
			Kind:        explore.ActionLLMSummary,
			Description: "summarize the documentation",
			Params:      map[string]any{"prompt": strings.Join(state.Observations, "\n")},
		}, nil
	default:
		return explore.Action{}, fmt.Errorf("doc agent: nothing left to plan")
	}
}

func (a *DocAgent) Observe(state *explore.LoopState, obs explore.Observation) {
	a.BaseAgent.Observe(state, obs)
	if !obs.Success {
		return
	}
	switch result := obs.Result.(type) {
	case []explore.FileEntry:
		a.scanned = true
		for _, entry := range result {
			if entry.IsDir || !isDocPath(entry.Path) {
				continue
			}
			a.enqueue(entry.Path)
		}
	case []explore.SearchMatch:
		a.scanned = true
		for _, match := range result {
			if isDocPath(match.Path) {
				a.enqueue(match.Path)
			}
		}
	}
}

func (a *DocAgent) enqueue(path string) {
	if a.queued[path] {
		return
	}
	a.queued[path] = true
	a.pending = append(a.pending, path)
}

// GoalAchieved reports completion once every discovered document was read
// and the optional summary was planned.
func (a *DocAgent) GoalAchieved(state *explore.LoopState) bool {
	return a.scanned && len(a.pending) == 0 && (!a.summarize || a.summarized)
}

func (a *DocAgent) GenerateSummary(state *explore.LoopState) string {
	return fmt.Sprintf("reviewed %d documentation files in %d iterations", a.readCount, state.Iteration)
}

func isDocPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	switch filepath.Ext(base) {
	case ".md", ".rst", ".adoc":
		return true
	}
	return strings.HasPrefix(base, "readme") || strings.HasPrefix(base, "changelog")
}

// recoveryHint returns the strategy suggested by stuck-loop recovery, if any.
func recoveryHint(state *explore.LoopState) string {
	hint, _ := state.Context["suggested_strategy"].(string)
	return hint
}

// recoveryAction converts a recovery strategy into a concrete action. The
// search pattern is agent-specific.
func recoveryAction(kind explore.ActionKind, searchPattern string) explore.Action {
	switch kind {
	case explore.ActionScanDirectory:
		return explore.Action{
			Kind:        explore.ActionScanDirectory,
			Description: "rescan the workspace from the root",
			Params:      map[string]any{"path": ".", "depth": 3},
		}
	case explore.ActionSearchFiles:
		return explore.Action{
			Kind:        explore.ActionSearchFiles,
			Description: "search the workspace instead of walking it",
			Params:      map[string]any{"pattern": searchPattern, "max_results": 50},
		}
	default:
		return explore.Action{
			Kind:        explore.ActionLLMReasoning,
			Description: "reconsider the exploration strategy",
			Params:      map[string]any{"prompt": "The current exploration strategy is repeating itself. Suggest a different approach."},
		}
	}
}
