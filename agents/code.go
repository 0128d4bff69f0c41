package agents

import (
	"fmt"
	"path/filepath"

	"github.com/CodeFusionAgent/codefusion/explore"
)

// CodeAgent maps the source files of a workspace: it scans the tree,
// analyzes every source file it finds, and finishes with a TODO/FIXME
// search across the codebase.
type CodeAgent struct {
	explore.BaseAgent
	pending  []string
	queued   map[string]bool
	analyses []*explore.CodeAnalysis
	todoHits int
	scanned  bool
	searched bool
}

// NewCodeAgent creates a CodeAgent.
func NewCodeAgent() *CodeAgent {
	return &CodeAgent{
		BaseAgent: explore.BaseAgent{AgentName: "code-agent"},
		queued:    make(map[string]bool),
	}
}

func (a *CodeAgent) Reason(state *explore.LoopState) (string, error) {
	if hint := recoveryHint(state); hint != "" {
		return fmt.Sprintf("recovery suggested switching to %s", hint), nil
	}
	switch {
	case !a.scanned:
		return "map the source tree before analyzing anything", nil
	case len(a.pending) > 0:
		return fmt.Sprintf("analyze the next source file, %d queued", len(a.pending)), nil
	case !a.searched:
		return "sweep the codebase for open work markers", nil
	default:
		return "code survey is finished", nil
	}
}

func (a *CodeAgent) PlanAction(state *explore.LoopState, reasoning string) (explore.Action, error) {
	if hint := recoveryHint(state); hint != "" {
		delete(state.Context, "suggested_strategy")
		return recoveryAction(explore.ActionKind(hint), `TODO|FIXME`), nil
	}
	switch {
	case !a.scanned:
		return explore.Action{
			Kind:            explore.ActionScanDirectory,
			Description:     "scan the workspace for source files",
			Params:          map[string]any{"path": ".", "depth": 3},
			ExpectedOutcome: "a file tree including source files",
		}, nil
	case len(a.pending) > 0:
		path := a.pending[0]
		a.pending = a.pending[1:]
		return explore.Action{
			Kind:        explore.ActionAnalyzeCode,
			Description: "analyze " + path,
			Params:      map[string]any{"path": path},
		}, nil
	case !a.searched:
		return explore.Action{
			Kind:        explore.ActionSearchFiles,
			Description: "search for TODO and FIXME markers",
			Params:      map[string]any{"pattern": `TODO|FIXME`, "max_results": 100},
		}, nil
	default:
		return explore.Action{}, fmt.Errorf("code agent: nothing left to plan")
	}
}

func (a *CodeAgent) Observe(state *explore.LoopState, obs explore.Observation) {
	a.BaseAgent.Observe(state, obs)
	if !obs.Success {
		return
	}
	switch result := obs.Result.(type) {
	case []explore.FileEntry:
		a.scanned = true
		for _, entry := range result {
			if entry.IsDir || !isSourcePath(entry.Path) {
				continue
			}
			if !a.queued[entry.Path] {
				a.queued[entry.Path] = true
				a.pending = append(a.pending, entry.Path)
			}
		}
	case *explore.CodeAnalysis:
		a.analyses = append(a.analyses, result)
	case []explore.SearchMatch:
		a.searched = true
		a.todoHits = len(result)
	}
}

func (a *CodeAgent) GoalAchieved(state *explore.LoopState) bool {
	return a.scanned && len(a.pending) == 0 && a.searched
}

func (a *CodeAgent) GenerateSummary(state *explore.LoopState) string {
	lines, functions := 0, 0
	for _, analysis := range a.analyses {
		lines += analysis.Lines
		functions += analysis.Functions
	}
	return fmt.Sprintf("analyzed %d source files, %d lines, %d functions, %d open work markers",
		len(a.analyses), lines, functions, a.todoHits)
}

func isSourcePath(path string) bool {
	switch filepath.Ext(path) {
	case ".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".rs", ".java", ".c", ".cc", ".cpp", ".rb":
		return true
	}
	return false
}
