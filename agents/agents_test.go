package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeFusionAgent/codefusion/explore"
)

func fixtureWorkspace() explore.Workspace {
	return explore.NewMapWorkspace(map[string]string{
		"README.md":     "# demo\n\nA fixture project.\n",
		"docs/guide.md": "# guide\n\nHow to run the demo.\n",
		"main.py":       "def main():\n    pass  # TODO wire argument parsing\n",
		"util.go":       "package util\n\nfunc Add(a, b int) int { return a + b }\n",
	})
}

func newRegistry(t *testing.T) *explore.Registry {
	t.Helper()
	reg := explore.NewRegistry()
	explore.RegisterCoreTools(reg, fixtureWorkspace(), nil, nil)
	return reg
}

func TestDocAgentReadsAllDocumentation(t *testing.T) {
	agent := NewDocAgent(false)
	ctl := explore.NewController(agent, newRegistry(t), explore.DefaultConfig())

	result := ctl.ExecuteLoop(context.Background(), "review the documentation", 10)

	require.NoError(t, result.Err)
	assert.True(t, result.GoalAchieved)
	assert.Contains(t, result.ActionsTaken, "scan the workspace for documentation")
	assert.Contains(t, result.ActionsTaken, "read README.md")
	assert.Contains(t, result.ActionsTaken, "read docs/guide.md")
	assert.Contains(t, result.Summary, "reviewed 2 documentation files")
	assert.Zero(t, result.Errors)
}

func TestDocAgentConsumesRecoveryHint(t *testing.T) {
	agent := NewDocAgent(false)
	state := &explore.LoopState{Context: map[string]any{
		"suggested_strategy": string(explore.ActionSearchFiles),
	}}

	act, err := agent.PlanAction(state, "recover")
	require.NoError(t, err)
	assert.Equal(t, explore.ActionSearchFiles, act.Kind)
	assert.NotContains(t, state.Context, "suggested_strategy",
		"the hint must be cleared once acted on")
}

func TestCodeAgentSurveysSources(t *testing.T) {
	agent := NewCodeAgent()
	ctl := explore.NewController(agent, newRegistry(t), explore.DefaultConfig())

	result := ctl.ExecuteLoop(context.Background(), "survey the source tree", 10)

	require.NoError(t, result.Err)
	assert.True(t, result.GoalAchieved)
	assert.Contains(t, result.ActionsTaken, "analyze main.py")
	assert.Contains(t, result.ActionsTaken, "analyze util.go")
	assert.Contains(t, result.ActionsTaken, "search for TODO and FIXME markers")
	assert.Contains(t, result.Summary, "analyzed 2 source files")
	assert.Contains(t, result.Summary, "1 open work markers")
}

func TestSupervisorRunsAllMembers(t *testing.T) {
	sup := NewSupervisor(explore.DefaultConfig(), nil)
	members := []Member{
		{Agent: NewDocAgent(false), Registry: newRegistry(t)},
		{Agent: NewCodeAgent(), Registry: newRegistry(t)},
	}

	results := sup.Run(context.Background(), "map the fixture project", 10, members)

	require.Len(t, results, 2)
	for name, result := range results {
		require.NotNil(t, result, name)
		assert.True(t, result.GoalAchieved, name)
	}
}

func TestSupervisorHonorsConcurrencyLimit(t *testing.T) {
	sup := NewSupervisor(explore.DefaultConfig(), nil)
	sup.SetConcurrency(1)
	members := []Member{
		{Agent: NewDocAgent(false), Registry: newRegistry(t)},
		{Agent: NewCodeAgent(), Registry: newRegistry(t)},
	}

	results := sup.Run(context.Background(), "map the fixture project", 10, members)
	assert.Len(t, results, 2)
}
