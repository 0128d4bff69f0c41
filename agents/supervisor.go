package agents

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CodeFusionAgent/codefusion/explore"
)

// Member pairs an agent with the tool registry and controller options it
// runs with. Each member gets its own controller, so agents never share
// loop state or caches unless the caller wires them to.
type Member struct {
	Agent    explore.Agent
	Registry *explore.Registry
	Options  []explore.Option
}

// Supervisor runs several exploration agents against the same goal and
// collects their results. Agent names must be unique within one run.
type Supervisor struct {
	cfg    explore.Config
	logger *zap.Logger
	limit  int
}

// NewSupervisor creates a Supervisor. A nil logger disables logging.
func NewSupervisor(cfg explore.Config, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{cfg: cfg, logger: logger}
}

// SetConcurrency bounds how many agents run at once. Zero or negative means
// all members run concurrently.
func (s *Supervisor) SetConcurrency(n int) { s.limit = n }

// Run executes every member's loop and returns the results keyed by agent
// name. Individual loop failures land in the corresponding LoopResult; Run
// itself does not fail.
func (s *Supervisor) Run(ctx context.Context, goal string, maxIterations int, members []Member) map[string]*explore.LoopResult {
	results := make([]*explore.LoopResult, len(members))

	g, ctx := errgroup.WithContext(ctx)
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}
	for i, member := range members {
		g.Go(func() error {
			opts := append([]explore.Option{
				explore.WithLogger(s.logger.Named(member.Agent.Name())),
			}, member.Options...)
			ctl := explore.NewController(member.Agent, member.Registry, s.cfg, opts...)
			results[i] = ctl.ExecuteLoop(ctx, goal, maxIterations)
			return nil
		})
	}
	// Workers only report through the results slice.
	_ = g.Wait()

	out := make(map[string]*explore.LoopResult, len(members))
	for i, member := range members {
		out[member.Agent.Name()] = results[i]
	}
	return out
}
