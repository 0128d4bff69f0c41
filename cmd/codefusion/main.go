// Command codefusion runs autonomous exploration agents against a local
// workspace and prints what they found.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeFusionAgent/codefusion/agents"
	"github.com/CodeFusionAgent/codefusion/cache"
	"github.com/CodeFusionAgent/codefusion/explore"
	"github.com/CodeFusionAgent/codefusion/llm"
	"github.com/CodeFusionAgent/codefusion/trace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "codefusion",
		Short:        "Autonomous workspace exploration agents",
		SilenceUsage: true,
	}
	root.AddCommand(newExploreCmd())
	return root
}

type exploreOptions struct {
	configPath    string
	workspaceDir  string
	agentKind     string
	provider      string
	maxIterations int
	summarize     bool
	verbose       bool
}

func newExploreCmd() *cobra.Command {
	var opts exploreOptions

	cmd := &cobra.Command{
		Use:   "explore [goal]",
		Short: "Run an exploration loop against a workspace",
		Long: `Explore runs one or more agents in a reason-act-observe loop until the
goal is reached or a budget runs out. Without an explicit goal the agents
map the workspace.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := "map the workspace"
			if len(args) == 1 {
				goal = args[0]
			}
			return runExplore(cmd, goal, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVarP(&opts.workspaceDir, "workspace", "w", ".", "workspace directory to explore")
	cmd.Flags().StringVarP(&opts.agentKind, "agent", "a", "all", "agent to run: doc, code, or all")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "model provider for summaries (e.g. openai, anthropic)")
	cmd.Flags().IntVarP(&opts.maxIterations, "max-iterations", "n", 0, "iteration budget, 0 uses the configured default")
	cmd.Flags().BoolVar(&opts.summarize, "summarize", false, "end the documentation run with a model summary")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	return cmd
}

func runExplore(cmd *cobra.Command, goal string, opts exploreOptions) error {
	cfg, err := explore.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen, err := buildGenerator(opts)
	if err != nil {
		return err
	}

	tracer := trace.New(trace.Options{
		Enabled: cfg.TracingEnabled,
		Dir:     cfg.TraceDir,
		Logger:  logger,
	})

	ws := explore.NewLocalWorkspace(opts.workspaceDir)
	members, err := buildMembers(opts, cfg, ws, gen, tracer, logger)
	if err != nil {
		return err
	}

	sup := agents.NewSupervisor(cfg, logger)
	results := sup.Run(cmd.Context(), goal, opts.maxIterations, members)

	out := cmd.OutOrStdout()
	for _, member := range members {
		result := results[member.Agent.Name()]
		fmt.Fprintf(out, "--- %s ---\n", member.Agent.Name())
		fmt.Fprintf(out, "goal achieved: %v\n", result.GoalAchieved)
		fmt.Fprintf(out, "iterations:    %d\n", result.Iterations)
		fmt.Fprintf(out, "cache hits:    %d\n", result.CacheHits)
		fmt.Fprintf(out, "errors:        %d\n", result.Errors)
		fmt.Fprintf(out, "summary:       %s\n", result.Summary)
		if result.Err != nil {
			fmt.Fprintf(out, "aborted:       %v\n", result.Err)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// buildGenerator wires a model client when a provider is requested. The
// agents work without one; only summaries need it.
func buildGenerator(opts exploreOptions) (llm.Generator, error) {
	if opts.provider == "" {
		if opts.summarize {
			return nil, fmt.Errorf("--summarize needs --provider")
		}
		return nil, nil
	}
	gen, err := llm.NewGollmGenerator(opts.provider)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func buildMembers(opts exploreOptions, cfg explore.Config, ws explore.Workspace, gen llm.Generator, tracer *trace.Tracer, logger *zap.Logger) ([]agents.Member, error) {
	var members []agents.Member

	add := func(agent explore.Agent) error {
		// Each agent owns its cache; results never bleed across agents.
		resultCache, err := cache.New(cache.Options{
			MaxEntries: cfg.CacheSize,
			TTL:        cfg.CacheTTL,
			Dir:        cacheDirFor(cfg.CacheDir, agent.Name()),
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		reg := explore.NewRegistry()
		explore.RegisterCoreTools(reg, ws, gen, resultCache)
		members = append(members, agents.Member{
			Agent:    agent,
			Registry: reg,
			Options: []explore.Option{
				explore.WithCache(resultCache),
				explore.WithTracer(tracer),
			},
		})
		return nil
	}

	switch opts.agentKind {
	case "doc":
		if err := add(agents.NewDocAgent(opts.summarize)); err != nil {
			return nil, err
		}
	case "code":
		if err := add(agents.NewCodeAgent()); err != nil {
			return nil, err
		}
	case "all":
		if err := add(agents.NewDocAgent(opts.summarize)); err != nil {
			return nil, err
		}
		if err := add(agents.NewCodeAgent()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown agent %q, expected doc, code, or all", opts.agentKind)
	}
	return members, nil
}

func cacheDirFor(base, agentName string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(base, agentName)
}
