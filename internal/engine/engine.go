package engine

import (
	"context"
	"fmt"
	"log/slog"

	"ownergate/internal/config"
	"ownergate/internal/fetch"
	gh "ownergate/internal/github"
	"ownergate/internal/output"
	"ownergate/internal/teams"
)

func exitCodeForRun(fatal, unverifiable, missing bool) int {
	// Exit code contract (CI spec):
	// 0 = every code owner approved
	// 1 = approvals missing
	// 2 = partial verification (team lookups failed, failing closed)
	// 3 = fatal error (check did not run)
	if fatal {
		return 3
	}
	if unverifiable {
		return 2
	}
	if missing {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.Format, cfg.Output.ShowUnowned)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Workflow command annotations for GitHub Actions
	if cfg.Output.Annotations {
		if err := outMgr.AddSink(output.NewActionsSink(nil)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// Engine evaluates whether a pull request has every required code owner
// approval. Source and Teams are seams: production wiring talks to the
// GitHub API, tests substitute fixtures.
type Engine struct {
	Source fetch.Source
	Teams  teams.Resolver
}

// New wires an engine against the GitHub API for the configured pull
// request. The source and the team resolver share one request budget so
// rate-limit headers observed by either slow down both.
func New(client *gh.Client, cfg *config.Config) *Engine {
	budget := fetch.NewRequestBudget()
	return &Engine{
		Source: fetch.NewGitHubSource(client, budget, cfg.Target.Owner, cfg.Target.Name, cfg.Target.PR),
		Teams:  teams.NewCached(teams.NewGitHubResolver(client, budget)),
	}
}

func runContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Runtime.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, cfg.Runtime.Timeout)
}

// Check runs the approval gate and returns the process exit code. All
// human- and machine-readable output goes through the configured sinks;
// the code is the only value the caller needs.
func (e *Engine) Check(ctx context.Context, cfg *config.Config) int {
	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		slog.Error("creating output sinks", "error", err)
		return exitCodeForRun(true, false, false)
	}
	defer outMgr.Close()

	ctx, cancel := runContext(ctx, cfg)
	defer cancel()

	verdict, err := e.evaluate(ctx, cfg)
	if err != nil {
		slog.Error("check failed", "error", err)
		if cfg.Output.Annotations {
			// Same top-level annotation an aborted run shows in the
			// Actions log.
			fmt.Printf("::error::%v\n", err)
		}
		return exitCodeForRun(true, false, false)
	}

	code := exitCodeForRun(false, verdict.HasErrors(), verdict.HasFailures())
	for _, fv := range verdict.Files {
		_ = outMgr.Write(fv)
	}
	summary := output.Summary{Repo: cfg.Target.Repo, PR: cfg.Target.PR, Verdict: verdict, ExitCode: code}
	_ = outMgr.Write(summary)
	return code
}
