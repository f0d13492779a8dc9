package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ownergate/internal/codeowners"
	"ownergate/internal/config"
	"ownergate/internal/fetch"
	"ownergate/internal/policy"
	"ownergate/internal/review"

	"golang.org/x/sync/errgroup"
)

// prData is everything the decision needs from the API, fetched up
// front so the policy stage runs without I/O.
type prData struct {
	ownersText     string
	ownersLocation string
	ownersFound    bool
	files          []fetch.FileChange
	reviews        []review.Review
}

// fetchPRData issues the independent reads concurrently. A missing
// CODEOWNERS file is not an error; any other failure aborts the whole
// fetch, since a partial picture cannot be reduced to pass or fail.
func (e *Engine) fetchPRData(ctx context.Context, withReviews bool) (*prData, error) {
	var data prData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, location, err := e.Source.CodeownersText(ctx)
		if errors.Is(err, fetch.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch CODEOWNERS: %w", err)
		}
		data.ownersText = text
		data.ownersLocation = location
		data.ownersFound = true
		return nil
	})
	g.Go(func() error {
		files, err := e.Source.ChangedFiles(ctx)
		if err != nil {
			return fmt.Errorf("list changed files: %w", err)
		}
		data.files = files
		return nil
	})
	if withReviews {
		g.Go(func() error {
			reviews, err := e.Source.Reviews(ctx)
			if err != nil {
				return fmt.Errorf("list reviews: %w", err)
			}
			data.reviews = reviews
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (e *Engine) evaluate(ctx context.Context, cfg *config.Config) (policy.Verdict, error) {
	data, err := e.fetchPRData(ctx, true)
	if err != nil {
		return policy.Verdict{}, err
	}

	if data.ownersFound {
		slog.Debug("found CODEOWNERS", "location", data.ownersLocation)
	} else {
		slog.Warn("no CODEOWNERS file found; every changed file is unowned")
	}

	ruleset, problems := codeowners.Parse(data.ownersText)
	for _, p := range problems {
		slog.Warn("skipping CODEOWNERS line", "line", p.Line, "reason", p.Message)
	}

	files := filterIgnored(data.files, cfg.Policy.Ignore)
	slog.Debug("resolving ownership",
		"changed", len(data.files), "checked", len(files), "rules", len(ruleset))

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	owned := ruleset.ResolveOwners(paths)

	e.warmTeams(ctx, owned, cfg.Runtime.Concurrency)

	reqs := policy.BuildRequirements(ctx, owned, e.Teams)
	approvals := review.Aggregate(data.reviews)
	verdict := policy.Decide(reqs, approvals)
	for _, p := range problems {
		verdict.Problems = append(verdict.Problems, p.String())
	}
	return verdict, nil
}

// warmTeams resolves every distinct team ahead of the sequential
// expansion, bounded by the configured concurrency. Failures are not
// errors here: the memoized resolver replays them during expansion,
// where they become per-file verdicts.
func (e *Engine) warmTeams(ctx context.Context, files []codeowners.FileOwners, limit int) {
	owners := policy.Teams(files)
	if len(owners) == 0 {
		return
	}
	if limit < 1 {
		limit = 1
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, owner := range owners {
		org, slug, ok := owner.Team()
		if !ok {
			continue
		}
		g.Go(func() error {
			_, _ = e.Teams.Members(ctx, org, slug)
			return nil
		})
	}
	_ = g.Wait()
}
