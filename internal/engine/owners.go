package engine

import (
	"context"
	"log/slog"

	"ownergate/internal/codeowners"
	"ownergate/internal/config"
	"ownergate/internal/policy"
)

// FileOwnership is one changed file with the rule that governs it and
// the expanded identities whose approval the file would need.
type FileOwnership struct {
	Path         string   `json:"path"`
	Owned        bool     `json:"owned"`
	Pattern      string   `json:"pattern,omitempty"`
	Line         int      `json:"line,omitempty"`
	Owners       []string `json:"owners,omitempty"`
	Identities   []string `json:"identities,omitempty"`
	EmptyTeams   []string `json:"empty_teams,omitempty"`
	Unverifiable []string `json:"unverifiable_teams,omitempty"`
}

// OwnersListing maps every changed file of a pull request to its
// owners. Files with Owned false and a non-empty Pattern hit an
// explicit ownerless rule; with an empty Pattern no rule matched.
type OwnersListing struct {
	Repo     string          `json:"repo"`
	PR       int             `json:"pr"`
	Files    []FileOwnership `json:"files"`
	Problems []string        `json:"codeowners_problems,omitempty"`
}

// Owners resolves ownership for the configured pull request without
// consulting reviews. Team resolution failures do not abort the
// listing; the affected teams are reported per file instead.
func (e *Engine) Owners(ctx context.Context, cfg *config.Config) (*OwnersListing, error) {
	ctx, cancel := runContext(ctx, cfg)
	defer cancel()

	data, err := e.fetchPRData(ctx, false)
	if err != nil {
		return nil, err
	}

	if !data.ownersFound {
		slog.Warn("no CODEOWNERS file found; every changed file is unowned")
	}

	ruleset, problems := codeowners.Parse(data.ownersText)
	files := filterIgnored(data.files, cfg.Policy.Ignore)

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	owned := ruleset.ResolveOwners(paths)

	e.warmTeams(ctx, owned, cfg.Runtime.Concurrency)
	reqs := policy.BuildRequirements(ctx, owned, e.Teams)

	listing := &OwnersListing{Repo: cfg.Target.Repo, PR: cfg.Target.PR}
	for i, req := range reqs {
		fo := FileOwnership{
			Path:       req.Path,
			Owned:      req.Owned,
			Pattern:    req.Pattern,
			Line:       req.Line,
			Identities: req.Required,
			EmptyTeams: req.EmptyTeams,
		}
		for _, owner := range owned[i].Owners() {
			fo.Owners = append(fo.Owners, owner.String())
		}
		for _, failure := range req.Failed {
			fo.Unverifiable = append(fo.Unverifiable, failure.Token)
		}
		listing.Files = append(listing.Files, fo)
	}
	for _, p := range problems {
		listing.Problems = append(listing.Problems, p.String())
	}
	return listing, nil
}
