package policy

import (
	"context"
	"sort"

	"ownergate/internal/codeowners"
	"ownergate/internal/teams"
)

// TeamFailure records a team whose membership could not be resolved.
type TeamFailure struct {
	Token string // "@org/slug" as written in CODEOWNERS
	Err   error
}

// FileRequirement is one changed file with its owner list expanded to
// the canonical identities whose approval the file needs. Team owners
// expand to every member; a team that resolves but is empty, or that
// cannot be resolved at all, is carried separately because no approval
// can ever satisfy it.
type FileRequirement struct {
	Path       string
	Pattern    string
	Line       int
	Owned      bool
	Required   []string
	EmptyTeams []string
	Failed     []TeamFailure
}

// BuildRequirements expands each file's owners through the resolver.
// Resolution failures never abort the run; they are recorded on the
// file and decided later. The resolver is expected to memoize, so
// repeated teams cost one lookup.
func BuildRequirements(ctx context.Context, files []codeowners.FileOwners, resolver teams.Resolver) []FileRequirement {
	reqs := make([]FileRequirement, 0, len(files))
	for _, f := range files {
		req := FileRequirement{Path: f.Path}
		if f.Rule != nil {
			req.Pattern = f.Rule.Pattern
			req.Line = f.Rule.LineNumber
		}
		owners := f.Owners()
		if len(owners) == 0 {
			reqs = append(reqs, req)
			continue
		}
		req.Owned = true

		identities := make(map[string]struct{})
		for _, owner := range owners {
			org, slug, ok := owner.Team()
			if !ok {
				// Users and emails are already canonical identities.
				identities[owner.Value] = struct{}{}
				continue
			}
			members, err := resolver.Members(ctx, org, slug)
			switch {
			case err != nil:
				req.Failed = append(req.Failed, TeamFailure{Token: owner.String(), Err: err})
			case len(members) == 0:
				req.EmptyTeams = append(req.EmptyTeams, owner.String())
			default:
				for _, m := range members {
					identities[m] = struct{}{}
				}
			}
		}

		req.Required = make([]string, 0, len(identities))
		for id := range identities {
			req.Required = append(req.Required, id)
		}
		sort.Strings(req.Required)
		reqs = append(reqs, req)
	}
	return reqs
}

// Teams returns the distinct team owners named by any of the files, in
// first-appearance order. Used to warm the resolver concurrently
// before the sequential expansion.
func Teams(files []codeowners.FileOwners) []codeowners.Owner {
	seen := make(map[string]struct{})
	var owners []codeowners.Owner
	for _, f := range files {
		for _, owner := range f.Owners() {
			if owner.Type != codeowners.OwnerTeam {
				continue
			}
			if _, ok := seen[owner.Value]; ok {
				continue
			}
			seen[owner.Value] = struct{}{}
			owners = append(owners, owner)
		}
	}
	return owners
}
