package policy

import (
	"fmt"
	"sort"
	"strings"

	"ownergate/internal/review"
)

// Decide reduces expanded requirements and the standing review state to
// a verdict. It is pure: all I/O happened during expansion, so every
// outcome here is reproducible from its inputs.
func Decide(reqs []FileRequirement, approvals review.ApprovalState) Verdict {
	verdict := Verdict{Overall: true}
	unresolved := make(map[string]struct{})

	for _, req := range reqs {
		fv := FileVerdict{
			Path:    req.Path,
			Pattern: req.Pattern,
			Line:    req.Line,
		}
		if !req.Owned {
			fv.Status = StatusUnowned
			verdict.Files = append(verdict.Files, fv)
			continue
		}

		fv.Required = req.Required
		var missing []string
		for _, id := range req.Required {
			if !approvals.Approved(id) {
				missing = append(missing, id)
			}
		}
		missing = append(missing, req.EmptyTeams...)
		for _, failure := range req.Failed {
			missing = append(missing, failure.Token)
			unresolved[failure.Token] = struct{}{}
		}
		fv.Missing = missing

		switch {
		case len(req.Failed) > 0:
			fv.Status = StatusError
			fv.Message = teamFailureMessage(req.Failed)
			verdict.Overall = false
		case len(missing) > 0:
			fv.Status = StatusFail
			if len(req.EmptyTeams) > 0 {
				fv.Message = "team has no members: " + strings.Join(req.EmptyTeams, ", ")
			}
			verdict.Overall = false
		default:
			fv.Status = StatusPass
		}
		verdict.Files = append(verdict.Files, fv)
	}

	if len(unresolved) > 0 {
		verdict.UnresolvedTeams = make([]string, 0, len(unresolved))
		for token := range unresolved {
			verdict.UnresolvedTeams = append(verdict.UnresolvedTeams, token)
		}
		sort.Strings(verdict.UnresolvedTeams)
	}
	return verdict
}

func teamFailureMessage(failures []TeamFailure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Token, f.Err))
	}
	return "cannot verify team membership: " + strings.Join(parts, "; ")
}
