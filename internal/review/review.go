// Package review reduces a pull request's review timeline to the final
// standing state per reviewer.
package review

import (
	"sort"
	"strings"
	"time"
)

// State is a pull request review state as reported by the API.
type State string

const (
	StateApproved         State = "APPROVED"
	StateChangesRequested State = "CHANGES_REQUESTED"
	StateCommented        State = "COMMENTED"
	StateDismissed        State = "DISMISSED"
	StatePending          State = "PENDING"
)

// Review is one submitted review event.
type Review struct {
	Author      string
	State       State
	SubmittedAt time.Time
}

// ApprovalState maps canonical author identities to their latest
// standing review state. Only APPROVED, CHANGES_REQUESTED and DISMISSED
// ever appear as values.
type ApprovalState map[string]State

// Aggregate replays the review timeline in submission order and keeps,
// per author, the newest state that changes approval standing. Comment
// and pending reviews are invisible here: a comment after an approval
// does not withdraw it. A dismissed review is kept and counts as not
// approved.
func Aggregate(reviews []Review) ApprovalState {
	ordered := make([]Review, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})

	state := make(ApprovalState)
	for _, r := range ordered {
		author := strings.ToLower(strings.TrimSpace(r.Author))
		if author == "" {
			continue
		}
		switch r.State {
		case StateApproved, StateChangesRequested, StateDismissed:
			state[author] = r.State
		}
	}
	return state
}

// Approved reports whether the identity's standing state is an
// approval. Identities that never reviewed, or whose approval was
// dismissed or superseded, report false.
func (a ApprovalState) Approved(identity string) bool {
	return a[strings.ToLower(identity)] == StateApproved
}

// Approvers returns the sorted identities whose standing state is an
// approval.
func (a ApprovalState) Approvers() []string {
	approvers := make([]string, 0, len(a))
	for identity, state := range a {
		if state == StateApproved {
			approvers = append(approvers, identity)
		}
	}
	sort.Strings(approvers)
	return approvers
}
