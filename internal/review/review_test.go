package review

import (
	"testing"
	"time"
)

func at(minute int) time.Time {
	return time.Date(2024, time.March, 1, 10, minute, 0, 0, time.UTC)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		reviews  []Review
		identity string
		want     bool
	}{
		{
			name: "single approval",
			reviews: []Review{
				{Author: "alice", State: StateApproved, SubmittedAt: at(0)},
			},
			identity: "alice",
			want:     true,
		},
		{
			name: "changes requested after approval wins",
			reviews: []Review{
				{Author: "alice", State: StateApproved, SubmittedAt: at(0)},
				{Author: "alice", State: StateChangesRequested, SubmittedAt: at(5)},
			},
			identity: "alice",
			want:     false,
		},
		{
			name: "approval after changes requested wins",
			reviews: []Review{
				{Author: "alice", State: StateChangesRequested, SubmittedAt: at(0)},
				{Author: "alice", State: StateApproved, SubmittedAt: at(5)},
			},
			identity: "alice",
			want:     true,
		},
		{
			name: "comment does not withdraw approval",
			reviews: []Review{
				{Author: "alice", State: StateApproved, SubmittedAt: at(0)},
				{Author: "alice", State: StateCommented, SubmittedAt: at(5)},
			},
			identity: "alice",
			want:     true,
		},
		{
			name: "dismissed approval does not count",
			reviews: []Review{
				{Author: "alice", State: StateApproved, SubmittedAt: at(0)},
				{Author: "alice", State: StateDismissed, SubmittedAt: at(5)},
			},
			identity: "alice",
			want:     false,
		},
		{
			name: "pending review is ignored",
			reviews: []Review{
				{Author: "alice", State: StatePending, SubmittedAt: at(0)},
			},
			identity: "alice",
			want:     false,
		},
		{
			name: "out of order input is replayed by time",
			reviews: []Review{
				{Author: "alice", State: StateApproved, SubmittedAt: at(5)},
				{Author: "alice", State: StateChangesRequested, SubmittedAt: at(0)},
			},
			identity: "alice",
			want:     true,
		},
		{
			name: "author matching is case insensitive",
			reviews: []Review{
				{Author: "Alice", State: StateApproved, SubmittedAt: at(0)},
			},
			identity: "ALICE",
			want:     true,
		},
		{
			name:     "unknown identity",
			reviews:  nil,
			identity: "ghost",
			want:     false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(tc.reviews).Approved(tc.identity)
			if got != tc.want {
				t.Errorf("Approved(%q) = %v, want %v", tc.identity, got, tc.want)
			}
		})
	}
}

func TestAggregateTracksAuthorsIndependently(t *testing.T) {
	state := Aggregate([]Review{
		{Author: "alice", State: StateApproved, SubmittedAt: at(0)},
		{Author: "bob", State: StateChangesRequested, SubmittedAt: at(1)},
		{Author: "carol", State: StateCommented, SubmittedAt: at(2)},
	})
	if !state.Approved("alice") {
		t.Error("alice should be approved")
	}
	if state.Approved("bob") {
		t.Error("bob should not be approved")
	}
	if state.Approved("carol") {
		t.Error("carol should not be approved")
	}
	if _, ok := state["carol"]; ok {
		t.Error("comment-only reviewer should have no standing state")
	}
}

func TestAggregateSkipsEmptyAuthors(t *testing.T) {
	state := Aggregate([]Review{
		{Author: "", State: StateApproved, SubmittedAt: at(0)},
	})
	if len(state) != 0 {
		t.Errorf("expected empty state, got %v", state)
	}
}

func TestApprovers(t *testing.T) {
	state := Aggregate([]Review{
		{Author: "bob", State: StateApproved, SubmittedAt: at(0)},
		{Author: "alice", State: StateApproved, SubmittedAt: at(1)},
		{Author: "carol", State: StateChangesRequested, SubmittedAt: at(2)},
	})
	got := state.Approvers()
	want := []string{"alice", "bob"}
	if len(got) != len(want) {
		t.Fatalf("Approvers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Approvers() = %v, want %v", got, want)
		}
	}
}
