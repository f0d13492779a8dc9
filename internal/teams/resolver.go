// Package teams resolves GitHub team owners into their member logins.
package teams

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/go-github/v81/github"
	"golang.org/x/sync/singleflight"

	"ownergate/internal/fetch"
	gh "ownergate/internal/github"
)

// Resolver expands an organization team into member logins.
type Resolver interface {
	Members(ctx context.Context, org, slug string) ([]string, error)
}

// ResolutionError wraps a failed membership lookup with the team it
// was for. Any resolution failure means membership cannot be verified,
// and the check fails closed rather than waving the file through.
type ResolutionError struct {
	Org  string
	Slug string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve team @%s/%s: %v", e.Org, e.Slug, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// GitHubResolver lists team members through the REST API.
type GitHubResolver struct {
	client *gh.Client
	budget *fetch.RequestBudget
}

func NewGitHubResolver(client *gh.Client, budget *fetch.RequestBudget) *GitHubResolver {
	return &GitHubResolver{client: client, budget: budget}
}

// Members returns the team's members, lowercased and sorted. A missing
// team and a token without org scope both surface as ResolutionError;
// the distinction changes the message, not the policy.
func (r *GitHubResolver) Members(ctx context.Context, org, slug string) ([]string, error) {
	var members []string
	opts := &github.TeamListTeamMembersOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		if err := r.budget.Acquire(ctx, 1); err != nil {
			return nil, &ResolutionError{Org: org, Slug: slug, Err: err}
		}
		page, resp, err := r.client.Client.Teams.ListTeamMembersBySlug(ctx, org, slug, opts)
		if resp != nil {
			r.budget.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			return nil, &ResolutionError{Org: org, Slug: slug, Err: err}
		}
		for _, m := range page {
			if login := m.GetLogin(); login != "" {
				members = append(members, strings.ToLower(login))
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	sort.Strings(members)
	return members, nil
}

// Cached memoizes another resolver for the duration of a run. Errors
// are cached like successes: each team is fetched at most once, and a
// team that failed stays failed for every file that names it.
type Cached struct {
	inner Resolver
	group singleflight.Group

	mu      sync.Mutex
	members map[string][]string
	failed  map[string]error
}

func NewCached(inner Resolver) *Cached {
	return &Cached{
		inner:   inner,
		members: make(map[string][]string),
		failed:  make(map[string]error),
	}
}

func (c *Cached) Members(ctx context.Context, org, slug string) ([]string, error) {
	key := strings.ToLower(org + "/" + slug)

	c.mu.Lock()
	if members, ok := c.members[key]; ok {
		c.mu.Unlock()
		return members, nil
	}
	if err, ok := c.failed[key]; ok {
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		members, err := c.inner.Members(ctx, org, slug)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.failed[key] = err
			return nil, err
		}
		c.members[key] = members
		return members, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
