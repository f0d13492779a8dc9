package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v81/github"

	gh "ownergate/internal/github"
	"ownergate/internal/review"
)

// codeownersLocations are the places GitHub looks for a CODEOWNERS
// file, in precedence order. Only the first hit is used.
var codeownersLocations = []string{
	".github/CODEOWNERS",
	"docs/CODEOWNERS",
	"CODEOWNERS",
}

// GitHubSource reads check inputs from the GitHub REST API. All calls
// pass through a shared RequestBudget so concurrent fetches respect
// the rate limit together.
type GitHubSource struct {
	client *gh.Client
	budget *RequestBudget
	owner  string
	repo   string
	number int
}

func NewGitHubSource(client *gh.Client, budget *RequestBudget, owner, repo string, number int) *GitHubSource {
	return &GitHubSource{
		client: client,
		budget: budget,
		owner:  owner,
		repo:   repo,
		number: number,
	}
}

// CodeownersText probes the recognized locations on the default branch
// and returns the first CODEOWNERS file found.
func (s *GitHubSource) CodeownersText(ctx context.Context) (string, string, error) {
	for _, loc := range codeownersLocations {
		if err := s.budget.Acquire(ctx, 1); err != nil {
			return "", "", err
		}
		file, _, resp, err := s.client.Client.Repositories.GetContents(ctx, s.owner, s.repo, loc, nil)
		if resp != nil {
			s.budget.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				continue
			}
			return "", "", fmt.Errorf("get %s: %w", loc, err)
		}
		if file == nil {
			// The path resolved to a directory, which cannot be a
			// CODEOWNERS file.
			continue
		}
		text, err := file.GetContent()
		if err != nil {
			return "", "", fmt.Errorf("decode %s: %w", loc, err)
		}
		return text, loc, nil
	}
	return "", "", ErrNotFound
}

// ChangedFiles pages through the pull request's file list.
func (s *GitHubSource) ChangedFiles(ctx context.Context) ([]FileChange, error) {
	var changes []FileChange
	opts := &github.ListOptions{PerPage: 100}
	for {
		if err := s.budget.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		files, resp, err := s.client.Client.PullRequests.ListFiles(ctx, s.owner, s.repo, s.number, opts)
		if resp != nil {
			s.budget.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			return nil, fmt.Errorf("list changed files: %w", err)
		}
		for _, f := range files {
			if path := f.GetFilename(); path != "" {
				changes = append(changes, FileChange{Path: path})
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return changes, nil
}

// Reviews pages through the pull request's review timeline. Reviews by
// deleted accounts carry no login and are dropped here; they could
// never satisfy an owner requirement.
func (s *GitHubSource) Reviews(ctx context.Context) ([]review.Review, error) {
	var reviews []review.Review
	opts := &github.ListOptions{PerPage: 100}
	for {
		if err := s.budget.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		page, resp, err := s.client.Client.PullRequests.ListReviews(ctx, s.owner, s.repo, s.number, opts)
		if resp != nil {
			s.budget.UpdateFromResponse(resp.Response)
		}
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		for _, r := range page {
			login := r.GetUser().GetLogin()
			if login == "" {
				continue
			}
			reviews = append(reviews, review.Review{
				Author:      login,
				State:       review.State(r.GetState()),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}
