package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TokenSource names where a resolved token came from, for verbose
// logging. The token itself is never logged.
type TokenSource string

const (
	TokenSourceFlag TokenSource = "flag"
	TokenSourceEnv  TokenSource = "env:GITHUB_TOKEN"
	TokenSourceCLI  TokenSource = "gh auth token"
	TokenSourceNone TokenSource = "none"
)

// ResolveToken finds a GitHub access token. An explicitly provided
// token wins, then GITHUB_TOKEN, then whatever `gh auth token` yields
// when the gh CLI is installed and logged in. An empty result with a
// nil error means the caller proceeds unauthenticated.
func ResolveToken(ctx context.Context, explicit string) (string, TokenSource, error) {
	if tok := strings.TrimSpace(explicit); tok != "" {
		return tok, TokenSourceFlag, nil
	}
	if tok := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); tok != "" {
		return tok, TokenSourceEnv, nil
	}
	tok, err := tokenFromCLI(ctx)
	if err != nil {
		return "", TokenSourceNone, err
	}
	if tok != "" {
		return tok, TokenSourceCLI, nil
	}
	return "", TokenSourceNone, nil
}

// tokenFromCLI shells out to the gh CLI. A missing gh, or one that is
// not logged in, is not an error; it just means no token.
func tokenFromCLI(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return "", nil
	}

	// Bound the call so a broken credential helper cannot hang the run.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "token", "-h", "github.com")
	// Duplicate env keys resolve to the last entry, so this pins the
	// pager without filtering the inherited environment.
	cmd.Env = append(os.Environ(), "GH_PAGER=cat")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", nil
	}

	tok := strings.TrimSpace(string(out))
	if strings.ContainsAny(tok, " \t\r\n") {
		return "", errors.New("gh returned a token containing whitespace")
	}
	return tok, nil
}
