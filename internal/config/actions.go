package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// actionsEnv mirrors the variables GitHub Actions exports to every
// workflow step.
type actionsEnv struct {
	Actions    bool   `env:"GITHUB_ACTIONS"`
	Repository string `env:"GITHUB_REPOSITORY"`
	Ref        string `env:"GITHUB_REF"`
}

// ApplyActionsEnv fills unset target fields from the GitHub Actions
// environment, so a pull_request workflow step can run with no flags
// at all. Explicit flags always win. Outside Actions this is a no-op.
func (c *Config) ApplyActionsEnv() error {
	var e actionsEnv
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("read actions environment: %w", err)
	}
	if !e.Actions {
		return nil
	}
	c.InActions = true

	if strings.TrimSpace(c.Target.Repo) == "" {
		c.Target.Repo = e.Repository
	}
	if c.Target.PR == 0 {
		if n, ok := prNumberFromRef(e.Ref); ok {
			c.Target.PR = n
		}
	}
	return nil
}

// prNumberFromRef extracts N from a "refs/pull/N/merge" ref. Branch
// and tag refs yield no number.
func prNumberFromRef(ref string) (int, bool) {
	rest, ok := strings.CutPrefix(ref, "refs/pull/")
	if !ok {
		return 0, false
	}
	numStr, _, _ := strings.Cut(rest, "/")
	n, err := strconv.Atoi(numStr)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
