package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect
	// check behavior, keep these in sync:
	// - CLI flags in internal/cli/check.go
	// - GitHub Actions environment mapping in actions.go
	Target  Target
	Auth    Auth
	Policy  Policy
	Output  Output
	Runtime Runtime

	// InActions records that the GitHub Actions environment was
	// detected. Set by ApplyActionsEnv, never by a flag.
	InActions bool
}

type Target struct {
	// Repo selects the repository as OWNER/REPO or a github.com URL
	// (see --repo). A pull request URL also carries the PR number.
	Repo string

	// PR is the pull request number to check (see --pr). An explicit
	// value wins over one embedded in the --repo URL.
	PR int

	// Owner and Name are derived from Repo during Validate.
	Owner string
	Name  string
}

type Auth struct {
	// Token authenticates API calls (see --token). Empty falls back to
	// GITHUB_TOKEN and then to the gh CLI.
	Token string

	// AppID, AppInstallationID and AppPrivateKey authenticate as a
	// GitHub App installation instead of a token (see --app-id,
	// --app-installation-id, --app-private-key). All three go together.
	AppID             int64
	AppInstallationID int64
	AppPrivateKey     string
}

type Policy struct {
	// Ignore drops changed files matching these globs before ownership
	// resolution (see --ignore). Doublestar syntax; values may be
	// repeated flags and/or comma-separated lists.
	Ignore []string
}

type Output struct {
	// Format controls the console sink format (see --format).
	// Allowed values: text, json.
	Format string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes the JSON verdict document to this path (see --out).
	Out string

	// Annotations emits GitHub Actions workflow commands on stdout
	// (see --annotations). Turned on automatically under Actions unless
	// the flag says otherwise.
	Annotations bool

	// NoConsole suppresses the console sink (see --no-console).
	// Use with --out/--report/--annotations for machine consumption.
	NoConsole bool

	// ShowUnowned lists unowned files in text console output
	// (see --show-unowned). JSON output always includes them.
	ShowUnowned bool
}

type Runtime struct {
	// Concurrency bounds parallel team membership lookups
	// (see --concurrency). Must be >= 1.
	Concurrency int

	// Timeout is the global deadline for the run (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose enables debug logging, including one line per API
	// request (see --verbose).
	Verbose bool
}

func New() *Config {
	return &Config{
		Output: Output{
			Format: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			Timeout:     2 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Policy.Ignore = splitCommaList(c.Policy.Ignore)

	// Target validation
	if strings.TrimSpace(c.Target.Repo) == "" {
		return errors.New("--repo is required")
	}
	owner, name, pr, err := normalizeRepoSelector(c.Target.Repo)
	if err != nil {
		return fmt.Errorf("invalid --repo value: %w", err)
	}
	c.Target.Owner = owner
	c.Target.Name = name
	c.Target.Repo = owner + "/" + name
	if c.Target.PR == 0 {
		c.Target.PR = pr
	}
	if c.Target.PR < 1 {
		return errors.New("--pr must be a positive pull request number")
	}

	// Auth validation
	if c.Auth.AppID < 0 || c.Auth.AppInstallationID < 0 {
		return errors.New("--app-id and --app-installation-id must be positive")
	}
	appFields := 0
	if c.Auth.AppID != 0 {
		appFields++
	}
	if c.Auth.AppInstallationID != 0 {
		appFields++
	}
	if c.Auth.AppPrivateKey != "" {
		appFields++
	}
	if appFields != 0 && appFields != 3 {
		return errors.New("--app-id, --app-installation-id and --app-private-key must be provided together")
	}

	// Policy validation
	for _, pattern := range c.Policy.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid --ignore pattern %q", pattern)
		}
	}

	// Output validation
	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json)", c.Output.Format)
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

// UsesAppAuth reports whether GitHub App credentials are configured.
func (c *Config) UsesAppAuth() bool {
	return c.Auth.AppID != 0 && c.Auth.AppInstallationID != 0 && c.Auth.AppPrivateKey != ""
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// normalizeRepoSelector accepts OWNER/REPO or a GitHub URL like:
//
//	https://github.com/OWNER/REPO
//	github.com/OWNER/REPO
//	https://github.com/OWNER/REPO/pull/123
//
// A pull URL also yields the PR number.
func normalizeRepoSelector(raw string) (owner, name string, pr int, err error) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, parseErr := url.Parse(raw)
		if parseErr != nil {
			return "", "", 0, fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return "", "", 0, fmt.Errorf("%q: only github.com URLs are recognized", raw)
		}
		parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
		if len(parts) < 2 {
			return "", "", 0, fmt.Errorf("%q: expected OWNER/REPO", raw)
		}
		owner, name = parts[0], strings.TrimSuffix(parts[1], ".git")
		if len(parts) >= 4 && parts[2] == "pull" {
			n, convErr := strconv.Atoi(parts[3])
			if convErr != nil || n < 1 {
				return "", "", 0, fmt.Errorf("%q: bad pull request number", raw)
			}
			pr = n
		}
		return owner, name, pr, nil
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("%q: expected OWNER/REPO", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), 0, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
