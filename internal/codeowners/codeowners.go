// Package codeowners parses CODEOWNERS files and resolves which owners
// are responsible for a given repository path.
//
// Matching follows the rules GitHub applies when it assigns reviewers:
// patterns use the gitignore grammar minus negation and character
// classes, and when several rules match a path the last one in the file
// wins, even when it names fewer or no owners.
package codeowners

import (
	"fmt"
	"regexp"
	"strings"
)

// OwnerType discriminates the three owner token forms a CODEOWNERS file
// may contain.
type OwnerType string

const (
	OwnerUser  OwnerType = "user"
	OwnerTeam  OwnerType = "team"
	OwnerEmail OwnerType = "email"
)

// Owner is a single parsed owner token. Value holds the canonical
// lowercase form without the leading @: "alice", "acme/infra" or
// "dev@example.com".
type Owner struct {
	Value string
	Type  OwnerType
}

// String renders the owner the way it appears in a CODEOWNERS file.
func (o Owner) String() string {
	if o.Type == OwnerEmail {
		return o.Value
	}
	return "@" + o.Value
}

// Team splits a team owner into its organization and slug. ok is false
// for user and email owners.
func (o Owner) Team() (org, slug string, ok bool) {
	if o.Type != OwnerTeam {
		return "", "", false
	}
	org, slug, ok = strings.Cut(o.Value, "/")
	return org, slug, ok
}

// Rule is one non-comment line of a CODEOWNERS file. A rule may carry
// zero owners, which marks matching paths as explicitly unowned.
type Rule struct {
	Pattern    string
	Owners     []Owner
	LineNumber int

	re *regexp.Regexp
}

// Match reports whether the rule's pattern matches the given
// repository-relative path.
func (r Rule) Match(path string) bool {
	return r.re != nil && r.re.MatchString(path)
}

// Ruleset is an ordered list of rules, first line first.
type Ruleset []Rule

// Match returns the rule that governs path, or nil when no rule
// matches. Later rules take precedence, so the scan runs backwards and
// stops at the first hit.
func (rs Ruleset) Match(path string) *Rule {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].Match(path) {
			return &rs[i]
		}
	}
	return nil
}

// FileOwners pairs one changed path with the rule that governs it.
// Rule is nil when the path is unowned.
type FileOwners struct {
	Path string
	Rule *Rule
}

// Owners returns the owner list of the governing rule, which is empty
// for unowned paths and for paths matched by an ownerless rule.
func (f FileOwners) Owners() []Owner {
	if f.Rule == nil {
		return nil
	}
	return f.Rule.Owners
}

// Owned reports whether the path has at least one owner to satisfy.
func (f FileOwners) Owned() bool {
	return len(f.Owners()) > 0
}

// ResolveOwners resolves every path against the ruleset, preserving the
// input order.
func (rs Ruleset) ResolveOwners(paths []string) []FileOwners {
	resolved := make([]FileOwners, 0, len(paths))
	for _, p := range paths {
		resolved = append(resolved, FileOwners{Path: p, Rule: rs.Match(p)})
	}
	return resolved
}

// Problem records a CODEOWNERS line the parser had to skip. Parsing is
// deliberately lenient: a bad line never fails the run, it is surfaced
// and ignored, matching how GitHub renders file errors without
// disabling the rest of the file.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}
