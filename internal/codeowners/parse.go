package codeowners

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	userPattern  = regexp.MustCompile(`\A@([a-zA-Z0-9\-_]+)\z`)
	teamPattern  = regexp.MustCompile(`\A@([a-zA-Z0-9\-]+)/([a-zA-Z0-9_.\-]+)\z`)
	emailPattern = regexp.MustCompile(`\A[A-Z0-9a-z._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,6}\z`)
)

// Parse reads CODEOWNERS text into a Ruleset. Lines that cannot be
// honored are reported as Problems and skipped; Parse itself never
// fails, so one typo cannot take the whole policy down.
func Parse(content string) (Ruleset, []Problem) {
	var (
		rules    Ruleset
		problems []Problem
	)
	for no, raw := range strings.Split(content, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		line = strings.TrimSpace(cutComment(line))
		if line == "" {
			continue
		}
		lineNumber := no + 1

		pattern, rest := splitPattern(line)
		re, err := compilePattern(pattern)
		if err != nil {
			problems = append(problems, Problem{
				Line:    lineNumber,
				Message: fmt.Sprintf("invalid pattern %q: %v", pattern, err),
			})
			continue
		}

		fields := strings.Fields(rest)
		owners := make([]Owner, 0, len(fields))
		for _, tok := range fields {
			owner, err := parseOwner(tok)
			if err != nil {
				problems = append(problems, Problem{
					Line:    lineNumber,
					Message: fmt.Sprintf("invalid owner %q", tok),
				})
				continue
			}
			owners = append(owners, owner)
		}
		if len(owners) == 0 && len(fields) > 0 {
			// Every owner token was rejected. Dropping the rule is safer
			// than letting a typo turn the pattern into an unowned
			// override of earlier rules.
			continue
		}

		rules = append(rules, Rule{
			Pattern:    pattern,
			Owners:     owners,
			LineNumber: lineNumber,
			re:         re,
		})
	}
	return rules, problems
}

// cutComment strips everything from the first unescaped # to the end of
// the line.
func cutComment(line string) string {
	escaped := false
	for i, ch := range line {
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '#':
			return line[:i]
		}
	}
	return line
}

// splitPattern cuts the line at the first unescaped whitespace, leaving
// backslash escapes in place for the pattern compiler to interpret.
func splitPattern(line string) (pattern, rest string) {
	escaped := false
	for i, ch := range line {
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case ' ', '\t':
			return line[:i], line[i:]
		}
	}
	return line, ""
}

// parseOwner classifies a single owner token. Handles and team slugs
// are lowercased so later comparisons can be exact, matching GitHub's
// case-insensitive treatment of logins.
func parseOwner(token string) (Owner, error) {
	switch {
	case teamPattern.MatchString(token):
		return Owner{Value: strings.ToLower(token[1:]), Type: OwnerTeam}, nil
	case userPattern.MatchString(token):
		return Owner{Value: strings.ToLower(token[1:]), Type: OwnerUser}, nil
	case emailPattern.MatchString(token):
		return Owner{Value: strings.ToLower(token), Type: OwnerEmail}, nil
	}
	return Owner{}, fmt.Errorf("unrecognized owner token %q", token)
}
