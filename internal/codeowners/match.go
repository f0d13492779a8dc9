package codeowners

import (
	"errors"
	"regexp"
	"strings"
)

// compilePattern translates a CODEOWNERS path pattern into an anchored
// regular expression over slash-separated repository paths.
//
// The pattern grammar is the gitignore grammar with GitHub's documented
// deviations: negation and character classes are not supported, and a
// trailing "/*" matches direct children only. A pattern containing no
// slash (or only a trailing one) matches its basename at any depth; a
// non-terminal slash anchors the pattern to the repository root.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	switch {
	case pattern == "":
		return nil, errors.New("empty pattern")
	case strings.HasPrefix(pattern, "!"):
		return nil, errors.New("negation patterns are not supported")
	case strings.ContainsAny(pattern, "[]"):
		return nil, errors.New("character classes are not supported")
	case strings.Contains(pattern, "***"):
		return nil, errors.New("more than two consecutive asterisks")
	case pattern == "/":
		// A lone slash names the root directory itself and matches no file.
		return regexp.Compile(`\A\z`)
	}

	segs := strings.Split(pattern, "/")
	if segs[0] == "" {
		// Leading slash anchors to the repository root; it is not a segment.
		segs = segs[1:]
	} else if len(segs) == 1 || (len(segs) == 2 && segs[1] == "") {
		// No non-terminal slash: the pattern floats, as if prefixed "**/".
		if segs[0] != "**" {
			segs = append([]string{"**"}, segs...)
		}
	}
	if len(segs) > 1 && segs[len(segs)-1] == "" {
		// Trailing slash: a directory and everything beneath it.
		segs[len(segs)-1] = "**"
	}
	// Collapse runs of ** so "docs/**/" does not compile to a
	// double-slash expression that can never match.
	compact := segs[:0]
	for _, seg := range segs {
		if seg == "**" && len(compact) > 0 && compact[len(compact)-1] == "**" {
			continue
		}
		compact = append(compact, seg)
	}
	segs = compact

	last := len(segs) - 1
	var re strings.Builder
	re.WriteString(`\A`)
	needSlash := false
	for i, seg := range segs {
		switch seg {
		case "**":
			switch {
			case i == 0 && i == last:
				re.WriteString(`.+`)
			case i == 0:
				re.WriteString(`(?:.+/)?`)
			case i == last:
				re.WriteString(`/.*`)
			default:
				re.WriteString(`(?:/.+)?`)
				needSlash = true
			}
		case "*":
			if needSlash {
				re.WriteString(`/`)
			}
			// A bare * consumes exactly one segment with no descendant
			// suffix, so "docs/*" matches direct children only.
			re.WriteString(`[^/]+`)
			needSlash = true
		default:
			if needSlash {
				re.WriteString(`/`)
			}
			if err := writeSegment(&re, seg); err != nil {
				return nil, err
			}
			if i == last {
				// A matched directory owns its descendants even without a
				// trailing slash.
				re.WriteString(`(?:/.*)?`)
			}
			needSlash = true
		}
	}
	re.WriteString(`\z`)
	return regexp.Compile(re.String())
}

// writeSegment appends the regular expression for one literal pattern
// segment. Within a segment, * matches any run of non-separator
// characters, ? matches exactly one, and backslash escapes the next
// character.
func writeSegment(re *strings.Builder, seg string) error {
	escaped := false
	for _, ch := range seg {
		if escaped {
			re.WriteString(regexp.QuoteMeta(string(ch)))
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '*':
			re.WriteString(`[^/]*`)
		case '?':
			re.WriteString(`[^/]`)
		default:
			re.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	if escaped {
		return errors.New("pattern ends with a dangling escape")
	}
	return nil
}
