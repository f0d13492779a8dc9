package output

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"ownergate/internal/policy"
)

// ReportSink collects the run and renders a Markdown report on Close,
// suitable for a job summary or a PR comment body.
type ReportSink struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	files   []policy.FileVerdict
	summary *Summary
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path: path,
		file: f,
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case policy.FileVerdict:
		s.files = append(s.files, t)
	case Summary:
		s.summary = &t
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeErr := func(err error) error {
		_ = s.file.Close()
		return err
	}

	sum := s.summary
	if sum == nil {
		// Run ended before a verdict; report whatever file lines arrived.
		sum = &Summary{}
		sum.Files = s.files
	}

	var b strings.Builder
	b.WriteString("# Code owner approval report\n\n")

	if sum.Repo != "" {
		b.WriteString(fmt.Sprintf("**Pull request:** %s#%d\n\n", sum.Repo, sum.PR))
	}

	pass, fail, errs, unowned := sum.Counts()
	switch {
	case sum.Overall:
		b.WriteString("**Verdict:** ✅ approved - every code owner has approved\n\n")
	case errs > 0:
		b.WriteString("**Verdict:** ❌ not approved - team membership could not be verified\n\n")
	default:
		b.WriteString("**Verdict:** ❌ not approved - required approvals are missing\n\n")
	}

	b.WriteString("| Files | Approved | Missing approvals | Unverifiable | Unowned |\n")
	b.WriteString("| ---: | ---: | ---: | ---: | ---: |\n")
	b.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d |\n\n",
		len(sum.Files), pass, fail, errs, unowned))

	// --- Files needing approval ---
	b.WriteString("## Files needing approval\n\n")
	var blocked []policy.FileVerdict
	for _, f := range sum.Files {
		if f.Status == policy.StatusFail || f.Status == policy.StatusError {
			blocked = append(blocked, f)
		}
	}
	if len(blocked) == 0 {
		b.WriteString("- None\n\n")
	} else {
		b.WriteString("| File | Rule | Missing | Notes |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, f := range blocked {
			rule := ""
			if f.Pattern != "" {
				rule = fmt.Sprintf("`%s` (line %d)", f.Pattern, f.Line)
			}
			b.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n",
				f.Path, rule, strings.Join(f.Missing, ", "), f.Message))
		}
		b.WriteString("\n")
	}

	// --- Unverifiable teams ---
	b.WriteString("## Unverifiable teams\n\n")
	if len(sum.UnresolvedTeams) == 0 {
		b.WriteString("- None\n\n")
	} else {
		for _, team := range sum.UnresolvedTeams {
			b.WriteString(fmt.Sprintf("- %s\n", team))
		}
		b.WriteString("\nMembership lookups failed for the teams above, so their files fail closed.\n\n")
	}

	// --- CODEOWNERS problems ---
	b.WriteString("## CODEOWNERS problems\n\n")
	if len(sum.Problems) == 0 {
		b.WriteString("- None\n\n")
	} else {
		for _, p := range sum.Problems {
			b.WriteString(fmt.Sprintf("- %s\n", p))
		}
		b.WriteString("\n")
	}

	// --- Unowned files ---
	if unowned > 0 {
		b.WriteString("## Unowned files\n\n")
		b.WriteString("These files match no CODEOWNERS rule with owners and never block the verdict.\n\n")
		for _, f := range sum.Files {
			if f.Status == policy.StatusUnowned {
				b.WriteString(fmt.Sprintf("- `%s`\n", f.Path))
			}
		}
		b.WriteString("\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		return writeErr(err)
	}
	return s.file.Close()
}
