package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"ownergate/internal/policy"

	"github.com/fatih/color"
)

type ConsoleSink struct {
	writer      io.Writer
	format      string // "text" or "json"
	showUnowned bool
	mu          sync.Mutex
	summary     *Summary // for JSON document output
}

func NewConsoleSink(w io.Writer, format string, showUnowned bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer:      w,
		format:      format,
		showUnowned: showUnowned,
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		sum, ok := v.(Summary)
		if !ok {
			// Per-file verdicts already travel inside the summary document.
			return nil
		}
		s.summary = &sum
		return nil
	case "text":
		switch t := v.(type) {
		case policy.FileVerdict:
			return s.writeVerdict(t)
		case Summary:
			return s.writeSummary(t)
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeVerdict(v policy.FileVerdict) error {
	if v.Status == policy.StatusUnowned && !s.showUnowned {
		return nil
	}
	if _, err := statusColor(v.Status).Fprintf(s.writer, "[%s]", v.Status); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, " %s", v.Path); err != nil {
		return err
	}
	if detail := verdictDetail(v); detail != "" {
		if _, err := fmt.Fprintf(s.writer, " - %s", detail); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(s.writer); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) writeSummary(sum Summary) error {
	printf := func(format string, args ...any) error {
		_, err := fmt.Fprintf(s.writer, format, args...)
		return err
	}

	if err := printf("\n"); err != nil {
		return err
	}
	if len(sum.Problems) > 0 {
		if err := printf("CODEOWNERS problems:\n"); err != nil {
			return err
		}
		for _, p := range sum.Problems {
			if err := printf("  %s\n", p); err != nil {
				return err
			}
		}
		if err := printf("\n"); err != nil {
			return err
		}
	}

	pass, fail, errs, unowned := sum.Counts()
	if err := printf("%d files checked: %d approved, %d missing approvals, %d unverifiable, %d unowned\n",
		len(sum.Files), pass, fail, errs, unowned); err != nil {
		return err
	}

	var err error
	switch {
	case sum.Overall:
		_, err = color.New(color.FgGreen).Fprintln(s.writer, "All code owners have approved this pull request.")
	case errs > 0:
		_, err = color.New(color.FgYellow).Fprintln(s.writer, "Could not verify every code owner; the pull request is not approved.")
	default:
		_, err = color.New(color.FgRed).Fprintln(s.writer, "Missing required approvals.")
	}
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		if s.summary == nil {
			return nil
		}
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.summary); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		return nil
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

// verdictDetail picks the one detail segment a console line carries. The
// missing list is the product; the message only wins when the list could
// not be computed.
func verdictDetail(v policy.FileVerdict) string {
	if v.Status == policy.StatusError {
		return v.Message
	}
	if len(v.Missing) > 0 {
		return "missing: " + strings.Join(v.Missing, ", ")
	}
	return v.Message
}

func statusColor(st policy.Status) *color.Color {
	switch st {
	case policy.StatusPass:
		return color.New(color.FgGreen)
	case policy.StatusFail:
		return color.New(color.FgRed)
	case policy.StatusError:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Faint)
	}
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}
