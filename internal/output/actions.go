package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"ownergate/internal/policy"
)

// ActionsSink renders GitHub Actions workflow commands. Every file short
// of approvals becomes an error annotation on the job; CODEOWNERS parse
// problems and unverifiable teams become warnings.
type ActionsSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewActionsSink(w io.Writer) *ActionsSink {
	if w == nil {
		w = os.Stdout
	}
	return &ActionsSink{writer: w}
}

func (s *ActionsSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t := v.(type) {
	case policy.FileVerdict:
		if len(t.Missing) == 0 {
			return nil
		}
		_, err := fmt.Fprintf(s.writer, "::error::Missing approvals for %s from: %s\n",
			t.Path, strings.Join(t.Missing, ", "))
		return err
	case Summary:
		for _, p := range t.Problems {
			if _, err := fmt.Fprintf(s.writer, "::warning::CODEOWNERS %s\n", p); err != nil {
				return err
			}
		}
		for _, team := range t.UnresolvedTeams {
			if _, err := fmt.Fprintf(s.writer, "::warning::cannot verify team membership: %s\n", team); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (s *ActionsSink) Close() error {
	return nil
}
