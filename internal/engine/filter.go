package engine

import (
	"log/slog"

	"ownergate/internal/fetch"

	"github.com/bmatcuk/doublestar/v4"
)

// filterIgnored drops changed files matching any configured glob before
// ownership resolution, so generated or vendored paths never demand
// approvals. Patterns were validated with the config, so a match error
// here means a bug, not user input.
func filterIgnored(files []fetch.FileChange, ignore []string) []fetch.FileChange {
	if len(ignore) == 0 {
		return files
	}

	kept := make([]fetch.FileChange, 0, len(files))
	for _, f := range files {
		if matchesAnyGlob(ignore, f.Path) {
			slog.Debug("ignoring changed file", "path", f.Path)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func matchesAnyGlob(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
