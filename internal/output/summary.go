package output

import "ownergate/internal/policy"

// Summary is the terminal record of a check run. It is written to the
// sinks exactly once, after every file verdict, and carries the full
// verdict so aggregate sinks can render without buffering on their own.
type Summary struct {
	Repo string `json:"repo"`
	PR   int    `json:"pr"`
	policy.Verdict
	ExitCode int `json:"exit_code"`
}
