// Package policy decides whether a pull request satisfies strict code
// owner approval: every changed file needs a standing approval from
// every one of its owners, not merely one of them.
package policy

type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusError   Status = "ERROR"
	StatusUnowned Status = "UNOWNED"
)

// FileVerdict is the decision for a single changed file.
type FileVerdict struct {
	Path     string   `json:"path"`
	Status   Status   `json:"status"`
	Pattern  string   `json:"pattern,omitempty"`
	Line     int      `json:"line,omitempty"`
	Required []string `json:"required,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Verdict is the decision for the whole pull request. Overall is true
// only when every owned file has all of its approvals; unowned files
// carry no requirement and never block.
type Verdict struct {
	Overall         bool          `json:"approved"`
	Files           []FileVerdict `json:"files"`
	UnresolvedTeams []string      `json:"unresolved_teams,omitempty"`
	Problems        []string      `json:"codeowners_problems,omitempty"`
}

// Counts tallies file verdicts by status.
func (v Verdict) Counts() (pass, fail, errs, unowned int) {
	for _, f := range v.Files {
		switch f.Status {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		case StatusError:
			errs++
		case StatusUnowned:
			unowned++
		}
	}
	return pass, fail, errs, unowned
}

// HasErrors reports whether any file's owners could not be verified.
func (v Verdict) HasErrors() bool {
	for _, f := range v.Files {
		if f.Status == StatusError {
			return true
		}
	}
	return false
}

// HasFailures reports whether any file is short of approvals.
func (v Verdict) HasFailures() bool {
	for _, f := range v.Files {
		if f.Status == StatusFail {
			return true
		}
	}
	return false
}
