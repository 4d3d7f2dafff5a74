// Package harness executes tool-server test cases: one server session per
// case, outcome classification, and a store of values discovered in earlier
// cases for later ones to build on.
package harness

import (
	"time"

	"mcpcheck/internal/wire"
)

// Outcome classifies how a case ended.
type Outcome string

const (
	OutcomePassed  Outcome = "PASSED"
	OutcomeFailed  Outcome = "FAILED"
	OutcomeSkipped Outcome = "SKIPPED"
)

// Case is a single test: a sequence of tool calls against a fresh server
// session, judged by the response to the first call.
type Case struct {
	// Name is the unique identifier shown in reports.
	Name string
	// Requests are sent after the handshake, in order. Ignored when
	// Prepare is set.
	Requests []wire.Request
	// Prepare builds the requests at execution time, with access to the
	// store. Cases that splice in discovered ids use this instead of
	// Requests.
	Prepare func(store *Store) ([]wire.Request, error)
	// Needs names the store keys this case reads. Purely declarative:
	// a missing key is logged, and the case still runs so the real
	// server error surfaces in the report.
	Needs []string
	// ExpectError inverts the verdict: a protocol error is the pass
	// condition, a success response the failure.
	ExpectError bool
	// SkipReason marks the case skipped. A skipped case never spawns a
	// server.
	SkipReason string
	// ExtractKey stores the id discovered in the response under this key.
	ExtractKey string
	// InvalidateKey removes this store key after the case passes. Set on
	// cases that destroy the entity the key points at.
	InvalidateKey string
	// Check inspects the raw session output and, when set, decides the
	// verdict by itself: a nil return passes the case even if error
	// classification would have failed it. Some methods answer in shapes
	// the extractor does not unwrap, so checks see everything the server
	// wrote.
	Check func(raw string) error
	// Settle overrides the runner's default pause before draining.
	// Mutating calls need longer than reads.
	Settle time.Duration
}

// Section groups related cases under one report heading.
type Section struct {
	Name  string
	Cases []Case
}

// CaseResult is the recorded outcome of one case.
type CaseResult struct {
	Name     string
	Outcome  Outcome
	// Detail explains a failure or skip in one line.
	Detail   string
	Duration time.Duration
	// Stdout and Stderr carry the session transcript for verbose output
	// and log dumps. Empty for skipped cases.
	Stdout string
	Stderr string
}

// RunResult aggregates a whole run.
type RunResult struct {
	Results  []CaseResult
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Total is the number of cases that were considered, including skips.
func (r RunResult) Total() int {
	return r.Passed + r.Failed + r.Skipped
}

// ExitCode maps the run outcome to a process exit code.
func (r RunResult) ExitCode() int {
	if r.Failed > 0 {
		return 1
	}
	return 0
}
