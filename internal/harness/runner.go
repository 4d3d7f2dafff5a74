package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mcpcheck/internal/extract"
	"mcpcheck/internal/protocol"
	"mcpcheck/internal/wire"
	"mcpcheck/pkg/logging"
)

// toolResponseID is the request id of the first tool call in a session; the
// handshake always takes id 1.
const toolResponseID = 2

// ErrSkip is returned by a Prepare func to skip a case at execution time,
// typically because a value it depends on was never discovered. Wrap it to
// attach the reason shown in the report.
var ErrSkip = errors.New("skip")

// Caller runs one handshake-plus-requests sequence against a fresh server
// session and returns its transcript.
type Caller interface {
	Call(ctx context.Context, requests []wire.Request, settle time.Duration) (protocol.Transcript, error)
}

// Reporter receives run events as they happen.
type Reporter interface {
	SuiteStart(sections int)
	SectionStart(name string)
	CaseDone(result CaseResult)
	Summary(result RunResult, store *Store)
}

// Runner executes sections of cases sequentially, one server session per
// case. All counters live on the result; a Runner carries no run state of
// its own and may be reused.
type Runner struct {
	Caller   Caller
	Reporter Reporter
	// DefaultSettle is the pause before draining when a case does not set
	// its own.
	DefaultSettle time.Duration
	// FailFast stops the run at the first failed case.
	FailFast bool
}

// Run executes every case in order and reports as it goes. The store is
// shared across cases so discovered ids flow forward.
func (r *Runner) Run(ctx context.Context, sections []Section, store *Store) RunResult {
	start := time.Now()
	var result RunResult

	r.Reporter.SuiteStart(len(sections))

sections:
	for _, section := range sections {
		r.Reporter.SectionStart(section.Name)
		for _, c := range section.Cases {
			caseResult := r.RunCase(ctx, c, store)
			result.Results = append(result.Results, caseResult)
			switch caseResult.Outcome {
			case OutcomePassed:
				result.Passed++
			case OutcomeFailed:
				result.Failed++
			case OutcomeSkipped:
				result.Skipped++
			}
			r.Reporter.CaseDone(caseResult)

			if r.FailFast && caseResult.Outcome == OutcomeFailed {
				break sections
			}
			if ctx.Err() != nil {
				break sections
			}
		}
	}

	result.Duration = time.Since(start)
	r.Reporter.Summary(result, store)
	return result
}

// RunCase executes a single case. Skipped cases never touch the caller.
func (r *Runner) RunCase(ctx context.Context, c Case, store *Store) CaseResult {
	if c.SkipReason != "" {
		return CaseResult{Name: c.Name, Outcome: OutcomeSkipped, Detail: c.SkipReason}
	}

	for _, need := range c.Needs {
		if _, ok := store.Get(need); !ok {
			logging.Warn("Runner", "Case %q reads %q, which no earlier case has stored", c.Name, need)
		}
	}

	start := time.Now()
	requests := c.Requests
	if c.Prepare != nil {
		var err error
		requests, err = c.Prepare(store)
		if errors.Is(err, ErrSkip) {
			return CaseResult{Name: c.Name, Outcome: OutcomeSkipped, Detail: skipDetail(err)}
		}
		if err != nil {
			return CaseResult{
				Name:     c.Name,
				Outcome:  OutcomeFailed,
				Detail:   fmt.Sprintf("preparing requests: %v", err),
				Duration: time.Since(start),
			}
		}
	}

	settle := c.Settle
	if settle == 0 {
		settle = r.DefaultSettle
	}

	transcript, err := r.Caller.Call(ctx, requests, settle)
	result := CaseResult{
		Name:   c.Name,
		Stdout: transcript.Stdout,
		Stderr: transcript.Stderr,
	}
	if err != nil {
		if c.ExpectError {
			// A dead transport is an error response as far as negative
			// cases are concerned.
			result.Outcome = OutcomePassed
		} else {
			result.Outcome = OutcomeFailed
			result.Detail = fmt.Sprintf("session: %v", err)
		}
		result.Duration = time.Since(start)
		return result
	}

	result.Outcome, result.Detail = r.judge(c, transcript.Stdout, store)
	result.Duration = time.Since(start)
	return result
}

// judge applies the outcome rules to a completed transcript and performs
// discovery on success.
func (r *Runner) judge(c Case, stdout string, store *Store) (Outcome, string) {
	lookup := extract.FindResponse(stdout, toolResponseID)

	if c.ExpectError {
		if !lookup.Found {
			return OutcomeFailed, "expected error but got no response"
		}
		if !lookup.IsError {
			return OutcomeFailed, "expected error but got success: " + lookup.Excerpt
		}
		return OutcomePassed, ""
	}

	// Discovery happens on any non-error response, before the verdict.
	if lookup.Found && !lookup.IsError {
		if c.ExtractKey != "" {
			extraction := extract.Discover(stdout)
			if id, ok := extraction.DiscoveredID(); ok {
				logging.Debug("Runner", "Case %q stored %s=%v", c.Name, c.ExtractKey, id)
				store.Set(c.ExtractKey, id)
			} else {
				logging.Debug("Runner", "Case %q found no id to store under %s", c.Name, c.ExtractKey)
			}
		}
		if c.InvalidateKey != "" {
			logging.Debug("Runner", "Case %q invalidated %s", c.Name, c.InvalidateKey)
			store.Delete(c.InvalidateKey)
		}
	}

	// A supplied check owns the verdict. It sees the raw transcript, so it
	// can judge methods whose responses the extractor does not unwrap.
	if c.Check != nil {
		if err := c.Check(stdout); err != nil {
			return OutcomeFailed, "check: " + err.Error()
		}
		return OutcomePassed, ""
	}

	if !lookup.Found {
		return OutcomeFailed, "no response for request"
	}
	if lookup.IsError {
		if lookup.Err != nil {
			return OutcomeFailed, lookup.Err.Error()
		}
		return OutcomeFailed, "server returned error: " + lookup.Excerpt
	}

	return OutcomePassed, ""
}

// skipDetail strips the sentinel prefix so the report shows only the reason.
func skipDetail(err error) string {
	detail := err.Error()
	if trimmed, ok := strings.CutPrefix(detail, ErrSkip.Error()+": "); ok {
		return trimmed
	}
	return detail
}

// ApplyOverrides rewrites cases in place from name-keyed overrides, letting a
// config file skip flaky cases or stretch settle times without a rebuild.
func ApplyOverrides(sections []Section, overrides map[string]CaseOverride) {
	for si := range sections {
		for ci := range sections[si].Cases {
			c := &sections[si].Cases[ci]
			o, ok := overrides[c.Name]
			if !ok {
				continue
			}
			if o.Skip {
				reason := o.SkipReason
				if reason == "" {
					reason = "skipped by configuration"
				}
				c.SkipReason = reason
			}
			if o.Settle > 0 {
				c.Settle = o.Settle
			}
		}
	}
}

// CaseOverride is the per-case knob set exposed to configuration files.
type CaseOverride struct {
	Skip       bool          `yaml:"skip"`
	SkipReason string        `yaml:"skip_reason"`
	Settle     time.Duration `yaml:"settle"`
}

// FilterSections keeps only sections whose name matches one of the given
// names. An empty filter keeps everything.
func FilterSections(sections []Section, names []string) []Section {
	if len(names) == 0 {
		return sections
	}
	keep := make([]Section, 0, len(sections))
	for _, s := range sections {
		for _, n := range names {
			if strings.EqualFold(s.Name, n) {
				keep = append(keep, s)
				break
			}
		}
	}
	return keep
}
