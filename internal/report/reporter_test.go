package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mcpcheck/internal/harness"
)

func TestCaseDoneGlyphs(t *testing.T) {
	tests := []struct {
		name  string
		res   harness.CaseResult
		wants []string
	}{
		{
			name:  "passed",
			res:   harness.CaseResult{Name: "list-users", Outcome: harness.OutcomePassed, Duration: 120 * time.Millisecond},
			wants: []string{"✓", "list-users", "120ms"},
		},
		{
			name:  "failed with detail",
			res:   harness.CaseResult{Name: "get-user", Outcome: harness.OutcomeFailed, Detail: "no response for request"},
			wants: []string{"✗", "get-user", "no response for request"},
		},
		{
			name:  "skipped with reason",
			res:   harness.CaseResult{Name: "create-user", Outcome: harness.OutcomeSkipped, Detail: "mutates tenant"},
			wants: []string{"○", "create-user", "mutates tenant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsole(&buf, false, false).CaseDone(tt.res)
			for _, want := range tt.wants {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestSkippedCaseShowsNoDuration(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false, false).CaseDone(harness.CaseResult{
		Name: "create-user", Outcome: harness.OutcomeSkipped, Detail: "mutates tenant",
	})
	assert.NotContains(t, buf.String(), "0s")
}

func TestVerboseDumpsStdoutOnFailure(t *testing.T) {
	res := harness.CaseResult{
		Name:    "get-user",
		Outcome: harness.OutcomeFailed,
		Detail:  "server returned error",
		Stdout:  "{\"jsonrpc\":\"2.0\",\"id\":2,\"error\":{}}\n",
	}

	var quiet bytes.Buffer
	NewConsole(&quiet, false, false).CaseDone(res)
	assert.NotContains(t, quiet.String(), "jsonrpc")

	var verbose bytes.Buffer
	NewConsole(&verbose, true, false).CaseDone(res)
	assert.Contains(t, verbose.String(), "jsonrpc")
	assert.Contains(t, verbose.String(), "stdout")
}

func TestShowLogsDumpsStderr(t *testing.T) {
	res := harness.CaseResult{
		Name:    "list-users",
		Outcome: harness.OutcomePassed,
		Stderr:  "INFO connecting to api.onelogin.com\n",
	}

	var buf bytes.Buffer
	NewConsole(&buf, false, true).CaseDone(res)
	assert.Contains(t, buf.String(), "api.onelogin.com")
	assert.Contains(t, buf.String(), "server logs")
}

func TestDumpClipsToTail(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "line"
	}
	lines[39] = "final line"

	res := harness.CaseResult{
		Name:    "noisy",
		Outcome: harness.OutcomePassed,
		Stderr:  strings.Join(lines, "\n"),
	}

	var buf bytes.Buffer
	NewConsole(&buf, false, true).CaseDone(res)
	out := buf.String()
	assert.Contains(t, out, "final line")
	assert.LessOrEqual(t, strings.Count(out, "line"), excerptLines+3)
}

func TestSummaryCountsAndDiscoveries(t *testing.T) {
	store := harness.NewStore()
	store.Set("user_id", int64(255838675))
	store.Set("role_id", int64(892924))

	result := harness.RunResult{Passed: 12, Failed: 1, Skipped: 3, Duration: 9 * time.Second}

	var buf bytes.Buffer
	NewConsole(&buf, false, false).Summary(result, store)
	out := buf.String()

	assert.Contains(t, out, "12 passed")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "3 skipped")
	assert.Contains(t, out, "16 total")
	assert.Contains(t, out, "user_id = 255838675")
	assert.Contains(t, out, "role_id = 892924")
	assert.Contains(t, out, "1 test(s) failed.")
}

func TestSummaryAllPassed(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false, false).Summary(harness.RunResult{Passed: 5}, harness.NewStore())
	out := buf.String()

	assert.Contains(t, out, "All tests passed.")
	assert.NotContains(t, out, "Discovered during run")
}

func TestSectionHeader(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false, false)
	c.SuiteStart(4)
	c.SectionStart("User Management")

	assert.Contains(t, buf.String(), "Running 4 section(s)")
	assert.Contains(t, buf.String(), "User Management")
}
