// Package report renders run progress and the final summary to a terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mcpcheck/internal/harness"
)

const nameColumnWidth = 44

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// excerptLines bounds how much transcript a verbose or log dump shows per
// case.
const excerptLines = 12

// Console writes human-readable progress to w as the run advances. It
// implements harness.Reporter.
type Console struct {
	Out io.Writer
	// Verbose adds failure excerpts from the server's stdout.
	Verbose bool
	// ShowLogs appends the tail of each failing case's stderr.
	ShowLogs bool
}

func NewConsole(w io.Writer, verbose, showLogs bool) *Console {
	return &Console{Out: w, Verbose: verbose, ShowLogs: showLogs}
}

func (c *Console) SuiteStart(sections int) {
	fmt.Fprintf(c.Out, "Running %d section(s)\n", sections)
}

func (c *Console) SectionStart(name string) {
	fmt.Fprintf(c.Out, "\n%s\n", sectionStyle.Render(name))
}

func (c *Console) CaseDone(res harness.CaseResult) {
	glyph := glyphFor(res.Outcome)
	name := runewidth.FillRight(res.Name, nameColumnWidth)
	fmt.Fprintf(c.Out, "  %s %s", glyph, name)

	switch res.Outcome {
	case harness.OutcomeSkipped:
		fmt.Fprintf(c.Out, " %s\n", detailStyle.Render("("+res.Detail+")"))
		return
	case harness.OutcomeFailed:
		fmt.Fprintf(c.Out, " (%s)\n", res.Duration.Round(time.Millisecond))
		if res.Detail != "" {
			fmt.Fprintf(c.Out, "      %s\n", failStyle.Render(res.Detail))
		}
	default:
		fmt.Fprintf(c.Out, " (%s)\n", res.Duration.Round(time.Millisecond))
	}

	if c.Verbose && res.Outcome == harness.OutcomeFailed && res.Stdout != "" {
		c.dump("stdout", res.Stdout)
	}
	if c.ShowLogs && res.Stderr != "" {
		c.dump("server logs", res.Stderr)
	}
}

func (c *Console) Summary(result harness.RunResult, store *harness.Store) {
	fmt.Fprintf(c.Out, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(c.Out, "  %s %d passed   %s %d failed   %s %d skipped   (%d total, %s)\n",
		passStyle.Render("✓"), result.Passed,
		failStyle.Render("✗"), result.Failed,
		skipStyle.Render("○"), result.Skipped,
		result.Total(), result.Duration.Round(time.Millisecond))

	if keys := store.Keys(); len(keys) > 0 {
		values := store.Snapshot()
		fmt.Fprintf(c.Out, "\n  Discovered during run:\n")
		for _, k := range keys {
			fmt.Fprintf(c.Out, "    %s = %v\n", k, values[k])
		}
	}

	if result.Failed == 0 {
		fmt.Fprintf(c.Out, "\n%s\n", passStyle.Render("All tests passed."))
	} else {
		fmt.Fprintf(c.Out, "\n%s\n", failStyle.Render(fmt.Sprintf("%d test(s) failed.", result.Failed)))
	}
}

// dump prints the tail of a transcript stream, indented under the case line.
func (c *Console) dump(label, text string) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > excerptLines {
		lines = lines[len(lines)-excerptLines:]
		fmt.Fprintf(c.Out, "      %s\n", logStyle.Render("["+label+", last "+fmt.Sprint(excerptLines)+" lines]"))
	} else {
		fmt.Fprintf(c.Out, "      %s\n", logStyle.Render("["+label+"]"))
	}
	for _, line := range lines {
		fmt.Fprintf(c.Out, "      %s\n", logStyle.Render(line))
	}
}

func glyphFor(o harness.Outcome) string {
	switch o {
	case harness.OutcomePassed:
		return passStyle.Render("✓")
	case harness.OutcomeFailed:
		return failStyle.Render("✗")
	default:
		return skipStyle.Render("○")
	}
}
