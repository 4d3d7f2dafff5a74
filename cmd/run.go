package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcpcheck/internal/config"
	"mcpcheck/internal/harness"
	"mcpcheck/internal/protocol"
	"mcpcheck/internal/report"
	"mcpcheck/internal/session"
	"mcpcheck/internal/suite"
)

const defaultServerPath = "./target/release/onelogin-mcp-server"

// errTestsFailed marks a run that completed with failing cases. The reporter
// has already printed the details by the time it surfaces.
var errTestsFailed = errors.New("one or more tests failed")

type runFlags struct {
	verbose   bool
	showLogs  bool
	quick     bool
	failFast  bool
	server    string
	overrides string
	sections  []string
	settle    time.Duration
	timeout   time.Duration
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test catalog against a server binary",
		Long: `Run spawns the server binary once per test case, performs the MCP
handshake, sends the case's tool calls, and classifies each response.

Credentials are read from the environment, with a best-effort .env load
from the working directory or any parent. The exit code is 0 when every
executed case passed and 1 otherwise.

Example usage:
  mcpcheck run                                # full catalog
  mcpcheck run --quick                        # read-only cases
  mcpcheck run --verbose --logs               # show transcripts and server logs
  mcpcheck run --section Users --section Roles
  mcpcheck run --server ./bin/my-mcp-server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show detailed output for failing cases")
	cmd.Flags().BoolVarP(&flags.showLogs, "logs", "l", false, "Show server logs for each case")
	cmd.Flags().BoolVarP(&flags.quick, "quick", "q", false, "Run quick tests only (read operations)")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Stop on first failure")
	cmd.Flags().StringVar(&flags.server, "server", defaultServerPath, "Path to the server binary under test")
	cmd.Flags().StringVar(&flags.overrides, "overrides", "", "Path to a YAML file of per-case overrides")
	cmd.Flags().StringSliceVar(&flags.sections, "section", nil, "Run only the named sections (repeatable)")
	cmd.Flags().DurationVar(&flags.settle, "settle", 2*time.Second, "Default pause before collecting responses")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Minute, "Overall run timeout")

	return cmd
}

func runSuite(cmd *cobra.Command, flags runFlags, serverArgs []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	serverPath, err := config.ResolveServer(flags.server)
	if err != nil {
		return err
	}

	sections := suite.Build(cfg, suite.Options{Quick: flags.quick})
	sections = harness.FilterSections(sections, flags.sections)
	if len(sections) == 0 {
		return fmt.Errorf("no sections match %v", flags.sections)
	}

	if flags.overrides != "" {
		overrides, err := config.LoadOverrides(flags.overrides)
		if err != nil {
			return err
		}
		harness.ApplyOverrides(sections, overrides)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	caller := &protocol.ServerCaller{
		Client: protocol.NewClient(session.FixedDelay{}),
		Spec: session.Spec{
			Command: serverPath,
			Args:    serverArgs,
			Env:     cfg.ChildEnv(),
		},
	}

	mode := "Full (all operations)"
	if flags.quick {
		mode = "Quick (read-only)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OneLogin MCP Server Test Suite\n")
	fmt.Fprintf(out, "Time: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Test User: %d\n", cfg.Fixtures.TestUserID)
	fmt.Fprintf(out, "Account: %d\n", cfg.Fixtures.AccountID)
	fmt.Fprintf(out, "Mode: %s\n\n", mode)

	runner := &harness.Runner{
		Caller:        caller,
		Reporter:      report.NewConsole(out, flags.verbose, flags.showLogs),
		DefaultSettle: flags.settle,
		FailFast:      flags.failFast,
	}

	result := runner.Run(ctx, sections, harness.NewStore())
	if result.ExitCode() != 0 {
		// Returned rather than os.Exit so the deferred signal and timeout
		// contexts unwind; Execute maps any error to exit code 1.
		return errTestsFailed
	}
	return nil
}
