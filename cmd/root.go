package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"mcpcheck/pkg/logging"
)

var rootDebug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcpcheck",
	Short: "Black-box test driver for MCP tool servers over stdio",
	Long: `mcpcheck runs a catalog of tool calls against an MCP server binary,
one fresh server process per test case, and judges each response as it
comes back over stdio. It tolerates the messy output real servers
produce: framed responses, bare JSON lines, and log noise interleaved
on the same stream.`,
	// SilenceUsage is set to true to prevent printing usage message on
	// errors handled by us (failed runs, bad environment)
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpcheck version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newMockCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newVersionCmd())
}
