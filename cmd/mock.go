package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"mcpcheck/internal/mockserver"
)

func newMockCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve a canned MCP tool server on stdio",
		Long: `Mock speaks the same stdio protocol the run command drives: framed or
newline-delimited JSON-RPC in, newline-delimited JSON-RPC out. Tool
responses come from a YAML config, or from a small built-in catalog when
no config is given.

Point the run command at it to exercise the harness without a real
backend:
  mcpcheck run --server "$(which mcpcheck)" -- mock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mockserver.DefaultConfig()
			if configPath != "" {
				loaded, err := mockserver.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			srv := mockserver.New(cfg)
			return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML mock config")

	return cmd
}
