package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mcpcheck/internal/config"
)

var validRegions = []string{"us", "eu"}

func newSetupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively write a .env file with OneLogin credentials",
		Long: `Setup walks through the credentials the test suite needs and writes
them to a .env file in the current directory. Existing files are left
alone unless --force is given.

Create API credentials in the OneLogin admin console under
Developers > API Credentials, with the "Manage All" scope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .env file")

	return cmd
}

func runSetup(cmd *cobra.Command, force bool) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(".env"); err == nil && !force {
		return fmt.Errorf(".env already exists; re-run with --force to overwrite")
	}

	fmt.Fprintln(out, "OneLogin MCP test suite setup")
	fmt.Fprintln(out, "Credentials are written to .env and never leave this machine.")
	fmt.Fprintln(out)

	reader := bufio.NewReader(cmd.InOrStdin())

	subdomain, err := prompt(out, reader, "OneLogin subdomain (e.g. mycompany for mycompany.onelogin.com)", "")
	if err != nil {
		return err
	}
	if subdomain == "" {
		return fmt.Errorf("subdomain is required")
	}

	region, err := prompt(out, reader, "Region (us/eu)", "us")
	if err != nil {
		return err
	}
	region = strings.ToLower(region)
	if !slices.Contains(validRegions, region) {
		return fmt.Errorf("unknown region %q, expected one of %v", region, validRegions)
	}

	clientID, err := prompt(out, reader, "API client ID", "")
	if err != nil {
		return err
	}
	if clientID == "" {
		return fmt.Errorf("client ID is required")
	}

	clientSecret, err := promptSecret(out, reader, "API client secret")
	if err != nil {
		return err
	}
	if clientSecret == "" {
		return fmt.Errorf("client secret is required")
	}

	contents := fmt.Sprintf(
		"%s=%s\n%s=%s\n%s=%s\n%s=%s\n",
		config.EnvClientID, clientID,
		config.EnvClientSecret, clientSecret,
		config.EnvSubdomain, subdomain,
		config.EnvRegion, region,
	)
	if err := os.WriteFile(".env", []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing .env: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Wrote .env. Run 'mcpcheck run --quick' to verify the credentials.")
	return nil
}

func prompt(out io.Writer, reader *bufio.Reader, label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

// promptSecret reads without echo when stdin is a terminal, falling back
// to a plain read from the command's input when it is not (tests, pipes).
func promptSecret(out io.Writer, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
