package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	want := []string{"run", "mock", "setup", "version"}
	for _, name := range want {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %q", name)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})
	rootCmd.SetVersionTemplate(`{{printf "mcpcheck version %s\n" .Version}}`)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "mcpcheck version 1.2.3\n", out.String())
}

func TestSetupRefusesExistingEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("ONELOGIN_REGION=us\n"), 0o600))

	cmd := newSetupCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	// The existing file survives the refusal.
	data, err := os.ReadFile(".env")
	require.NoError(t, err)
	assert.Equal(t, "ONELOGIN_REGION=us\n", string(data))
}

func TestSetupWritesEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newSetupCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	// subdomain, region (default), client id, secret
	cmd.SetIn(strings.NewReader("mycompany\n\nabc123\ns3cret\n"))

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(".env")
	require.NoError(t, err)
	env := string(data)
	assert.Contains(t, env, "ONELOGIN_SUBDOMAIN=mycompany\n")
	assert.Contains(t, env, "ONELOGIN_REGION=us\n")
	assert.Contains(t, env, "ONELOGIN_CLIENT_ID=abc123\n")
	assert.Contains(t, env, "ONELOGIN_CLIENT_SECRET=s3cret\n")

	info, err := os.Stat(".env")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSetupRejectsBadRegion(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newSetupCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("mycompany\nmars\n"))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mars")
}

func TestRunRejectsUnknownSection(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ONELOGIN_CLIENT_ID", "id")
	t.Setenv("ONELOGIN_CLIENT_SECRET", "secret")
	t.Setenv("ONELOGIN_SUBDOMAIN", "mycompany")

	server := writeFakeServer(t)

	cmd := newRunCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Flags().Set("server", server))
	require.NoError(t, cmd.Flags().Set("section", "NoSuchSection"))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sections match")
}

func TestRunFailsWithoutCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ONELOGIN_CLIENT_ID", "ONELOGIN_CLIENT_SECRET", "ONELOGIN_SUBDOMAIN", "ONELOGIN_REGION"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cmd := newRunCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ONELOGIN_CLIENT_ID")
}

func TestRunReturnsErrorOnFailingCases(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ONELOGIN_CLIENT_ID", "id")
	t.Setenv("ONELOGIN_CLIENT_SECRET", "secret")
	t.Setenv("ONELOGIN_SUBDOMAIN", "mycompany")

	// cat echoes requests back, which never satisfies the prompts checks,
	// so the run completes with failures rather than aborting.
	server := writeFakeServer(t)

	cmd := newRunCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Flags().Set("server", server))
	require.NoError(t, cmd.Flags().Set("section", "Prompts"))
	require.NoError(t, cmd.Flags().Set("settle", "1ms"))

	err := cmd.Execute()
	require.ErrorIs(t, err, errTestsFailed)
}

func writeFakeServer(t *testing.T) string {
	t.Helper()
	path := "fake-server"
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec cat\n"), 0o755))
	return path
}
