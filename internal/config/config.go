// Package config assembles the environment for a run: .env loading, required
// credential checks, fixture ids, and the child process environment handed to
// the server under test.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcpcheck/pkg/logging"
)

// For mocking in tests
var osGetwd = os.Getwd

const (
	envFileName = ".env"

	defaultRegion    = "us"
	defaultSubdomain = "example"
)

// Credentials and connection settings read from the environment.
const (
	EnvClientID     = "ONELOGIN_CLIENT_ID"
	EnvClientSecret = "ONELOGIN_CLIENT_SECRET"
	EnvRegion       = "ONELOGIN_REGION"
	EnvSubdomain    = "ONELOGIN_SUBDOMAIN"
)

// Fixtures identify pre-provisioned entities in the test tenant. Read-only
// cases target these so runs do not depend on earlier discovery.
type Fixtures struct {
	TestUserID          int64
	AccountOwnerID      int64
	TestRoleID          int64
	AccountID           int64
	CustomAttrShortname string
}

// Config is everything a run needs from the environment.
type Config struct {
	ClientID     string
	ClientSecret string
	Region       string
	Subdomain    string
	Fixtures     Fixtures
}

// Load reads the environment, after best-effort .env loading, and applies
// defaults. Call Validate before using the credentials.
func Load() Config {
	LoadDotenv()
	return Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		Region:       getenvDefault(EnvRegion, defaultRegion),
		Subdomain:    getenvDefault(EnvSubdomain, defaultSubdomain),
		Fixtures: Fixtures{
			TestUserID:          getenvInt("TEST_USER_ID", 255838675),
			AccountOwnerID:      getenvInt("ACCOUNT_OWNER_ID", 244955039),
			TestRoleID:          getenvInt("TEST_ROLE_ID", 892924),
			AccountID:           getenvInt("ACCOUNT_ID", 244135),
			CustomAttrShortname: getenvDefault("CUSTOM_ATTR_SHORTNAME", "city"),
		},
	}
}

// Validate reports the required settings that are missing, all at once, so
// the operator fixes the environment in one pass.
func (c Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s (run the setup command or edit .env)", strings.Join(missing, ", "))
	}
	return nil
}

// ChildEnv builds the environment for the server under test: the credentials
// plus PATH, nothing else from the parent leaks through.
func (c Config) ChildEnv() []string {
	return []string{
		EnvClientID + "=" + c.ClientID,
		EnvClientSecret + "=" + c.ClientSecret,
		EnvRegion + "=" + c.Region,
		EnvSubdomain + "=" + c.Subdomain,
		"PATH=" + os.Getenv("PATH"),
	}
}

// LoadDotenv loads the first .env found, checking the working directory and
// then walking up toward the filesystem root so runs started from a
// subdirectory still pick up the project file. Variables already set in the
// environment always win.
func LoadDotenv() {
	wd, err := osGetwd()
	if err != nil {
		return
	}
	for dir := wd; ; dir = filepath.Dir(dir) {
		path := filepath.Join(dir, envFileName)
		if _, err := os.Stat(path); err == nil {
			if err := applyDotenv(path); err != nil {
				logging.Warn("Config", "Loading %s: %v", path, err)
			}
			return
		}
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

// applyDotenv parses KEY=VALUE lines. Comments and blank lines are skipped,
// and single or double quotes around values are stripped.
func applyDotenv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	logging.Debug("Config", "Loading environment from %s", path)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return nil
}

// ResolveServer verifies the server binary exists and is executable, and
// returns its absolute path.
func ResolveServer(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("server binary %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("server binary %s is a directory", abs)
	}
	if info.Mode()&0111 == 0 {
		return "", fmt.Errorf("server binary %s is not executable", abs)
	}
	return abs, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		logging.Warn("Config", "Ignoring non-numeric %s=%q", key, v)
		return fallback
	}
	return n
}
