package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpcheck/internal/config"
	"mcpcheck/internal/harness"
)

func testConfig() config.Config {
	return config.Config{
		Subdomain: "acme",
		Fixtures: config.Fixtures{
			TestUserID:          255838675,
			AccountOwnerID:      244955039,
			TestRoleID:          892924,
			AccountID:           244135,
			CustomAttrShortname: "city",
		},
	}
}

func findCase(t *testing.T, sections []harness.Section, name string) harness.Case {
	t.Helper()
	for _, s := range sections {
		for _, c := range s.Cases {
			if c.Name == name {
				return c
			}
		}
	}
	t.Fatalf("case %q not in catalog", name)
	return harness.Case{}
}

func hasCase(sections []harness.Section, name string) bool {
	for _, s := range sections {
		for _, c := range s.Cases {
			if c.Name == name {
				return true
			}
		}
	}
	return false
}

func TestBuildSectionOrder(t *testing.T) {
	sections := Build(testConfig(), Options{})

	var names []string
	for _, s := range sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, "Prompts", names[0], "prompts run before everything else")

	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}
	assert.Less(t, index("Apps"), index("App Rules"), "app discovery must precede app rule cases")
	assert.Less(t, index("Roles"), index("Role Sub-resources"))
}

func TestQuickModeDropsMutations(t *testing.T) {
	quick := Build(testConfig(), Options{Quick: true})

	for _, name := range []string{"create_user", "lock_user", "delete_created_role", "create_smart_hook", "update_branding_settings"} {
		assert.False(t, hasCase(quick, name), "%s must not run in quick mode", name)
	}
	for _, name := range []string{"list_users", "get_user", "list_roles", "list_smart_hooks", "get_rate_limit_status"} {
		assert.True(t, hasCase(quick, name), "%s must survive quick mode", name)
	}
}

func TestCaseNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Build(testConfig(), Options{}) {
		for _, c := range s.Cases {
			assert.False(t, seen[c.Name], "duplicate case name %q", c.Name)
			seen[c.Name] = true
		}
	}
}

func TestFixturesFlowIntoArguments(t *testing.T) {
	sections := Build(testConfig(), Options{})

	c := findCase(t, sections, "get_user")
	require.Len(t, c.Requests, 1)
	args := c.Requests[0].Params["arguments"].(map[string]any)
	assert.Equal(t, int64(255838675), args["user_id"])
}

func TestAccountOwnerLockExpectsError(t *testing.T) {
	c := findCase(t, Build(testConfig(), Options{}), "lock_account_owner (403)")
	assert.True(t, c.ExpectError)

	args := c.Requests[0].Params["arguments"].(map[string]any)
	assert.Equal(t, int64(244955039), args["user_id"])
}

func TestMutatingCasesGetLongerSettle(t *testing.T) {
	sections := Build(testConfig(), Options{})
	assert.Equal(t, writeSettle, findCase(t, sections, "lock_user").Settle)
	assert.Equal(t, writeSettle, findCase(t, sections, "create_user").Settle)
	assert.Zero(t, findCase(t, sections, "list_users").Settle, "reads use the runner default")
}

func TestLifecycleChainSplicesDiscoveredID(t *testing.T) {
	c := findCase(t, Build(testConfig(), Options{}), "get_created_user")
	require.NotNil(t, c.Prepare)
	assert.Contains(t, c.Needs, "created_user_id")

	store := harness.NewStore()
	_, err := c.Prepare(store)
	assert.ErrorIs(t, err, harness.ErrSkip, "missing discovery collapses the chain to a skip")

	store.Set("created_user_id", int64(9000001))
	reqs, err := c.Prepare(store)
	require.NoError(t, err)
	args := reqs[0].Params["arguments"].(map[string]any)
	assert.Equal(t, int64(9000001), args["user_id"])
}

func TestDeleteCasesInvalidateTheirKey(t *testing.T) {
	sections := Build(testConfig(), Options{})
	assert.Equal(t, "created_user_id", findCase(t, sections, "delete_created_user").InvalidateKey)
	assert.Equal(t, "first_hook_id", findCase(t, sections, "cleanup_existing_hook").InvalidateKey)
	assert.Equal(t, "created_hook_id", findCase(t, sections, "delete_smart_hook").InvalidateKey)
}

func TestStringIDAPIsGetStrings(t *testing.T) {
	c := findCase(t, Build(testConfig(), Options{}), "delete_user_mapping")
	store := harness.NewStore()
	store.Set("created_mapping_id", int64(42))

	reqs, err := c.Prepare(store)
	require.NoError(t, err)
	args := reqs[0].Params["arguments"].(map[string]any)
	assert.Equal(t, "42", args["mapping_id"], "mappings API takes string ids")
}

func TestDiscoveryKeysDeclared(t *testing.T) {
	sections := Build(testConfig(), Options{})

	assert.Equal(t, "first_role_id", findCase(t, sections, "list_roles").ExtractKey)
	assert.Equal(t, "first_app_id", findCase(t, sections, "list_apps").ExtractKey)
	assert.Equal(t, "created_hook_id", findCase(t, sections, "create_smart_hook").ExtractKey)
}

func TestSkippedCasesNeverCarryRequests(t *testing.T) {
	for _, s := range Build(testConfig(), Options{}) {
		for _, c := range s.Cases {
			if c.SkipReason != "" {
				assert.Empty(t, c.Requests, "case %q is skipped and must not build requests", c.Name)
				assert.Nil(t, c.Prepare, "case %q is skipped and must not build requests", c.Name)
			}
		}
	}
}

func TestUniqueNamesUseTimestamps(t *testing.T) {
	c := findCase(t, Build(testConfig(), Options{}), "create_role")
	reqs, err := c.Prepare(harness.NewStore())
	require.NoError(t, err)

	args := reqs[0].Params["arguments"].(map[string]any)
	assert.Regexp(t, `^Test_Role_\d+$`, args["name"])
}
