package suite

import (
	"fmt"
	"strings"

	"mcpcheck/internal/harness"
	"mcpcheck/internal/wire"
)

// checkContains verifies the session output mentions a marker string,
// whatever shape the response took.
func checkContains(want string) func(string) error {
	return func(raw string) error {
		if !strings.Contains(raw, want) {
			return fmt.Errorf("response does not mention %q", want)
		}
		return nil
	}
}

func (b builder) prompts() harness.Section {
	return harness.Section{Name: "Prompts", Cases: []harness.Case{
		{
			Name:     "prompts/list",
			Requests: []wire.Request{wire.MethodCall("prompts/list", map[string]any{})},
			Check:    checkContains("onelogin-usage-guide"),
		},
		{
			Name:     "prompts/get",
			Requests: []wire.Request{wire.MethodCall("prompts/get", map[string]any{"name": "onelogin-usage-guide"})},
			Check:    checkContains("OneLogin"),
		},
	}}
}

func (b builder) users() harness.Section {
	cases := []harness.Case{
		{Name: "list_users", Requests: call("onelogin_list_users", map[string]any{"limit": 5})},
		{Name: "get_user", Requests: call("onelogin_get_user", map[string]any{"user_id": b.fx.TestUserID})},
		{Name: "get_user_apps", Requests: call("onelogin_get_user_apps", map[string]any{"user_id": b.fx.TestUserID})},
		{Name: "get_user_roles", Requests: call("onelogin_get_user_roles", map[string]any{"user_id": b.fx.TestUserID})},
	}
	if b.quick {
		return harness.Section{Name: "Users", Cases: cases}
	}

	cases = append(cases,
		harness.Case{
			Name:     "lock_user",
			Requests: call("onelogin_lock_user", map[string]any{"user_id": b.fx.TestUserID, "locked_until": 1}),
			Settle:   writeSettle,
		},
		harness.Case{
			Name:     "update_user (unlock)",
			Requests: call("onelogin_update_user", map[string]any{"user_id": b.fx.TestUserID, "status": 1}),
			Settle:   writeSettle,
		},
		harness.Case{
			Name:     "logout_user",
			Requests: call("onelogin_logout_user", map[string]any{"user_id": b.fx.TestUserID}),
		},
		harness.Case{
			Name: "set_custom_attributes",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_set_custom_attributes", map[string]any{
					"user_id": b.fx.TestUserID,
					"custom_attributes": map[string]any{
						b.fx.CustomAttrShortname: fmt.Sprintf("TestCity_%d", uniq()%1000),
					},
				}), nil
			},
		},
		harness.Case{
			Name:     "assign_roles",
			Requests: call("onelogin_assign_roles", map[string]any{"user_id": b.fx.TestUserID, "role_ids": []any{b.fx.TestRoleID}}),
		},
		harness.Case{
			Name:     "remove_roles",
			Requests: call("onelogin_remove_roles", map[string]any{"user_id": b.fx.TestUserID, "role_ids": []any{b.fx.TestRoleID}}),
		},
		// Locking the account owner must be refused by the server.
		harness.Case{
			Name:        "lock_account_owner (403)",
			Requests:    call("onelogin_lock_user", map[string]any{"user_id": b.fx.AccountOwnerID, "locked_until": 1}),
			ExpectError: true,
			Settle:      writeSettle,
		},
		harness.Case{
			Name: "create_user",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				n := uniq()
				return call("onelogin_create_user", map[string]any{
					"email":     fmt.Sprintf("test_user_%d@example.com", n),
					"username":  fmt.Sprintf("testuser_%d", n),
					"firstname": "Test",
					"lastname":  "User",
				}), nil
			},
			ExtractKey: "created_user_id",
			Settle:     writeSettle,
		},
		harness.Case{
			Name:  "get_created_user",
			Needs: []string{"created_user_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_user_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_user", map[string]any{"user_id": id}), nil
			},
		},
		harness.Case{
			Name:  "update_created_user",
			Needs: []string{"created_user_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_user_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_user", map[string]any{"user_id": id, "firstname": "Updated"}), nil
			},
		},
		harness.Case{
			Name:  "delete_created_user",
			Needs: []string{"created_user_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_user_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_user", map[string]any{"user_id": id}), nil
			},
			InvalidateKey: "created_user_id",
			Settle:        writeSettle,
		},
	)
	return harness.Section{Name: "Users", Cases: cases}
}
