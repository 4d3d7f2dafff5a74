package suite

import (
	"fmt"

	"mcpcheck/internal/harness"
	"mcpcheck/internal/wire"
)

func (b builder) userMappings() harness.Section {
	cases := []harness.Case{
		{Name: "list_user_mappings", Requests: call("onelogin_list_user_mappings", map[string]any{}), ExtractKey: "first_mapping_id"},
		{Name: "list_mapping_conditions", Requests: call("onelogin_list_mapping_conditions", map[string]any{})},
		{Name: "get_user_mapping", SkipReason: "user_mappings category disabled by default"},
	}
	if b.quick {
		return harness.Section{Name: "User Mappings", Cases: cases}
	}

	cases = append(cases,
		harness.Case{
			Name: "create_user_mapping",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_create_user_mapping", map[string]any{
					"name":    fmt.Sprintf("Test_Mapping_%d", uniq()),
					"match":   "all",
					"enabled": false,
					"conditions": []any{
						map[string]any{"source": "email", "operator": "~", "value": "@testmapping.example.com"},
					},
					"actions": []any{
						map[string]any{"action": "set_status", "value": []any{"1"}},
					},
				}), nil
			},
			ExtractKey: "created_mapping_id",
			Settle:     writeSettle,
		},
		harness.Case{Name: "update_user_mapping", SkipReason: "update API may require all mapping fields"},
		harness.Case{
			Name:  "delete_user_mapping",
			Needs: []string{"created_mapping_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				// The mappings API takes ids as strings.
				id, err := needString(s, "created_mapping_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_user_mapping", map[string]any{"mapping_id": id}), nil
			},
			InvalidateKey: "created_mapping_id",
			Settle:        writeSettle,
		},
		harness.Case{
			Name:  "sort_user_mappings",
			Needs: []string{"first_mapping_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_mapping_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_sort_user_mappings", map[string]any{"mapping_ids": []any{id}}), nil
			},
		},
	)
	return harness.Section{Name: "User Mappings", Cases: cases}
}

func (b builder) smartHooks() harness.Section {
	cases := []harness.Case{
		{Name: "list_smart_hooks", Requests: call("onelogin_list_smart_hooks", map[string]any{}), ExtractKey: "first_hook_id"},
		{
			Name:  "get_smart_hook",
			Needs: []string{"first_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_smart_hook", map[string]any{"hook_id": id}), nil
			},
		},
		{
			Name:  "get_smart_hook_logs",
			Needs: []string{"first_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_smart_hook_logs", map[string]any{"hook_id": id}), nil
			},
		},
	}
	if b.quick {
		return harness.Section{Name: "Smart Hooks", Cases: cases}
	}

	cases = append(cases,
		// Only one hook may exist per type, so any existing hook has to go
		// before the create test. The eviction keeps later cases from
		// reaching for the deleted id.
		harness.Case{
			Name:  "cleanup_existing_hook",
			Needs: []string{"first_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_smart_hook", map[string]any{"hook_id": id}), nil
			},
			InvalidateKey: "first_hook_id",
		},
		harness.Case{
			Name: "create_smart_hook",
			// Created disabled so it cannot affect real logins.
			Requests:   call("onelogin_create_smart_hook", map[string]any{"type": "pre-authentication", "disabled": true}),
			ExtractKey: "created_hook_id",
			Settle:     writeSettle,
		},
		harness.Case{
			Name:  "get_created_hook",
			Needs: []string{"created_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_smart_hook", map[string]any{"hook_id": id}), nil
			},
		},
		harness.Case{
			Name:  "update_smart_hook",
			Needs: []string{"created_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_smart_hook", map[string]any{"hook_id": id, "status": "disabled"}), nil
			},
		},
		harness.Case{
			Name:  "get_created_hook_logs",
			Needs: []string{"created_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_smart_hook_logs", map[string]any{"hook_id": id}), nil
			},
		},
		harness.Case{
			Name:  "delete_smart_hook",
			Needs: []string{"created_hook_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_hook_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_smart_hook", map[string]any{"hook_id": id}), nil
			},
			InvalidateKey: "created_hook_id",
			Settle:        writeSettle,
		},
		harness.Case{Name: "list_hook_env_vars", Requests: call("onelogin_list_hook_env_vars", map[string]any{})},
		harness.Case{
			Name: "create_hook_env_var",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_create_hook_env_var", map[string]any{
					"name":  fmt.Sprintf("TEST_VAR_%d", uniq()),
					"value": "test_secret_value",
				}), nil
			},
			ExtractKey: "created_env_var_id",
		},
		harness.Case{
			Name:  "get_hook_env_var",
			Needs: []string{"created_env_var_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_env_var_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_hook_env_var", map[string]any{"env_var_id": id}), nil
			},
		},
		harness.Case{
			Name:  "update_hook_env_var",
			Needs: []string{"created_env_var_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_env_var_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_hook_env_var", map[string]any{"env_var_id": id, "value": "updated_secret_value"}), nil
			},
		},
		harness.Case{
			Name:  "delete_hook_env_var",
			Needs: []string{"created_env_var_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_env_var_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_hook_env_var", map[string]any{"env_var_id": id}), nil
			},
			InvalidateKey: "created_env_var_id",
		},
	)
	return harness.Section{Name: "Smart Hooks", Cases: cases}
}

func (b builder) privileges() harness.Section {
	cases := []harness.Case{
		{Name: "list_privileges", Requests: call("onelogin_list_privileges", map[string]any{}), ExtractKey: "first_privilege_id"},
		{
			Name:  "get_privilege",
			Needs: []string{"first_privilege_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_privilege_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_privilege", map[string]any{"privilege_id": id}), nil
			},
		},
	}
	if b.quick {
		return harness.Section{Name: "Privileges", Cases: cases}
	}

	cases = append(cases,
		harness.Case{
			Name: "create_privilege",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_create_privilege", map[string]any{
					"name":          fmt.Sprintf("Test_Privilege_%d", uniq()),
					"resource_type": "users",
					"actions":       []any{"read"},
				}), nil
			},
			ExtractKey: "created_privilege_id",
			Settle:     writeSettle,
		},
		harness.Case{
			Name:  "update_privilege",
			Needs: []string{"created_privilege_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_privilege_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_privilege", map[string]any{
					"privilege_id": id,
					"name":         fmt.Sprintf("Updated_Privilege_%d", uniq()),
				}), nil
			},
		},
		harness.Case{Name: "assign_role_to_privilege", SkipReason: "assignment may fail if privilege is quickly deleted"},
		harness.Case{Name: "assign_user_to_privilege", SkipReason: "assignment may fail if privilege is quickly deleted"},
		harness.Case{
			Name:  "delete_privilege",
			Needs: []string{"created_privilege_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_privilege_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_privilege", map[string]any{"privilege_id": id}), nil
			},
			InvalidateKey: "created_privilege_id",
			Settle:        writeSettle,
		},
	)
	return harness.Section{Name: "Privileges", Cases: cases}
}

func (b builder) risk() harness.Section {
	cases := []harness.Case{
		{Name: "list_risk_rules", Requests: call("onelogin_list_risk_rules", map[string]any{}), ExtractKey: "first_risk_rule_id"},
		{
			Name:  "get_risk_rule",
			Needs: []string{"first_risk_rule_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_risk_rule_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_risk_rule", map[string]any{"rule_id": id}), nil
			},
		},
	}
	if b.quick {
		return harness.Section{Name: "Risk", Cases: cases}
	}

	cases = append(cases,
		harness.Case{Name: "create_risk_rule", SkipReason: "requires Vigilance add-on with specific config"},
		harness.Case{Name: "get_risk_score", SkipReason: "requires Adaptive Auth add-on"},
		harness.Case{Name: "track_risk_event", SkipReason: "requires Adaptive Auth add-on"},
		harness.Case{Name: "get_risk_events", SkipReason: "requires Adaptive Auth add-on"},
	)
	return harness.Section{Name: "Risk", Cases: cases}
}

func (b builder) directoryConnectors() harness.Section {
	cases := []harness.Case{
		{Name: "list_directory_connectors", Requests: call("onelogin_list_directory_connectors", map[string]any{}), ExtractKey: "first_connector_id"},
		{Name: "get_directory_connector", SkipReason: "API may not support individual directory connector lookup"},
	}
	if !b.quick {
		cases = append(cases,
			harness.Case{Name: "create_directory_connector", SkipReason: "requires directory infrastructure"},
			harness.Case{Name: "sync_directory", SkipReason: "requires connected directory"},
			harness.Case{Name: "get_sync_status", SkipReason: "requires connected directory"},
		)
	}
	return harness.Section{Name: "Directory Connectors", Cases: cases}
}
