package suite

import (
	"fmt"

	"mcpcheck/internal/harness"
	"mcpcheck/internal/wire"
)

func (b builder) roles() harness.Section {
	cases := []harness.Case{
		{Name: "list_roles", Requests: call("onelogin_list_roles", map[string]any{}), ExtractKey: "first_role_id"},
		{Name: "get_role", Requests: call("onelogin_get_role", map[string]any{"role_id": b.fx.TestRoleID})},
	}
	if b.quick {
		return harness.Section{Name: "Roles", Cases: cases}
	}

	cases = append(cases,
		harness.Case{
			Name: "create_role",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_create_role", map[string]any{"name": fmt.Sprintf("Test_Role_%d", uniq())}), nil
			},
			ExtractKey: "created_role_id",
			Settle:     writeSettle,
		},
		harness.Case{
			Name:  "get_created_role",
			Needs: []string{"created_role_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_role_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_role", map[string]any{"role_id": id}), nil
			},
		},
		harness.Case{
			Name:  "update_created_role",
			Needs: []string{"created_role_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_role_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_role", map[string]any{
					"role_id": id,
					"name":    fmt.Sprintf("Updated_Role_%d", uniq()),
				}), nil
			},
		},
		harness.Case{
			Name:  "delete_created_role",
			Needs: []string{"created_role_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_role_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_role", map[string]any{"role_id": id}), nil
			},
			InvalidateKey: "created_role_id",
			Settle:        writeSettle,
		},
	)
	return harness.Section{Name: "Roles", Cases: cases}
}

// samlTestConnectorID is the catalog id of the SAML Test Connector (IdP),
// the safest connector to create throwaway apps against.
const samlTestConnectorID = 110016

func (b builder) apps() harness.Section {
	cases := []harness.Case{
		{Name: "list_apps", Requests: call("onelogin_list_apps", map[string]any{}), ExtractKey: "first_app_id"},
		{
			Name:  "get_app",
			Needs: []string{"first_app_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_app_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_app", map[string]any{"app_id": id}), nil
			},
		},
	}
	if b.quick {
		return harness.Section{Name: "Apps", Cases: cases}
	}

	cases = append(cases,
		harness.Case{
			Name: "create_app",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_create_app", map[string]any{
					"name":         fmt.Sprintf("Test_App_%d", uniq()),
					"connector_id": samlTestConnectorID,
				}), nil
			},
			ExtractKey: "created_app_id",
			Settle:     writeSettle,
		},
		harness.Case{
			Name:  "update_app",
			Needs: []string{"created_app_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_app_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_app", map[string]any{
					"app_id": id,
					"name":   fmt.Sprintf("Updated_App_%d", uniq()),
				}), nil
			},
		},
		harness.Case{
			Name:  "delete_app",
			Needs: []string{"created_app_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_app_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_app", map[string]any{"app_id": id}), nil
			},
			InvalidateKey: "created_app_id",
			Settle:        writeSettle,
		},
	)
	return harness.Section{Name: "Apps", Cases: cases}
}

func (b builder) groups() harness.Section {
	cases := []harness.Case{
		{Name: "list_groups", Requests: call("onelogin_list_groups", map[string]any{}), ExtractKey: "first_group_id"},
		{
			Name:  "get_group",
			Needs: []string{"first_group_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "first_group_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_get_group", map[string]any{"group_id": id}), nil
			},
		},
	}
	if !b.quick {
		cases = append(cases, harness.Case{
			Name:       "create_group",
			SkipReason: "groups managed via directories, not API",
		})
	}
	return harness.Section{Name: "Groups", Cases: cases}
}

func (b builder) events() harness.Section {
	cases := []harness.Case{
		{Name: "list_events", Requests: call("onelogin_list_events", map[string]any{"limit": 5}), ExtractKey: "first_event_id"},
		{Name: "list_event_types", Requests: call("onelogin_list_event_types", map[string]any{})},
		{
			Name:       "get_event",
			SkipReason: "API response format may vary by event type",
		},
	}
	if !b.quick {
		cases = append(cases, harness.Case{
			Name: "create_event",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				return call("onelogin_create_event", map[string]any{
					"event_type_id": 8,
					"account_id":    b.fx.AccountID,
					"user_id":       b.fx.TestUserID,
					"notes":         fmt.Sprintf("Test event %d", uniq()),
				}), nil
			},
		})
	}
	return harness.Section{Name: "Events", Cases: cases}
}

func (b builder) customAttributes() harness.Section {
	cases := []harness.Case{
		{Name: "list_custom_attributes", Requests: call("onelogin_list_custom_attributes", map[string]any{}), ExtractKey: "first_attr_id"},
	}
	if b.quick {
		return harness.Section{Name: "Custom Attributes", Cases: cases}
	}

	cases = append(cases,
		harness.Case{
			Name: "create_custom_attribute",
			Prepare: func(*harness.Store) ([]wire.Request, error) {
				n := uniq() % 10000
				return call("onelogin_create_custom_attribute", map[string]any{
					"shortname": fmt.Sprintf("test_attr_%d", n),
					"name":      fmt.Sprintf("Test Attribute %d", n),
					"data_type": "string",
				}), nil
			},
			ExtractKey: "created_attr_id",
			Settle:     writeSettle,
		},
		harness.Case{
			Name:  "update_custom_attribute",
			Needs: []string{"created_attr_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_attr_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_update_custom_attribute", map[string]any{
					"attribute_id": id,
					"name":         fmt.Sprintf("Updated Attr %d", uniq()%10000),
				}), nil
			},
		},
		harness.Case{
			Name:  "delete_custom_attribute",
			Needs: []string{"created_attr_id"},
			Prepare: func(s *harness.Store) ([]wire.Request, error) {
				id, err := need(s, "created_attr_id")
				if err != nil {
					return nil, err
				}
				return call("onelogin_delete_custom_attribute", map[string]any{"attribute_id": id}), nil
			},
			InvalidateKey: "created_attr_id",
			Settle:        writeSettle,
		},
	)
	return harness.Section{Name: "Custom Attributes", Cases: cases}
}
