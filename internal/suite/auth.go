package suite

import (
	"mcpcheck/internal/harness"
)

func (b builder) mfa() harness.Section {
	cases := []harness.Case{
		{Name: "list_mfa_factors", Requests: call("onelogin_list_mfa_factors", map[string]any{"user_id": b.fx.TestUserID})},
	}
	if !b.quick {
		cases = append(cases,
			harness.Case{Name: "enroll_mfa_factor", SkipReason: "requires phone number setup"},
			harness.Case{Name: "verify_mfa_factor", SkipReason: "requires enrolled device"},
			harness.Case{Name: "remove_mfa_factor", SkipReason: "requires enrolled device"},
			harness.Case{Name: "enroll_mfa", SkipReason: "requires authentication state"},
			harness.Case{Name: "verify_mfa", SkipReason: "requires authentication state"},
			harness.Case{Name: "validate_user_smart_mfa", SkipReason: "requires Smart MFA add-on"},
		)
	}
	return harness.Section{Name: "MFA", Cases: cases}
}

func (b builder) saml() harness.Section {
	return harness.Section{Name: "SAML", Cases: []harness.Case{
		{Name: "get_saml_assertion", SkipReason: "needs user credentials"},
		{Name: "get_saml_assertion_v2", SkipReason: "needs user credentials"},
		{Name: "verify_saml_factor", SkipReason: "needs authentication state"},
	}}
}

func (b builder) oauth() harness.Section {
	return harness.Section{Name: "OAuth", Cases: []harness.Case{
		{Name: "generate_oauth_tokens", SkipReason: "needs user credentials"},
		{Name: "revoke_oauth_token", SkipReason: "needs valid token"},
		{Name: "introspect_oauth_token", SkipReason: "needs valid token"},
	}}
}

func (b builder) embed() harness.Section {
	return harness.Section{Name: "Embed", Cases: []harness.Case{
		{Name: "generate_embed_token", SkipReason: "needs valid user credentials"},
		{Name: "list_embeddable_apps", SkipReason: "requires user access token"},
	}}
}

func (b builder) oidc() harness.Section {
	return harness.Section{Name: "OIDC", Cases: []harness.Case{
		{Name: "oidc_get_well_known_config", Requests: call("onelogin_oidc_get_well_known_config", map[string]any{})},
		{Name: "oidc_get_jwks", Requests: call("onelogin_oidc_get_jwks", map[string]any{})},
		{Name: "oidc_get_userinfo", SkipReason: "needs valid access token"},
	}}
}

func (b builder) invitations() harness.Section {
	var cases []harness.Case
	if !b.quick {
		cases = append(cases,
			harness.Case{Name: "generate_invite_link", SkipReason: "needs unactivated user"},
			harness.Case{Name: "send_invite_link", SkipReason: "needs unactivated user"},
		)
	}
	return harness.Section{Name: "Invitations", Cases: cases}
}

func (b builder) sessions() harness.Section {
	var cases []harness.Case
	if !b.quick {
		cases = append(cases,
			harness.Case{Name: "create_session_login_token", SkipReason: "needs valid user credentials"},
			harness.Case{Name: "verify_factor_login", SkipReason: "needs active authentication state"},
			harness.Case{Name: "create_session", SkipReason: "needs valid session token"},
		)
	}
	return harness.Section{Name: "Login / Sessions", Cases: cases}
}

func (b builder) additionalMFA() harness.Section {
	var cases []harness.Case
	if !b.quick {
		cases = append(cases,
			harness.Case{Name: "remove_mfa", SkipReason: "requires enrolled MFA device"},
			harness.Case{Name: "generate_mfa_token", SkipReason: "generates real temporary MFA token"},
			harness.Case{Name: "verify_mfa_token", SkipReason: "requires valid state token"},
		)
	}
	return harness.Section{Name: "Additional MFA Tools", Cases: cases}
}
