// Package suite defines the built-in OneLogin server test catalog: every
// tool the server exposes, grouped into sections, with lifecycle chains that
// create, mutate, and delete entities through ids discovered at run time.
package suite

import (
	"fmt"
	"time"

	"mcpcheck/internal/config"
	"mcpcheck/internal/harness"
	"mcpcheck/internal/wire"
)

// writeSettle is the pause after mutating calls. Writes propagate slower
// through the backing API than reads.
const writeSettle = 3 * time.Second

// Options select which parts of the catalog to build.
type Options struct {
	// Quick keeps only read operations, for fast signal without touching
	// tenant state.
	Quick bool
}

// Build assembles the full catalog against the given tenant fixtures.
// Section order matters: discovery cases run before the cases that consume
// their ids.
func Build(cfg config.Config, opts Options) []harness.Section {
	b := builder{fx: cfg.Fixtures, subdomain: cfg.Subdomain, quick: opts.Quick}
	return []harness.Section{
		b.prompts(),
		b.users(),
		b.roles(),
		b.apps(),
		b.groups(),
		b.events(),
		b.customAttributes(),
		b.userMappings(),
		b.smartHooks(),
		b.privileges(),
		b.risk(),
		b.directoryConnectors(),
		b.mfa(),
		b.saml(),
		b.oauth(),
		b.embed(),
		b.oidc(),
		b.invitations(),
		b.apiAuthorizations(),
		b.branding(),
		b.messageTemplates(),
		b.connectors(),
		b.reports(),
		b.appRules(),
		b.selfRegistration(),
		b.sessions(),
		b.roleSubresources(),
		b.rateLimits(),
		b.additionalMFA(),
	}
}

type builder struct {
	fx        config.Fixtures
	subdomain string
	quick     bool
}

// call wraps a single tool invocation, the shape almost every case uses.
func call(tool string, args map[string]any) []wire.Request {
	return []wire.Request{wire.ToolCall(tool, args)}
}

// need fetches a discovered value or skips the case when it is absent,
// mirroring how lifecycle chains collapse when their discovery step found
// nothing.
func need(store *harness.Store, key string) (any, error) {
	v, ok := store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: no %s discovered", harness.ErrSkip, key)
	}
	return v, nil
}

// needString is need for tools whose API requires the id as a string.
func needString(store *harness.Store, key string) (string, error) {
	v, err := need(store, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// uniq suffixes entity names so repeated runs never collide on unique
// constraints in the tenant.
func uniq() int64 {
	return time.Now().Unix()
}
