package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mcpcheck/internal/harness"
)

// overridesFile is the on-disk shape of a suite overrides file.
type overridesFile struct {
	Cases map[string]caseOverride `yaml:"cases"`
}

type caseOverride struct {
	Skip       bool   `yaml:"skip"`
	SkipReason string `yaml:"skip_reason"`
	Settle     string `yaml:"settle"`
}

// LoadOverrides reads per-case overrides from a YAML file. Settle values use
// Go duration syntax ("5s", "1500ms").
func LoadOverrides(path string) (map[string]harness.CaseOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides %s: %w", path, err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing overrides %s: %w", path, err)
	}

	out := make(map[string]harness.CaseOverride, len(file.Cases))
	for name, o := range file.Cases {
		converted := harness.CaseOverride{Skip: o.Skip, SkipReason: o.SkipReason}
		if o.Settle != "" {
			d, err := time.ParseDuration(o.Settle)
			if err != nil {
				return nil, fmt.Errorf("overrides %s: case %q: bad settle %q: %w", path, name, o.Settle, err)
			}
			converted.Settle = d
		}
		out[name] = converted
	}
	return out, nil
}
