package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleProfile names a subset of rule categories/severities to validate
// against, layered on top of validate_rules per SPEC_FULL's supplemented
// "profile overlays for validation strictness" feature.
type RuleProfile struct {
	Name       string   `yaml:"name" json:"name"`
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	Severities []string `yaml:"severities,omitempty" json:"severities,omitempty"`
}

// LoadRuleProfile loads a named rule profile from <profilesDir>/profile_<name>.yaml.
func LoadRuleProfile(profilesDir, name string) (*RuleProfile, error) {
	name = strings.ToLower(name)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", name))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rule profile %q: %w", name, err)
	}

	var profile RuleProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse rule profile %q: %w", name, err)
	}

	if profile.Name == "" {
		profile.Name = name
	}
	return &profile, nil
}

// DefaultProfiles returns the built-in "critical-only" and "full" profiles,
// available even without a profiles directory on disk.
func DefaultProfiles() map[string]*RuleProfile {
	return map[string]*RuleProfile{
		"critical-only": {
			Name:       "critical-only",
			Severities: []string{"CRITICAL"},
		},
		"full": {
			Name: "full",
		},
	}
}

// Matches reports whether a rule with the given category and severity falls
// within this profile. An empty Categories/Severities list matches anything.
func (p *RuleProfile) Matches(category, severity string) bool {
	if p == nil {
		return true
	}
	if len(p.Categories) > 0 && !contains(p.Categories, category) {
		return false
	}
	if len(p.Severities) > 0 && !contains(p.Severities, severity) {
		return false
	}
	return true
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
