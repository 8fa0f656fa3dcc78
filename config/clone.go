// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/clone.go
// Summary: Clone helpers for config maps.

package config

// Clone copies the config, its sections and any lists inside them, so a
// widget may edit the result without touching the cached defaults.
func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	clone := make(Config, len(cfg))
	for name, value := range cfg {
		switch v := value.(type) {
		case map[string]interface{}:
			clone[name] = cloneSection(v)
		case Section:
			clone[name] = cloneSection(v)
		default:
			clone[name] = cloneValue(v)
		}
	}
	return clone
}

func cloneSection(s map[string]interface{}) Section {
	out := make(Section, len(s))
	for key, value := range s {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		return append([]interface{}(nil), list...)
	}
	return v
}

// Inherit returns a copy of cfg with every key it lacks taken from parent.
// Wrapper widgets use it to fall back to the wrapped widget's settings.
func Inherit(cfg, parent Config) Config {
	out := Clone(cfg)
	if out == nil {
		out = make(Config)
	}
	overlay(out, Clone(parent))
	return out
}
