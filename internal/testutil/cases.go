// Package testutil provides shared test helpers for fncall tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CasesFile is the conformance table, relative to the module root.
const CasesFile = "testdata/cases.yaml"

// Case is one conformance case loaded from a YAML table.
type Case struct {
	Name      string   `yaml:"name"`
	Cmd       string   `yaml:"cmd"`
	Input     string   `yaml:"input"`
	AutoQuote bool     `yaml:"autoQuote"`
	Tags      []string `yaml:"tags,omitempty"`
	Expect    Expected `yaml:"expect"`
}

// Expected describes the outcome of running a case.
type Expected struct {
	ExitCode int `yaml:"exitCode"`
	// Stdout is compared as JSON against the parsed call.
	Stdout any `yaml:"stdout,omitempty"`
	// StdoutText is compared verbatim, used by fmt cases.
	StdoutText string `yaml:"stdoutText,omitempty"`
	// Stderr is a list of diagnostic subsets that must all be present.
	Stderr         []map[string]any `yaml:"stderr,omitempty"`
	StderrContains string           `yaml:"stderrContains,omitempty"`
}

// LoadCases reads a YAML case table.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	seen := make(map[string]bool, len(cases))
	for i, c := range cases {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: case %d has no name", path, i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%s: duplicate case name %q", path, c.Name)
		}
		seen[c.Name] = true
		if c.Cmd == "" {
			cases[i].Cmd = "parse"
		}
	}
	return cases, nil
}

// HasTag reports whether the case carries tag.
func (c Case) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeJSON round-trips v through encoding/json so values decoded from
// YAML and values produced by MarshalJSON compare alike.
func NormalizeJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsSubset checks if expected is a subset of actual (for JSON comparison).
// Lists must match element for element.
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				return false
			}
			if !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) != len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case float64:
		if af, ok := actual.(float64); ok {
			return e == af
		}
		return false

	case string:
		if as, ok := actual.(string); ok {
			return e == as
		}
		return false

	case bool:
		if ab, ok := actual.(bool); ok {
			return e == ab
		}
		return false

	case nil:
		return actual == nil
	}
	return false
}
