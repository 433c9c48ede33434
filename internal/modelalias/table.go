// Package modelalias maps user-facing model names to ordered lists of upstream
// model identifiers. The table is built once at configuration load and is
// immutable afterwards, so concurrent resolution needs no locking.
package modelalias

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownAlias is returned by Resolve for names not present in the table.
// Matching is case-sensitive and exact.
var ErrUnknownAlias = errors.New("unknown model alias")

// Alias is one configuration entry: a public name and its ordered upstream
// targets. Targets beyond the first are fallbacks, tried in order when the
// previous target is unavailable.
type Alias struct {
	Name    string
	Targets []string
}

// Table resolves aliases to upstream model identifiers.
type Table struct {
	entries map[string][]string
	names   []string
}

// New validates the given aliases and builds an immutable table.
// Empty names, empty or partially empty target lists, and duplicate names are
// configuration errors surfaced at load time, before any traffic is served.
func New(aliases []Alias) (*Table, error) {
	if len(aliases) == 0 {
		return nil, errors.New("at least one model alias must be configured")
	}

	entries := make(map[string][]string, len(aliases))
	names := make([]string, 0, len(aliases))

	for i, alias := range aliases {
		if alias.Name == "" {
			return nil, fmt.Errorf("model alias %d: name must not be empty", i)
		}
		if _, exists := entries[alias.Name]; exists {
			return nil, fmt.Errorf("model alias %q: duplicate definition", alias.Name)
		}
		if len(alias.Targets) == 0 {
			return nil, fmt.Errorf("model alias %q: at least one target model is required", alias.Name)
		}
		for j, target := range alias.Targets {
			if target == "" {
				return nil, fmt.Errorf("model alias %q: target %d must not be empty", alias.Name, j)
			}
		}

		entries[alias.Name] = slices.Clone(alias.Targets)
		names = append(names, alias.Name)
	}

	return &Table{entries: entries, names: names}, nil
}

// Resolve returns the ordered upstream model identifiers for the given alias.
// The returned slice is a copy; callers may not mutate table state through it.
func (t *Table) Resolve(name string) ([]string, error) {
	targets, ok := t.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, name)
	}
	return slices.Clone(targets), nil
}

// Names returns the configured alias names in declaration order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}
