package config

import (
	"slices"
	"strings"
)

// Allowlist is an immutable set of user IDs with admin rights.
type Allowlist struct {
	ids map[string]struct{}
}

// ParseAllowlist parses a comma-separated list of user IDs.
func ParseAllowlist(s string) Allowlist {
	ids := make(map[string]struct{})
	for _, id := range splitList(s) {
		ids[id] = struct{}{}
	}
	return Allowlist{ids: ids}
}

// NewAllowlist builds an Allowlist from explicit IDs.
func NewAllowlist(ids ...string) Allowlist {
	return ParseAllowlist(strings.Join(ids, ","))
}

// Contains reports whether id is allowed. Empty IDs never match.
func (a Allowlist) Contains(id string) bool {
	if id == "" {
		return false
	}
	_, ok := a.ids[id]
	return ok
}

// Len returns the number of IDs.
func (a Allowlist) Len() int {
	return len(a.ids)
}

// IDs returns the IDs in sorted order.
func (a Allowlist) IDs() []string {
	out := make([]string, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
