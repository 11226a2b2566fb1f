package role

import (
	"fmt"
	"strings"
)

// Role identifies one of the account roles a user can hold. A user always
// holds at least one role; the first role granted is the primary one.
type Role string

const (
	Client       Role = "CLIENT"
	Restaurateur Role = "RESTAURATEUR"
	Livreur      Role = "LIVREUR"
	Admin        Role = "ADMIN"
)

// All lists every known role.
var All = []Role{Client, Restaurateur, Livreur, Admin}

// Parse normalizes and validates a role name.
func Parse(raw string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, r := range All {
		if candidate == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Set is an ordered collection of roles. Order is preserved so the first
// element stays the user's primary role; membership ignores order.
type Set []Role

// NewSet builds a set, dropping duplicates while keeping first-seen order.
func NewSet(roles ...Role) Set {
	var set Set
	for _, r := range roles {
		set = set.Add(r)
	}
	return set
}

// ParseSet parses raw role names into a Set.
func ParseSet(raw []string) (Set, error) {
	var set Set
	for _, name := range raw {
		r, err := Parse(name)
		if err != nil {
			return nil, err
		}
		set = set.Add(r)
	}
	return set, nil
}

// Has reports whether the set contains r.
func (s Set) Has(r Role) bool {
	for _, held := range s {
		if held == r {
			return true
		}
	}
	return false
}

// Add returns a set containing r, keeping insertion order and uniqueness.
func (s Set) Add(r Role) Set {
	if s.Has(r) {
		return s
	}
	return append(s, r)
}

// Remove returns the set without r. Order of the remaining roles is kept,
// so removing the primary role promotes the next one.
func (s Set) Remove(r Role) Set {
	var out Set
	for _, held := range s {
		if held != r {
			out = append(out, held)
		}
	}
	return out
}

// Primary returns the first-granted role, or the empty role for an empty set.
func (s Set) Primary() Role {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Strings renders the set for serialization.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// HasAny decides whether a caller holding held may perform an operation
// restricted to required. An empty required set means the operation is
// public. The caller needs one matching role, not all of them.
func HasAny(required, held Set) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if held.Has(r) {
			return true
		}
	}
	return false
}
