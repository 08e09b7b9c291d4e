package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const rolePrefix = "ROLE_"

// Role is a normalized role identifier: trimmed, upper-cased, without the
// ROLE_ prefix. "ROLE_MODERATOR", "moderator" and "Moderator" are the same Role.
type Role string

func Normalize(raw string) Role {
	r := strings.ToUpper(strings.TrimSpace(raw))
	r = strings.TrimPrefix(r, rolePrefix)
	return Role(strings.TrimSpace(r))
}

// RoleClaim is one role entry as it appears on the wire. The backend sends
// either a bare string or an object carrying name, role, authority or value.
type RoleClaim struct {
	Value string
}

var roleObjectKeys = []string{"name", "role", "authority", "value"}

func (c *RoleClaim) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		c.Value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Value = s
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("role claim: %w", err)
	}
	for _, key := range roleObjectKeys {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		if str := fmt.Sprint(v); str != "" {
			c.Value = str
			return nil
		}
	}
	c.Value = ""
	return nil
}

// RoleSet is the canonical set of roles held by a session.
type RoleSet map[Role]struct{}

func NewRoleSet(raw ...string) RoleSet {
	set := make(RoleSet, len(raw))
	for _, r := range raw {
		set.Add(r)
	}
	return set
}

// Add normalizes raw and inserts it. Empty roles are dropped.
func (s RoleSet) Add(raw string) {
	if r := Normalize(raw); r != "" {
		s[r] = struct{}{}
	}
}

func (s RoleSet) Has(raw string) bool {
	r := Normalize(raw)
	if r == "" {
		return false
	}
	_, ok := s[r]
	return ok
}

// HasAny reports whether the set holds at least one of required.
func (s RoleSet) HasAny(required ...string) bool {
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Len() int {
	return len(s)
}

// Strings returns the roles sorted, for stable output.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON accepts an array of role claims or a single claim.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	set := make(RoleSet)
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var list []RoleClaim
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("role set: %w", err)
		}
		for _, c := range list {
			set.Add(c.Value)
		}
	} else {
		var one RoleClaim
		if err := json.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("role set: %w", err)
		}
		set.Add(one.Value)
	}

	*s = set
	return nil
}
