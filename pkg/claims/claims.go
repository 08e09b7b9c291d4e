package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

var ErrNoToken = errors.New("empty token")

// Claims is the part of the backend access token the console cares about.
// The signature is never checked here: the backend is the only verifier,
// the console only reads roles and expiry for display and navigation.
type Claims struct {
	Roles       json.RawMessage `json:"roles,omitempty"`
	Authorities json.RawMessage `json:"authorities,omitempty"`
	Scope       json.RawMessage `json:"scope,omitempty"`
	jwt.StandardClaims
}

// Parse decodes the payload of token without verifying it.
func Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}

	c := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, c); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return c, nil
}

// RoleSet picks roles, then authorities, then scope, first one present wins.
// A string scope is space-delimited.
func (c *Claims) RoleSet() RoleSet {
	for _, raw := range []json.RawMessage{c.Roles, c.Authorities} {
		if isPresent(raw) {
			var set RoleSet
			if err := json.Unmarshal(raw, &set); err == nil {
				return set
			}
		}
	}

	if isPresent(c.Scope) {
		var scope string
		if err := json.Unmarshal(c.Scope, &scope); err == nil {
			return NewRoleSet(strings.Fields(scope)...)
		}
		var set RoleSet
		if err := json.Unmarshal(c.Scope, &set); err == nil {
			return set
		}
	}

	return RoleSet{}
}

func (c *Claims) Username() string {
	return c.Subject
}

// Expiry returns the zero time when the token carries no exp claim.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0).UTC()
}

// RolesFromToken is Parse followed by RoleSet. Undecodable tokens yield an
// empty set and the parse error.
func RolesFromToken(token string) (RoleSet, error) {
	c, err := Parse(token)
	if err != nil {
		return RoleSet{}, err
	}
	return c.RoleSet(), nil
}

func isPresent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
