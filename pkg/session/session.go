package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"residadmin/pkg/claims"
)

var (
	ErrNotFound = errors.New("session record not found")
	ErrCorrupt  = errors.New("session record corrupt")
)

type contextKey string

const sessionContextKey contextKey = "session"

// Session is the authentication state of the console operator. A Session
// without a token is absent.
type Session struct {
	AccessToken string
	Roles       claims.RoleSet
}

func (s Session) Present() bool {
	return s.AccessToken != ""
}

// Record is the persisted form of a Session.
type Record struct {
	AccessToken string         `json:"accessToken"`
	Roles       claims.RoleSet `json:"roles,omitempty"`
}

// Repository persists opaque records under a key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key builds the application and version scoped record key.
func Key(appName, version string) string {
	if version == "" {
		version = "1.0"
	}
	return fmt.Sprintf("%s-auth-v%s", appName, version)
}

func Encode(s Session) ([]byte, error) {
	roles := s.Roles
	if roles == nil {
		roles = claims.RoleSet{}
	}
	return json.Marshal(Record{AccessToken: s.AccessToken, Roles: roles})
}

// Decode parses a persisted record. A well formed record without a token
// decodes to an absent Session and no error.
func Decode(data []byte) (Session, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	if rec.AccessToken == "" {
		return Session{}, nil
	}
	if rec.Roles == nil {
		rec.Roles = claims.RoleSet{}
	}
	return Session{AccessToken: rec.AccessToken, Roles: rec.Roles}, nil
}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	if !ok || !s.Present() {
		return Session{}, false
	}
	return s, true
}
