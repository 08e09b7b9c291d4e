package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Store is the single source of truth for who is signed in. Current never
// blocks and never does I/O; Save and Clear persist first, then publish the
// new value with one atomic swap.
type Store struct {
	repo   Repository
	key    string
	logger *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[Session]
}

func NewStore(repo Repository, key string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:   repo,
		key:    key,
		logger: logger.With("component", "session"),
	}
}

func (s *Store) Key() string {
	return s.key
}

// Load restores the persisted record into memory. Unreadable or corrupt
// records are logged and treated as absent.
func (s *Store) Load(ctx context.Context) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.repo.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("session record unreadable", "key", s.key, "error", err)
		}
		s.publish(Session{})
		return Session{}, false
	}

	sess, err := Decode(data)
	if err != nil {
		s.logger.Warn("session record corrupt", "key", s.key, "error", err)
		s.publish(Session{})
		return Session{}, false
	}

	s.publish(sess)
	return s.Current()
}

// Save persists sess and makes it current. An absent sess removes the record.
func (s *Store) Save(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, sess)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.Save(ctx, Session{})
}

// ClearIfToken clears the session only while token is still the current one.
func (s *Store) ClearIfToken(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if token == "" || cur == nil || cur.AccessToken != token {
		return false, nil
	}
	if err := s.save(ctx, Session{}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Current() (Session, bool) {
	cur := s.current.Load()
	if cur == nil {
		return Session{}, false
	}
	return Session{AccessToken: cur.AccessToken, Roles: cur.Roles.Clone()}, true
}

func (s *Store) save(ctx context.Context, sess Session) error {
	if !sess.Present() {
		if err := s.repo.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete session record: %w", err)
		}
		s.publish(Session{})
		return nil
	}

	sess.Roles = sess.Roles.Clone()
	data, err := Encode(sess)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.repo.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist session record: %w", err)
	}

	s.publish(sess)
	return nil
}

func (s *Store) publish(sess Session) {
	if !sess.Present() {
		s.current.Store(nil)
		return
	}
	s.current.Store(&sess)
}
