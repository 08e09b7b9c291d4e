package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"residadmin/pkg/claims"
	"residadmin/pkg/gateway"
	"residadmin/pkg/session"
)

const (
	signInPath         = "/api/auth/signin"
	changePasswordPath = "/api/auth/change-password"
	deletePath         = "/api/auth/delete/"
	listPath           = "/api/auth/users"
	addPath            = "/api/auth/add-user"
	updatePath         = "/api/auth/update-user"

	defaultPageSize = 10
	defaultSortBy   = "username"
)

var (
	ErrNoToken = errors.New("sign-in response carries no access token")
	ErrInvalid = errors.New("invalid request")
)

// Requester is the authenticated gateway.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

type SessionStore interface {
	Current() (session.Session, bool)
	Save(ctx context.Context, s session.Session) error
	Clear(ctx context.Context) error
}

type ServiceInterface interface {
	SignIn(ctx context.Context, username, password string) (session.Session, error)
	SignOut(ctx context.Context) error
	ChangePassword(ctx context.Context, change PasswordChange) error
	DeleteAccount(ctx context.Context, username string) (*gateway.Raw, error)
	List(ctx context.Context, q Query) (*Page, error)
	Add(ctx context.Context, u *User) (*gateway.Raw, error)
	Update(ctx context.Context, u *User) (*gateway.Raw, error)
}

type Service struct {
	API     Requester
	Session SessionStore
	Logger  *slog.Logger
}

func NewService(api Requester, store SessionStore, logger *slog.Logger) *Service {
	return &Service{API: api, Session: store, Logger: logger}
}

// SignIn authenticates against the backend and replaces the current session.
// Roles come from the response, or from the token payload when the response
// has none.
func (s *Service) SignIn(ctx context.Context, username, password string) (session.Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return session.Session{}, fmt.Errorf("%w: username and password are required", ErrInvalid)
	}

	var resp SignInResponse
	body := map[string]string{"username": username, "password": password}
	if err := s.API.Do(ctx, http.MethodPost, signInPath, nil, body, &resp); err != nil {
		return session.Session{}, fmt.Errorf("sign in: %w", err)
	}
	if resp.AccessToken == "" {
		return session.Session{}, ErrNoToken
	}

	roles := resp.Roles
	if roles.Len() == 0 {
		fromToken, err := claims.RolesFromToken(resp.AccessToken)
		if err != nil {
			s.Logger.Debug("token payload unreadable, session has no roles", "error", err)
		}
		roles = fromToken
	}

	sess := session.Session{AccessToken: resp.AccessToken, Roles: roles}
	if err := s.Session.Save(ctx, sess); err != nil {
		return session.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.Logger.Info("signed in", "user", username, "roles", roles.Strings())
	return sess, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	if err := s.Session.Clear(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.Logger.Info("signed out")
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, change PasswordChange) error {
	if change.Username == "" || change.Password == "" || change.NewPassword == "" {
		return fmt.Errorf("%w: username, password and newPassword are required", ErrInvalid)
	}
	if err := s.API.Do(ctx, http.MethodPut, changePasswordPath, nil, change, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.Logger.Info("password changed", "user", change.Username)
	return nil
}

func (s *Service) DeleteAccount(ctx context.Context, username string) (*gateway.Raw, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalid)
	}

	out := &gateway.Raw{}
	if err := s.API.Do(ctx, http.MethodDelete, deletePath+url.PathEscape(username), nil, nil, out); err != nil {
		return nil, fmt.Errorf("delete account: %w", err)
	}
	s.Logger.Info("account deleted", "user", username)
	return out, nil
}

func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	var page Page
	if err := s.API.Do(ctx, http.MethodGet, listPath, q.values(), nil, &page); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &page, nil
}

func (s *Service) Add(ctx context.Context, u *User) (*gateway.Raw, error) {
	if u == nil || strings.TrimSpace(u.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalid)
	}

	payload := *u
	payload.ID = nil
	payload.Role = mapRole(u.Role)
	payload.Roles = nil

	out := &gateway.Raw{}
	if err := s.API.Do(ctx, http.MethodPost, addPath, nil, payload, out); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	s.Logger.Info("user added", "user", u.Username)
	return out, nil
}

func (s *Service) Update(ctx context.Context, u *User) (*gateway.Raw, error) {
	if u == nil || u.ID == nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalid)
	}

	payload := *u
	payload.Role = mapRole(u.Role)
	payload.Roles = nil

	out := &gateway.Raw{}
	if err := s.API.Do(ctx, http.MethodPut, updatePath, nil, payload, out); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.Logger.Info("user updated", "user", u.Username, "id", *u.ID)
	return out, nil
}

// mapRole narrows the role to what the add/update endpoints accept.
func mapRole(role string) string {
	if claims.Normalize(role) == "MODERATOR" {
		return "moderator"
	}
	return "user"
}

func (q Query) values() url.Values {
	v := url.Values{}

	page := q.Page
	if page < 0 {
		page = 0
	}
	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = defaultSortBy
	}
	sortDir := SortDir(strings.ToUpper(string(q.SortDir)))
	if sortDir != SortDesc {
		sortDir = SortAsc
	}

	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	v.Set("sortBy", sortBy)
	v.Set("sortDir", string(sortDir))

	for key, val := range map[string]string{
		"username":      q.Username,
		"email":         q.Email,
		"matricule":     q.Matricule,
		"startActivity": q.StartActivity,
	} {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(key, val)
		}
	}
	return v
}
