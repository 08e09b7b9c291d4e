package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residadmin/internal/config"
	"residadmin/pkg/claims"
	"residadmin/pkg/session"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(backend string) *config.Config {
	return &config.Config{
		APIBaseURL:  "http://localhost:8086",
		AppName:     "residadmin",
		AppVersion:  "1.0",
		HTTPTimeout: time.Second,
		Session:     config.SessionConfig{Backend: backend},
		Guard:       config.GuardConfig{FallbackPath: "/", SignInPath: "/auth/signin"},
	}
}

func TestWhoAmI(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(config.BackendMemory), quietLogger)
	require.NoError(t, err)
	defer a.Close()

	var buf bytes.Buffer
	require.NoError(t, a.whoAmI(&buf))
	assert.Equal(t, "not signed in\n", buf.String())

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, a.store.Save(ctx, session.Session{AccessToken: tok, Roles: claims.NewRoleSet("ROLE_ADMIN")}))

	buf.Reset()
	require.NoError(t, a.whoAmI(&buf))
	assert.Contains(t, buf.String(), "roles:   ADMIN")
	assert.Contains(t, buf.String(), "subject: admin")
	assert.Contains(t, buf.String(), "expires:")
}

func TestNewApp_RestoresFileSession(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.BackendFile)
	cfg.Session.Dir = t.TempDir()

	first, err := newApp(ctx, cfg, quietLogger)
	require.NoError(t, err)
	require.NoError(t, first.store.Save(ctx, session.Session{AccessToken: "opaque", Roles: claims.NewRoleSet("USER")}))
	first.Close()

	second, err := newApp(ctx, cfg, quietLogger)
	require.NoError(t, err)
	defer second.Close()

	sess, ok := second.store.Current()
	require.True(t, ok)
	assert.Equal(t, "opaque", sess.AccessToken)

	var buf bytes.Buffer
	require.NoError(t, second.whoAmI(&buf))
	assert.Contains(t, buf.String(), "token:   opaque")

	require.NoError(t, second.signOut(ctx))
	_, ok = second.store.Current()
	assert.False(t, ok)
}

func TestNewApp_SQLiteBackend(t *testing.T) {
	cfg := testConfig(config.BackendSQLite)
	cfg.Session.SQLitePath = filepath.Join(t.TempDir(), "session.db")

	a, err := newApp(context.Background(), cfg, quietLogger)
	require.NoError(t, err)
	defer a.Close()

	assert.Len(t, a.closers, 1)
}

func TestSignIn_RequiresUsername(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(config.BackendMemory), quietLogger)
	require.NoError(t, err)

	assert.Error(t, a.signIn(context.Background(), []string{"-p", "pw"}))
}

func TestParseCommand(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	tests := []struct {
		name     string
		argv     []string
		wantCmd  string
		wantArgs []string
		wantCode int
		wantDone bool
		wantOut  bool
	}{
		{name: "default serve", argv: nil, wantCmd: "serve"},
		{name: "flags only", argv: []string{"-x"}, wantCmd: "serve", wantArgs: []string{"-x"}},
		{name: "signin flags", argv: []string{"signin", "-u", "bob"}, wantCmd: "signin", wantArgs: []string{"-u", "bob"}},
		{name: "help without config", argv: []string{"help"}, wantCmd: "help", wantDone: true, wantOut: true},
		{name: "unknown", argv: []string{"deploy"}, wantCmd: "deploy", wantCode: 2, wantDone: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd, args, code, done := parseCommand(test.argv, &stdout, &stderr)

			assert.Equal(t, test.wantCmd, cmd)
			if test.wantArgs != nil {
				assert.Equal(t, test.wantArgs, args)
			}
			assert.Equal(t, test.wantCode, code)
			assert.Equal(t, test.wantDone, done)
			if test.wantOut {
				assert.Contains(t, stdout.String(), "usage: residadmin")
			}
			if test.wantCode == 2 {
				assert.Contains(t, stderr.String(), "usage: residadmin")
			}
		})
	}
}
