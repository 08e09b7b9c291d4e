package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/ssh/terminal"

	"residadmin/internal/config"
	"residadmin/internal/mongodb"
	"residadmin/internal/redisdb"
	"residadmin/internal/routing"
	"residadmin/internal/sqldb"
	"residadmin/pkg/claims"
	"residadmin/pkg/gateway"
	"residadmin/pkg/middleware"
	"residadmin/pkg/session"
	"residadmin/pkg/user"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *session.Store
	gateway *gateway.Gateway
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	repo, err := a.openRepo(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.store = session.NewStore(repo, cfg.SessionKey(), logger)
	if _, ok := a.store.Load(ctx); ok {
		logger.Info("session restored", "key", cfg.SessionKey())
	}

	opts := []gateway.Option{
		gateway.WithTimeout(cfg.HTTPTimeout),
		gateway.WithLogger(logger),
	}
	if cfg.Session.ClearOn401 {
		opts = append(opts, gateway.WithAutoClear(a.store))
	}
	a.gateway, err = gateway.New(cfg.APIBaseURL, nil, a.store, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openRepo(ctx context.Context) (session.Repository, error) {
	s := a.cfg.Session
	a.logger.Info("session backend", "backend", s.Backend)

	switch s.Backend {
	case config.BackendFile:
		return session.NewFileRepo(s.Dir), nil
	case config.BackendMemory:
		return session.NewMemoryRepo(), nil
	case config.BackendSQLite:
		db, err := sqldb.LoadDB(ctx, sqldb.DriverSQLite, s.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		return session.NewSQLiteRepo(db), nil
	case config.BackendMySQL:
		db, err := sqldb.LoadDB(ctx, sqldb.DriverMySQL, s.MySQLDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		return session.NewMySQLRepo(db), nil
	case config.BackendMongo:
		client, db, err := mongodb.LoadDB(ctx, s.MongoURI, s.MongoDBName)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		return session.NewMongoRepo(db), nil
	case config.BackendRedis:
		client, err := redisdb.LoadClient(ctx, redisdb.Options{Addr: s.RedisAddr, Password: s.RedisPass, DB: s.RedisDB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Close() })
		return session.NewRedisRepo(client, s.TTL), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", s.Backend)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) serve(ctx context.Context) error {
	r := mux.NewRouter()
	r.Use(middleware.Panic(a.logger))
	r.Use(middleware.RequestID(a.logger))

	routing.InitRoutes(r, routing.Deps{
		Store:  a.store,
		API:    a.gateway,
		Guard:  a.cfg.Guard,
		Logger: a.logger,
	})
	routing.ServePages(r, a.logger)
	routing.ServeFallback(r, a.logger)
	return routing.StartServer(ctx, a.cfg.ListenAddr, r, a.logger) // start server on LISTEN_ADDR
}

func (a *app) signIn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("signin: -u is required")
	}

	if *password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := terminal.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = string(raw)
	}

	svc := user.NewService(a.gateway, a.store, a.logger)
	sess, err := svc.SignIn(ctx, *username, *password)
	if err != nil {
		var rerr *gateway.ResponseError
		if errors.As(err, &rerr) {
			return fmt.Errorf("sign in rejected (%d): %s", rerr.StatusCode, rerr.Message())
		}
		return err
	}

	fmt.Fprintf(os.Stdout, "signed in as %s, roles: %s\n", *username, strings.Join(sess.Roles.Strings(), ", "))
	return nil
}

func (a *app) signOut(ctx context.Context) error {
	return user.NewService(a.gateway, a.store, a.logger).SignOut(ctx)
}

func (a *app) whoAmI(w io.Writer) error {
	sess, ok := a.store.Current()
	if !ok {
		fmt.Fprintln(w, "not signed in")
		return nil
	}

	fmt.Fprintf(w, "roles:   %s\n", strings.Join(sess.Roles.Strings(), ", "))
	c, err := claims.Parse(sess.AccessToken)
	if err != nil {
		fmt.Fprintln(w, "token:   opaque")
		return nil
	}
	if sub := c.Username(); sub != "" {
		fmt.Fprintf(w, "subject: %s\n", sub)
	}
	if exp := c.Expiry(); !exp.IsZero() {
		fmt.Fprintf(w, "expires: %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
