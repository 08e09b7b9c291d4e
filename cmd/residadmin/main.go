package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"residadmin/internal/config"
	"residadmin/internal/logger"
)

const usage = `usage: residadmin <command> [flags]

commands:
  serve     run the admin console (default)
  signin    sign in and persist the session
  signout   drop the persisted session
  whoami    show the persisted session
`

var commands = map[string]bool{"serve": true, "signin": true, "signout": true, "whoami": true}

// parseCommand splits argv into the subcommand and its flags. Help and unknown
// commands are resolved here, before any configuration is read.
func parseCommand(argv []string, stdout, stderr io.Writer) (cmd string, args []string, code int, done bool) {
	cmd, args = "serve", argv
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch {
	case cmd == "help":
		fmt.Fprint(stdout, usage)
		return cmd, args, 0, true
	case !commands[cmd]:
		fmt.Fprint(stderr, usage)
		return cmd, args, 2, true
	}
	return cmd, args, 0, false
}

func main() {
	cmd, args, code, done := parseCommand(os.Args[1:], os.Stdout, os.Stderr)
	if done {
		os.Exit(code)
	}

	cfg := config.Load() // load env var from .env or $START
	log := logger.Load(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	switch cmd {
	case "serve":
		err = app.serve(ctx)
	case "signin":
		err = app.signIn(ctx, args)
	case "signout":
		err = app.signOut(ctx)
	case "whoami":
		err = app.whoAmI(os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}
