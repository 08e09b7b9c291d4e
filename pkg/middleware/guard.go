package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"residadmin/pkg/session"
)

const (
	DefaultSignInPath   = "/auth/signin"
	DefaultFallbackPath = "/"
)

type Outcome int

const (
	Evaluating Outcome = iota
	Allowed
	DeniedNoSession
	DeniedRole
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case DeniedNoSession:
		return "denied_no_session"
	case DeniedRole:
		return "denied_role"
	default:
		return "evaluating"
	}
}

// Rule describes what a navigation target requires. An empty Roles list
// only requires a session; otherwise any one of Roles is enough.
type Rule struct {
	Roles        []string
	FallbackPath string
	SignInPath   string
}

type Decision struct {
	Outcome  Outcome
	Redirect string
}

// SessionSource is read on every evaluation.
type SessionSource interface {
	Current() (session.Session, bool)
}

// Evaluate decides whether sess may enter a target guarded by rule.
func Evaluate(sess session.Session, ok bool, rule Rule) Decision {
	if !ok || !sess.Present() {
		return Decision{Outcome: DeniedNoSession, Redirect: orDefault(rule.SignInPath, DefaultSignInPath)}
	}
	if len(rule.Roles) > 0 && !sess.Roles.HasAny(rule.Roles...) {
		return Decision{Outcome: DeniedRole, Redirect: orDefault(rule.FallbackPath, DefaultFallbackPath)}
	}
	return Decision{Outcome: Allowed}
}

// Guard evaluates rule before every request. Browsers are redirected, API
// callers get 401 or 403 with the redirect target in the body. Allowed
// requests carry the session in their context.
func Guard(source SessionSource, rule Rule, logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := source.Current()
			decision := Evaluate(sess, ok, rule)

			if decision.Outcome == Allowed {
				next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
				return
			}

			logger.Info("navigation denied",
				"path", r.URL.Path, "outcome", decision.Outcome.String(), "redirect", decision.Redirect)

			if wantsHTML(r) {
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}

			status, msg := http.StatusUnauthorized, "unauthorized"
			if decision.Outcome == DeniedRole {
				status, msg = http.StatusForbidden, "forbidden"
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if err := json.NewEncoder(w).Encode(map[string]string{
				"message":  msg,
				"redirect": decision.Redirect,
			}); err != nil {
				logger.Error("failed to write guard response", "error", err)
			}
		})
	}
}

// RequireAuth is a Guard with no role requirement.
func RequireAuth(source SessionSource, signInPath string, logger *slog.Logger) mux.MiddlewareFunc {
	return Guard(source, Rule{SignInPath: signInPath}, logger)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
