package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"residadmin/internal/config"
	"residadmin/pkg/handlers"
	"residadmin/pkg/middleware"
	"residadmin/pkg/prestation"
	"residadmin/pkg/session"
	"residadmin/pkg/user"
)

// staffRoles may manage users and prestation types.
var staffRoles = []string{"ADMIN", "MODERATOR"}

const defaultStaffDeniedPath = "/403"

// Deps is what the console routes are built from.
type Deps struct {
	Store  *session.Store
	API    user.Requester
	Guard  config.GuardConfig
	Logger *slog.Logger
}

func InitRoutes(r *mux.Router, d Deps) {
	userService := user.NewService(d.API, d.Store, d.Logger)
	userHandler := handlers.NewUserHandler(userService, d.Logger)

	prestationService := prestation.NewService(d.API)
	prestationHandler := handlers.NewPrestationHandler(prestationService, d.Logger)

	staffDenied := d.Guard.StaffDeniedPath
	if staffDenied == "" {
		staffDenied = defaultStaffDeniedPath
	}

	requireAuth := middleware.RequireAuth(d.Store, d.Guard.SignInPath, d.Logger)
	staffOnly := middleware.Guard(d.Store, middleware.Rule{
		Roles:        staffRoles,
		FallbackPath: staffDenied,
		SignInPath:   d.Guard.SignInPath,
	}, d.Logger)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	authRouter := r.PathPrefix("/auth").Subrouter()
	accountRouter := r.PathPrefix("/auth").Subrouter()
	usersRouter := r.PathPrefix("/users").Subrouter()
	typesReadRouter := r.PathPrefix("/prestation-types").Methods(http.MethodGet).Subrouter()
	typesWriteRouter := r.PathPrefix("/prestation-types").Methods(http.MethodPost, http.MethodPut, http.MethodDelete).Subrouter()

	accountRouter.Use(requireAuth)
	usersRouter.Use(staffOnly)
	typesReadRouter.Use(requireAuth)
	typesWriteRouter.Use(staffOnly)

	/* auth routers */
	authRouter.HandleFunc("/signin", userHandler.SignIn).Methods("POST").Name("signin")
	authRouter.HandleFunc("/signout", userHandler.SignOut).Methods("POST").Name("signout")

	/* account routers */
	accountRouter.HandleFunc("/me", userHandler.Me).Methods("GET")
	accountRouter.HandleFunc("/password", userHandler.ChangePassword).Methods("PUT")
	accountRouter.HandleFunc("/account/{username}", userHandler.DeleteAccount).Methods("DELETE")

	/* users routers */
	usersRouter.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersRouter.HandleFunc("", userHandler.AddUser).Methods("POST")
	usersRouter.HandleFunc("", userHandler.UpdateUser).Methods("PUT")

	/* prestation type routers */
	typesReadRouter.HandleFunc("", prestationHandler.GetAll)
	typesReadRouter.HandleFunc("/{code}", prestationHandler.GetByCode)
	typesWriteRouter.HandleFunc("", prestationHandler.Create).Methods("POST")
	typesWriteRouter.HandleFunc("/{id:[0-9]+}", prestationHandler.Update).Methods("PUT")
	typesWriteRouter.HandleFunc("/{id:[0-9]+}", prestationHandler.Delete).Methods("DELETE")
}

// ServePages mounts the public landing and access-denied pages.
func ServePages(r *mux.Router, logger *slog.Logger) {
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteResp(w, logger, map[string]any{"message": "residadmin console"}, http.StatusOK)
	}).Methods("GET")
	r.HandleFunc("/403", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteResp(w, logger, map[string]any{"message": "access denied"}, http.StatusForbidden)
	}).Methods("GET")
}

func ServeFallback(r *mux.Router, logger *slog.Logger) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok := handlers.WriteResp(w, logger, map[string]any{"message": "not found"}, http.StatusNotFound); !ok {
			logger.Error("failed to write fallback JSON", slog.String("path", r.URL.Path))
		}
	})
}

// StartServer serves until ctx is canceled, then drains for up to five seconds.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("The server is running", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
