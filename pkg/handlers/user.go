package handlers

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"residadmin/pkg/claims"
	"residadmin/pkg/session"
	"residadmin/pkg/user"
)

type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MeResponse describes the signed-in session. Username and ExpiresAt are read
// from the token payload and are empty when the token is opaque.
type MeResponse struct {
	Authenticated bool       `json:"authenticated"`
	Roles         []string   `json:"roles"`
	Username      string     `json:"username,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type Handler struct {
	Service user.ServiceInterface
	Logger  *slog.Logger
}

func NewUserHandler(service user.ServiceInterface, logger *slog.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
	}
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req LoginForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	sess, err := h.Service.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeBackendError(w, h.Logger, "sign in", err)
		return
	}

	WriteResp(w, h.Logger, map[string]any{
		"authenticated": true,
		"roles":         sess.Roles.Strings(),
	}, http.StatusOK)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.SignOut(r.Context()); err != nil {
		h.Logger.Error("sign out", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, typeMessage, "unauthorized")
		return
	}

	resp := MeResponse{Authenticated: true, Roles: sess.Roles.Strings()}
	if c, err := claims.Parse(sess.AccessToken); err == nil {
		resp.Username = c.Username()
		if exp := c.Expiry(); !exp.IsZero() {
			resp.ExpiresAt = &exp
		}
	}
	writeJSON(w, h.Logger, resp)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req user.PasswordChange
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	if err := h.Service.ChangePassword(r.Context(), req); err != nil {
		writeBackendError(w, h.Logger, "change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)[muxVarUsername]

	raw, err := h.Service.DeleteAccount(r.Context(), username)
	if err != nil {
		writeBackendError(w, h.Logger, "delete account", err)
		return
	}
	writeRaw(w, h.Logger, raw)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q := user.Query{
		SortBy:        params.Get("sortBy"),
		SortDir:       user.SortDir(params.Get("sortDir")),
		Username:      params.Get("username"),
		Email:         params.Get("email"),
		Matricule:     params.Get("matricule"),
		StartActivity: params.Get("startActivity"),
	}
	for name, dst := range map[string]*int{"page": &q.Page, "size": &q.Size} {
		v := params.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, typeError, "invalid "+name)
			return
		}
		*dst = n
	}

	page, err := h.Service.List(r.Context(), q)
	if err != nil {
		writeBackendError(w, h.Logger, "list users", err)
		return
	}
	writeJSON(w, h.Logger, page)
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var u user.User
	if ok := DecodeJSONBody(w, r, &u); !ok {
		return
	}

	raw, err := h.Service.Add(r.Context(), &u)
	if err != nil {
		writeBackendError(w, h.Logger, "add user", err)
		return
	}
	writeRaw(w, h.Logger, raw)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var u user.User
	if ok := DecodeJSONBody(w, r, &u); !ok {
		return
	}

	raw, err := h.Service.Update(r.Context(), &u)
	if err != nil {
		writeBackendError(w, h.Logger, "update user", err)
		return
	}
	writeRaw(w, h.Logger, raw)
}

func DecodeJSONBody(w http.ResponseWriter, r *http.Request, req any) bool {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeError(w, http.StatusBadRequest, typeError, "invalid Content-Type")
		return false
	}

	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, typeError, "bad json")
		return false
	}

	return true
}

func WriteResp(w http.ResponseWriter, logger *slog.Logger, body map[string]any, status int) bool {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write JSON response", slog.Any("err", err))
		return false
	}
	return true
}
