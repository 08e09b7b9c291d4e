package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"residadmin/pkg/gateway"
	"residadmin/pkg/prestation"
	"residadmin/pkg/user"
)

func writeJSON(w http.ResponseWriter, logger *slog.Logger, data any) bool {
	resp, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to serialize JSON response", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, "failed json marshal")
		return false
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(resp); err != nil {
		logger.Error("Failed to write response to client", "error", err)
		return false
	}
	return true
}

// writeRaw relays a backend success body as received.
func writeRaw(w http.ResponseWriter, logger *slog.Logger, raw *gateway.Raw) {
	if raw == nil || len(raw.Body) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ct := raw.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	status := raw.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := w.Write(raw.Body); err != nil {
		logger.Error("Failed to write response to client", "error", err)
	}
}

// writeBackendError forwards backend rejections untouched, status and body
// included, so the caller sees the 401 or validation message itself.
func writeBackendError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	var rerr *gateway.ResponseError
	switch {
	case errors.As(err, &rerr):
		logger.Warn(action, "status", rerr.StatusCode, "message", rerr.Message())
		if len(rerr.Body) == 0 {
			writeError(w, rerr.StatusCode, typeMessage, rerr.Message())
			return
		}
		ct := rerr.Header.Get("Content-Type")
		if ct == "" {
			ct = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		w.WriteHeader(rerr.StatusCode)
		_, _ = w.Write(rerr.Body)
	case errors.Is(err, user.ErrInvalid), errors.Is(err, prestation.ErrInvalid):
		writeError(w, http.StatusBadRequest, typeError, err.Error())
	case errors.Is(err, gateway.ErrNetwork), errors.Is(err, user.ErrNoToken):
		logger.Error(action, "error", err)
		writeError(w, http.StatusBadGateway, typeError, "backend unavailable")
	default:
		logger.Error(action, "error", err)
		writeError(w, http.StatusInternalServerError, typeError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, field, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{field: msg}); err != nil {
		return
	}
}
