package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"residadmin/pkg/prestation"
)

const (
	typeError      string = "error"
	typeMessage    string = "message"
	muxVarID       string = "id"
	muxVarCode     string = "code"
	muxVarUsername string = "username"
)

type PrestationHandler struct {
	Service prestation.ServicePrestation
	Logger  *slog.Logger
}

func NewPrestationHandler(service prestation.ServicePrestation, logger *slog.Logger) *PrestationHandler {
	return &PrestationHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *PrestationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.GetAll(r.Context())
	if err != nil {
		writeBackendError(w, h.Logger, "list prestation types", err)
		return
	}
	writeJSON(w, h.Logger, types)
}

func (h *PrestationHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByCode(r.Context(), mux.Vars(r)[muxVarCode])
	if err != nil {
		writeBackendError(w, h.Logger, "get prestation type", err)
		return
	}
	writeJSON(w, h.Logger, p)
}

func (h *PrestationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p prestation.PrestationType
	if ok := DecodeJSONBody(w, r, &p); !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), &p)
	if err != nil {
		writeBackendError(w, h.Logger, "create prestation type", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if ok := writeJSON(w, h.Logger, created); ok {
		h.Logger.Info("prestation type created", "code", created.Code)
	}
}

func (h *PrestationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var p prestation.PrestationType
	if ok := DecodeJSONBody(w, r, &p); !ok {
		return
	}

	updated, err := h.Service.Update(r.Context(), id, &p)
	if err != nil {
		writeBackendError(w, h.Logger, "update prestation type", err)
		return
	}
	if ok := writeJSON(w, h.Logger, updated); ok {
		h.Logger.Info("prestation type updated", "id", id)
	}
}

func (h *PrestationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeBackendError(w, h.Logger, "delete prestation type", err)
		return
	}
	h.Logger.Info("prestation type deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[muxVarID], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid id")
		return 0, false
	}
	return id, true
}
