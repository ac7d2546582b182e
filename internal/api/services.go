package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/govlk/citizenport/internal/portal"
)

// maxServicePayload bounds admin service uploads.
const maxServicePayload = 1 << 20

// ServiceHandler serves the public service catalogue and its admin
// management endpoints.
type ServiceHandler struct {
	store    *portal.Store
	sessions *sessionManager
	logger   *slog.Logger
}

// NewServiceHandler creates a service handler.
func NewServiceHandler(store *portal.Store, sessions *sessionManager, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{store: store, sessions: sessions, logger: logger}
}

// RegisterRoutes registers service routes on the given mux.
func (h *ServiceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/services", h.list)
	mux.HandleFunc("GET /api/services/{id}", h.get)

	mux.HandleFunc("GET /api/admin/services", h.sessions.requireAdmin(h.list))
	mux.HandleFunc("POST /api/admin/services", h.sessions.requireAdmin(h.upsert))
	mux.HandleFunc("DELETE /api/admin/services/{id}", h.sessions.requireAdmin(h.delete))
}

func (h *ServiceHandler) list(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.ListServices(r.Context())
	if err != nil {
		h.logger.Error("listing services failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list services")
		return
	}
	writeData(w, http.StatusOK, services)
}

func (h *ServiceHandler) get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	payload, err := h.store.GetService(r.Context(), id)
	if err != nil {
		if errors.Is(err, portal.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "service not found")
			return
		}
		h.logger.Error("getting service failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to get service")
		return
	}
	writeData(w, http.StatusOK, payload)
}

func (h *ServiceHandler) upsert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxServicePayload))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "failed to read body")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "body must be valid JSON")
		return
	}

	id, err := h.store.UpsertService(r.Context(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	writeData(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"id":      id,
		"message": "service saved",
	})
}

func (h *ServiceHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteService(r.Context(), id); err != nil {
		if errors.Is(err, portal.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "service not found")
			return
		}
		h.logger.Error("deleting service failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to delete service")
		return
	}
	writeData(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"message": "service deleted",
	})
}
