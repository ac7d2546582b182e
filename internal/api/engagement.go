package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/govlk/citizenport/internal/portal"
)

// EngagementHandler records visitor engagement events and serves the admin
// engagement feed.
type EngagementHandler struct {
	store    *portal.Store
	sessions *sessionManager
	logger   *slog.Logger
}

// NewEngagementHandler creates an engagement handler.
func NewEngagementHandler(store *portal.Store, sessions *sessionManager, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{store: store, sessions: sessions, logger: logger}
}

// RegisterRoutes registers engagement routes on the given mux.
func (h *EngagementHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/engagement", h.log)
	mux.HandleFunc("GET /api/admin/engagements", h.sessions.requireAdmin(h.recent))
}

// engagementRequest tolerates the frontend's loose typing: age may arrive
// as a number, a numeric string, or be absent.
type engagementRequest struct {
	UserID          string          `json:"user_id"`
	Age             json.RawMessage `json:"age"`
	Job             string          `json:"job"`
	Desires         []string        `json:"desires"`
	QuestionClicked string          `json:"question_clicked"`
	Service         string          `json:"service"`
	Source          string          `json:"source"`
}

func (h *EngagementHandler) log(w http.ResponseWriter, r *http.Request) {
	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	e := portal.Engagement{
		UserID:          req.UserID,
		Age:             parseAge(req.Age),
		Job:             req.Job,
		Desires:         req.Desires,
		QuestionClicked: req.QuestionClicked,
		Service:         req.Service,
		Source:          req.Source,
	}

	if err := h.store.LogEngagement(r.Context(), e); err != nil {
		h.logger.Error("logging engagement failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to log engagement")
		return
	}

	writeData(w, http.StatusOK, map[string]any{"status": "ok", "success": true})
}

func (h *EngagementHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	items, err := h.store.RecentEngagements(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing engagements failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list engagements")
		return
	}
	writeData(w, http.StatusOK, items)
}

// parseAge accepts a JSON number or numeric string; anything else drops the
// age rather than rejecting the whole event.
func parseAge(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return &v
		}
	}
	return nil
}
