package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/govlk/citizenport/internal/knowledge"
	"github.com/govlk/citizenport/internal/portal"
)

// AdminHandler serves login, logout and the management dashboard endpoints.
type AdminHandler struct {
	store    *portal.Store
	answers  AnswerService
	sessions *sessionManager
	logger   *slog.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(store *portal.Store, answers AnswerService, sessions *sessionManager, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: store, answers: answers, sessions: sessions, logger: logger}
}

// RegisterRoutes registers admin routes on the given mux.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admin/login", h.login)
	mux.HandleFunc("POST /api/admin/logout", h.sessions.requireAdmin(h.logout))
	mux.HandleFunc("GET /api/admin/insights", h.sessions.requireAdmin(h.insights))
	mux.HandleFunc("GET /api/admin/manage/data", h.sessions.requireAdmin(h.manageData))
	mux.HandleFunc("POST /api/admin/index-documents", h.sessions.requireAdmin(h.indexDocuments))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "username and password required")
		return
	}

	ok, err := h.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("admin authentication failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "login failed")
		return
	}
	if !ok {
		h.logger.Warn("rejected admin login", "username", req.Username)
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
		return
	}

	h.sessions.issue(w, req.Username)
	writeData(w, http.StatusOK, map[string]string{"status": "ok", "username": req.Username})
}

func (h *AdminHandler) logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.clear(w)
	writeData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AdminHandler) insights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.store.Insights(r.Context())
	if err != nil {
		h.logger.Error("computing insights failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to compute insights")
		return
	}
	writeData(w, http.StatusOK, insights)
}

func (h *AdminHandler) manageData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	database := "connected"
	engagements, err := h.store.CountEngagements(ctx)
	if err != nil {
		h.logger.Warn("counting engagements failed", "error", err)
		database = "offline"
	}
	services, err := h.store.CountServices(ctx)
	if err != nil {
		database = "offline"
	}

	aiSystem := "online"
	var knowledgeSize int
	stats, err := h.answers.Stats(ctx)
	if err != nil {
		h.logger.Warn("reading knowledge stats failed", "error", err)
		aiSystem = "offline"
	} else {
		knowledgeSize = stats.TotalDocuments
	}

	writeData(w, http.StatusOK, map[string]any{
		"database":            database,
		"ai_system":           aiSystem,
		"total_engagements":   engagements,
		"total_services":      services,
		"knowledge_base_size": knowledgeSize,
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
	})
}

type indexDocumentsRequest struct {
	Documents []struct {
		Text    string `json:"text"`
		Source  string `json:"source"`
		Title   string `json:"title"`
		ChunkID int    `json:"chunk_id"`
	} `json:"documents"`
}

func (h *AdminHandler) indexDocuments(w http.ResponseWriter, r *http.Request) {
	var req indexDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "documents required")
		return
	}

	docs := make([]knowledge.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = knowledge.Document{
			Text:    d.Text,
			Source:  d.Source,
			Title:   d.Title,
			ChunkID: d.ChunkID,
		}
	}

	count, err := h.answers.AddDocuments(r.Context(), docs)
	if err != nil {
		h.logger.Error("indexing documents failed", "indexed", count, "error", err)
		if count == 0 {
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to index documents")
			return
		}
	}

	stats, statsErr := h.answers.Stats(r.Context())
	total := 0
	if statsErr == nil {
		total = stats.TotalDocuments
	}

	writeData(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully indexed %d documents", count),
		"count":   count,
		"total":   total,
	})
}
