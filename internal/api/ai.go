package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/govlk/citizenport/internal/knowledge"
	"github.com/govlk/citizenport/internal/rag"
)

// AnswerService is what the AI endpoints need from the answering pipeline.
type AnswerService interface {
	AnswerQuery(ctx context.Context, query string, k int) (rag.Answer, error)
	AddDocuments(ctx context.Context, docs []knowledge.Document) (int, error)
	Stats(ctx context.Context) (rag.Stats, error)
}

// Chatter runs free-form conversation turns with history.
type Chatter interface {
	Chat(ctx context.Context, message string, history []rag.Message) (string, []rag.Message, error)
}

// AIHandler serves the AI search and chat endpoints.
type AIHandler struct {
	answers AnswerService
	chatter Chatter
	logger  *slog.Logger

	// defaultTopK applies when a request leaves top_k unset; zero defers to
	// the pipeline's own default.
	defaultTopK int

	// searchLog records queries for the insights dashboard; nil disables
	// logging.
	searchLog SearchLogger
}

// SearchLogger records each AI query and whether it produced an answer.
type SearchLogger interface {
	LogAISearch(ctx context.Context, query string, success bool) error
}

// NewAIHandler creates an AI handler.
func NewAIHandler(answers AnswerService, chatter Chatter, searchLog SearchLogger, logger *slog.Logger) *AIHandler {
	return &AIHandler{answers: answers, chatter: chatter, searchLog: searchLog, logger: logger}
}

// RegisterRoutes registers AI routes on the given mux.
func (h *AIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ai/search", h.search)
	mux.HandleFunc("POST /api/ai/chat", h.chat)
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (h *AIHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	query := strings.TrimSpace(req.Query)
	// Unrendered template variables from automation tools arrive as
	// literal "{{...}}" strings.
	if query == "" || strings.Contains(query, "{{") {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query must be real text")
		return
	}

	k := req.TopK
	if k <= 0 {
		k = h.defaultTopK
	}

	answer, err := h.answers.AnswerQuery(r.Context(), query, k)
	if err != nil {
		if errors.Is(err, knowledge.ErrValidation) {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		h.logger.Error("answer query failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "search failed")
		return
	}

	if h.searchLog != nil {
		if err := h.searchLog.LogAISearch(r.Context(), query, answer.Err == ""); err != nil {
			h.logger.Warn("logging ai search failed", "error", err)
		}
	}

	writeData(w, http.StatusOK, answer)
}

type chatRequest struct {
	Message string        `json:"message"`
	History []rag.Message `json:"history"`
}

func (h *AIHandler) chat(w http.ResponseWriter, r *http.Request) {
	if h.chatter == nil {
		writeError(w, http.StatusServiceUnavailable, codeInternal, "chat is not available")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "message required")
		return
	}

	reply, history, err := h.chatter.Chat(r.Context(), message, req.History)
	if err != nil {
		h.logger.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "chat failed")
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"response": reply,
		"history":  history,
	})
}
