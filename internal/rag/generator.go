package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// generateTimeout bounds one model call.
const generateTimeout = 30 * time.Second

// GenerationResult is the outcome of one answer generation. Provider
// failures surface as OK=false with a user-safe Answer; Err carries the
// underlying cause for logging and diagnostics.
type GenerationResult struct {
	Answer string
	OK     bool
	Err    string
}

// Generator produces a grounded answer for a query given assembled context.
// Implementations must not return partial answers on failure.
type Generator interface {
	Generate(ctx context.Context, query, contextText string) GenerationResult
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// GeminiGenerator generates answers through a Genkit-registered Gemini model.
type GeminiGenerator struct {
	genkit    *genkit.Genkit
	modelName string
	logger    *slog.Logger
}

// NewGeminiGenerator wires a generator to an initialized Genkit instance.
// modelName is the fully qualified model, e.g. "googleai/gemini-2.5-flash".
func NewGeminiGenerator(g *genkit.Genkit, modelName string, logger *slog.Logger) *GeminiGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiGenerator{
		genkit:    g,
		modelName: modelName,
		logger:    logger,
	}
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, query, contextText string) GenerationResult {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(answerPromptFormat, contextText, query)

	resp, err := genkit.Generate(ctx, g.genkit,
		ai.WithModelName(g.modelName),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		g.logger.Error("answer generation failed", "model", g.modelName, "error", err)
		return GenerationResult{
			Answer: generationFailedAnswer,
			OK:     false,
			Err:    err.Error(),
		}
	}

	text := resp.Text()
	if text == "" {
		g.logger.Warn("model returned empty answer", "model", g.modelName)
		return GenerationResult{
			Answer: generationFailedAnswer,
			OK:     false,
			Err:    "model returned empty response",
		}
	}

	return GenerationResult{Answer: text, OK: true}
}

// Chat runs one conversational turn with prior history and returns the
// model's reply plus the updated history.
func (g *GeminiGenerator) Chat(ctx context.Context, message string, history []Message) (string, []Message, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	messages := make([]*ai.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, ai.NewModelTextMessage(m.Content))
			continue
		}
		messages = append(messages, ai.NewUserTextMessage(m.Content))
	}
	messages = append(messages, ai.NewUserTextMessage(message))

	resp, err := genkit.Generate(ctx, g.genkit,
		ai.WithModelName(g.modelName),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return "", history, fmt.Errorf("chat generation: %w", err)
	}

	reply := resp.Text()
	updated := append(append([]Message{}, history...),
		Message{Role: "user", Content: message},
		Message{Role: "assistant", Content: reply},
	)
	return reply, updated, nil
}
