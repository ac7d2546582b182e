package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
)

// embedTimeout bounds a single embedding call so a stalled provider cannot
// hang a request.
const embedTimeout = 30 * time.Second

// embedText generates an embedding for a single text using the configured
// embedder. All provider failures (including timeout and empty responses)
// are wrapped in ErrEmbedding.
func embedText(ctx context.Context, embedder ai.Embedder, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			ai.DocumentFromText(text, nil),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: provider returned empty embedding", ErrEmbedding)
	}

	return resp.Embeddings[0].Embedding, nil
}
