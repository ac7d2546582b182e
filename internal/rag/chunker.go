package rag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChunkConfig indicates a size/overlap pair that cannot produce
// a terminating sequence of chunks.
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// Chunk splits text into word windows of at most size words, with overlap
// words shared between consecutive windows. Whitespace-only input yields nil.
// size must be positive and overlap must satisfy 0 <= overlap < size, else
// ErrInvalidChunkConfig.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidChunkConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, size), got overlap=%d size=%d",
			ErrInvalidChunkConfig, overlap, size)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	stride := size - overlap
	chunks := make([]string, 0, (len(words)+stride-1)/stride)
	for start := 0; start < len(words); start += stride {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
