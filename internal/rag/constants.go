package rag

// answerPromptFormat grounds the model in retrieved context. The greeting
// rule keeps casual openers ("hello") from triggering the refusal phrase.
const answerPromptFormat = `You are a helpful assistant for a citizen services portal in Sri Lanka.

Context information:
%s

User Question: %s

Instructions:
1. If the user is greeting you (like "hello", "hi"), reply politely and ask how you can help.
2. If the user asks a specific question, answer it using ONLY the Context information provided above.
3. If the answer is not in the context, say "I don't have that specific information in my database, but I can help with Passports, IDs, and Tax information."
`

// User-facing fallback answers. These are returned verbatim in the Answer
// body, so wording changes are user-visible.
const (
	noInfoAnswer = "I don't have information about that in my knowledge base. " +
		"Please try rephrasing your question or contact support."

	generationFailedAnswer = "I encountered an error generating the answer. Please try again."
)

// Confidence labels derived from how many documents retrieval produced.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"

	// highConfidenceDocs is the minimum retrieved count for ConfidenceHigh.
	highConfidenceDocs = 3
)

// DefaultTopK is used when a caller asks for zero or negative results.
const DefaultTopK = 5
