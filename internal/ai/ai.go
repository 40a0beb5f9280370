package ai

import (
	"context"
	"regexp"
	"strings"
)

// Embedder produces a vector per text. Deterministic for identical input
// within a session, which the idempotent-rerun guarantee relies on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer runs one retrieval-augmented synthesis pass: the retrieved
// chunks form the context, the instruction carries the schema and rules.
// Callers must not assume the returned text is well-formed JSON.
type Completer interface {
	Complete(ctx context.Context, contextChunks []string, instruction string) (string, error)
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeBlock removes a markdown code fence the model may wrap its JSON in.
func StripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
