// Package index provides the immutable nearest-neighbor structure built by
// the embedding stage and queried by the extraction stage. One index exists
// per (role, sub-category); it is rebuilt from scratch on every stage run.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/avasant/casepipe/internal/ai"
	"github.com/avasant/casepipe/internal/chunker"
)

// Index pairs chunks with their embeddings, chunk[i] ↔ vector[i].
type Index struct {
	Chunks    []chunker.Chunk `json:"chunks"`
	Vectors   [][]float32     `json:"vectors"`
	Dimension int             `json:"dimension"`
}

// Build embeds every chunk and assembles a fresh index. The chunk set must
// be non-empty; callers skip empty sub-categories before getting here.
func Build(ctx context.Context, chunks []chunker.Chunk, emb ai.Embedder) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("cannot build index from zero chunks")
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	return &Index{
		Chunks:    chunks,
		Vectors:   vectors,
		Dimension: len(vectors[0]),
	}, nil
}

// Search embeds the query and returns the topK most similar chunks,
// highest score first.
func (ix *Index) Search(ctx context.Context, query string, emb ai.Embedder, topK int) ([]chunker.Chunk, error) {
	qv, err := emb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != ix.Dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(qv), ix.Dimension)
	}

	type scored struct {
		i     int
		score float32
	}
	results := make([]scored, len(ix.Chunks))
	for i := range ix.Chunks {
		results[i] = scored{i: i, score: cosineSimilarity(qv, ix.Vectors[i])}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	out := make([]chunker.Chunk, len(results))
	for i, r := range results {
		out[i] = ix.Chunks[r.i]
	}
	return out, nil
}

// Marshal serializes the index for durable storage.
func (ix *Index) Marshal() ([]byte, error) {
	return json.Marshal(ix)
}

// Unmarshal restores an index serialized by Marshal.
func Unmarshal(data []byte) (*Index, error) {
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &ix, nil
}

// cosineSimilarity returns a value in [-1, 1]; 1 means identical direction.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
