package chunker

import "strings"

// Config controls the sliding window.
type Config struct {
	Size    int // Window length in characters.
	Overlap int // Characters shared with the previous chunk.
}

// DefaultConfig matches the splitter settings the extraction templates were
// tuned against.
func DefaultConfig() Config {
	return Config{Size: 1200, Overlap: 50}
}

// Chunk is a bounded slice of one document's text. Source and SubCategory
// travel with it so retrieval results can be traced back.
type Chunk struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	SubCategory string `json:"subcategory"`
	Ordinal     int    `json:"ordinal"`
}

// Split cuts text into fixed-size windows with the configured overlap.
// Whitespace-only windows are dropped.
func Split(text string, cfg Config) []string {
	if cfg.Size <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = 0
	}
	step := cfg.Size - cfg.Overlap

	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		part := string(runes[start:end])
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
		if end == len(runes) {
			break
		}
	}
	return parts
}

// Document splits one document's text and tags every chunk with its origin.
// Ordinals preserve in-document order; retrieval does not depend on them.
func Document(source, subcategory, text string, cfg Config) []Chunk {
	parts := Split(text, cfg)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{
			Text:        part,
			Source:      source,
			SubCategory: subcategory,
			Ordinal:     i,
		})
	}
	return chunks
}
