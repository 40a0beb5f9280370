package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	text := "a short passport bio page"
	parts := Split(text, Config{Size: 1200, Overlap: 50})
	if len(parts) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(parts))
	}
	if parts[0] != text {
		t.Errorf("expected chunk to equal input, got %q", parts[0])
	}
}

func TestSplit_WindowAndOverlap(t *testing.T) {
	// 10 chars, window 4, overlap 2 -> step 2: windows at 0,2,4,6,8.
	text := "abcdefghij"
	parts := Split(text, Config{Size: 4, Overlap: 2})
	want := []string{"abcd", "cdef", "efgh", "ghij"}
	if len(parts) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(parts), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], parts[i])
		}
	}
}

func TestSplit_OverlapCarriesTrailingText(t *testing.T) {
	text := strings.Repeat("x", 150) + strings.Repeat("y", 150)
	parts := Split(text, Config{Size: 200, Overlap: 40})
	if len(parts) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(parts))
	}
	tail := parts[0][len(parts[0])-40:]
	if !strings.HasPrefix(parts[1], tail) {
		t.Errorf("expected second chunk to start with the overlap of the first")
	}
}

func TestSplit_DropsWhitespaceOnlyWindows(t *testing.T) {
	text := "词词词" + strings.Repeat(" ", 20)
	parts := Split(text, Config{Size: 10, Overlap: 0})
	if len(parts) != 1 {
		t.Fatalf("expected whitespace window to be dropped, got %d chunks: %q", len(parts), parts)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if parts := Split("", DefaultConfig()); len(parts) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(parts))
	}
}

func TestSplit_InvalidOverlapIgnored(t *testing.T) {
	text := "abcdefgh"
	parts := Split(text, Config{Size: 4, Overlap: 4})
	want := []string{"abcd", "efgh"}
	if len(parts) != 2 || parts[0] != want[0] || parts[1] != want[1] {
		t.Errorf("expected %v, got %v", want, parts)
	}
}

func TestDocument_TagsChunks(t *testing.T) {
	chunks := Document("transcript_2021.txt", "transcript", strings.Repeat("g", 250), Config{Size: 100, Overlap: 0})
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Source != "transcript_2021.txt" {
			t.Errorf("chunk %d: wrong source %q", i, c.Source)
		}
		if c.SubCategory != "transcript" {
			t.Errorf("chunk %d: wrong subcategory %q", i, c.SubCategory)
		}
		if c.Ordinal != i {
			t.Errorf("chunk %d: expected ordinal %d, got %d", i, i, c.Ordinal)
		}
	}
}
