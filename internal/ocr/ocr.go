// Package ocr turns a scanned PDF into one ordered text blob. Pages are
// rendered and recognized in parallel; reassembly is strictly by page index,
// never by completion order.
package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TextExtractor is the external text-recognition capability, one call per
// page image.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) ([]string, error)
}

// Rasterizer renders a PDF page to an image for recognition.
type Rasterizer interface {
	PageCount(doc []byte) (int, error)
	RenderPage(doc []byte, page int) ([]byte, error)
}

// PageResult is one unit of fan-out work: the recognized text of one page.
type PageResult struct {
	Page int
	Text string
}

// Reassemble joins page results into the document blob: sorted by page
// index ascending, single space between pages. Completion order in the
// input is irrelevant.
func Reassemble(results []PageResult) string {
	sorted := make([]PageResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	texts := make([]string, len(sorted))
	for i, r := range sorted {
		texts[i] = r.Text
	}
	return strings.Join(texts, " ")
}

// ExtractDocument runs page recognition for a whole PDF with at most
// workers concurrent pages. Any page failure fails the document: partial
// text would silently corrupt retrieval downstream.
func ExtractDocument(ctx context.Context, doc []byte, ras Rasterizer, ex TextExtractor, workers int) (string, error) {
	pages, err := ras.PageCount(doc)
	if err != nil {
		return "", fmt.Errorf("count pages: %w", err)
	}
	if pages == 0 {
		return "", nil
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		results []PageResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for page := 0; page < pages; page++ {
		page := page
		g.Go(func() error {
			img, err := ras.RenderPage(doc, page)
			if err != nil {
				return fmt.Errorf("render page %d: %w", page, err)
			}
			lines, err := ex.ExtractText(gctx, img)
			if err != nil {
				return fmt.Errorf("extract page %d: %w", page, err)
			}
			mu.Lock()
			results = append(results, PageResult{Page: page, Text: strings.Join(lines, " ")})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return Reassemble(results), nil
}
