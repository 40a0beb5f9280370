package ocr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders PDF pages to PNG via MuPDF. A fitz document is
// not safe for concurrent page access, so every call opens the document
// from the in-memory bytes again; MuPDF parses lazily and this stays cheap
// relative to the recognition call that follows.
type FitzRasterizer struct{}

func (FitzRasterizer) PageCount(doc []byte) (int, error) {
	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer d.Close()
	return d.NumPage(), nil
}

func (FitzRasterizer) RenderPage(doc []byte, page int) ([]byte, error) {
	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer d.Close()

	img, err := d.Image(page)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}
