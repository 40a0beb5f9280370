package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Loader turns raw document bytes into plain text for chunking.
type Loader interface {
	Load(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists the document types the embedding stage accepts.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".docx": true,
}

// ForFile returns the loader for a filename.
func ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextLoader{}, nil
	case ".pdf":
		return &PDFLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupported checks whether a file extension is handled.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}
