package pipeline

import (
	"path"
	"strings"
)

// Classifier decides whether an extracted text document is a transcript,
// which routes its chunks to the transcript index instead of the main one.
type Classifier interface {
	IsTranscript(filename string, text string) bool
}

// NameAndContentClassifier flags a document as a transcript when its
// filename contains "transcript", or, for plain-text documents, when the
// text itself does. Both checks are case-insensitive.
type NameAndContentClassifier struct{}

func (NameAndContentClassifier) IsTranscript(filename, text string) bool {
	name := strings.ToLower(path.Base(filename))
	if strings.Contains(name, "transcript") {
		return true
	}
	if !strings.HasSuffix(name, ".txt") {
		return false
	}
	return strings.Contains(strings.ToLower(text), "transcript")
}
