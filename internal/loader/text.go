package loader

import (
	"bufio"
	"io"
	"strings"
)

// TextLoader handles plain text files, collapsing blank-line runs so the
// chunker sees paragraph breaks as a single separator.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, _ string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	blank := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			blank = sb.Len() > 0
			continue
		}
		if blank {
			sb.WriteString("\n\n")
			blank = false
		} else if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
