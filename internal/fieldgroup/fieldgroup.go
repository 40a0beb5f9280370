// Package fieldgroup holds the extraction templates: the field groups the
// pipeline fills per applicant, each with the retrieval source it reads
// from, the instruction it sends and the JSON schema the answer must match.
package fieldgroup

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Retrieval sources a template can target.
const (
	SourceMain       = "main"
	SourceTranscript = "transcript"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Template is one field group to extract.
type Template struct {
	Name        string         `yaml:"name"`
	Source      string         `yaml:"source"`
	Instruction string         `yaml:"instruction"`
	Schema      map[string]any `yaml:"schema"`
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// Defaults returns the built-in template set.
func Defaults() ([]Template, error) {
	return parse(defaultTemplates)
}

// Load reads templates from path, or the built-in set when path is empty.
func Load(path string) ([]Template, error) {
	if path == "" {
		return Defaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Template, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, fmt.Errorf("no templates defined")
	}
	for i := range f.Templates {
		t := &f.Templates[i]
		if t.Name == "" {
			return nil, fmt.Errorf("template %d: missing name", i)
		}
		if len(t.Schema) == 0 {
			return nil, fmt.Errorf("template %q: missing schema", t.Name)
		}
		if t.Source == "" {
			t.Source = SourceMain
		}
	}
	return f.Templates, nil
}

// Query renders the retrieval question for this template, substituting the
// applicant label into the instruction.
func (t Template) Query(applicant string) (string, error) {
	schema, err := json.MarshalIndent(t.Schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	instruction := strings.ReplaceAll(t.Instruction, "{applicant}", applicant)

	var b strings.Builder
	b.WriteString("Understand and fill the answer for this JSON schema:\n")
	b.Write(schema)
	b.WriteString("\n")
	b.WriteString(instruction)
	b.WriteString("\nIMPORTANT: write all date relevant information in yyyy-mm-dd format.")
	b.WriteString("\nIMPORTANT: do not return anything extra than the JSON at the start or the end; if you do not find the answer, return the JSON as it is without any extra keywords.")
	return b.String(), nil
}
