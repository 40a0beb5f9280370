package fieldgroup

import (
	"strings"
	"testing"
)

func TestDefaults_LoadsAllGroups(t *testing.T) {
	templates, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if len(templates) != 9 {
		t.Fatalf("got %d templates, want 9", len(templates))
	}

	bySource := map[string]int{}
	for _, tpl := range templates {
		bySource[tpl.Source]++
		if tpl.Instruction == "" {
			t.Errorf("template %q has no instruction", tpl.Name)
		}
	}
	if bySource[SourceTranscript] != 1 {
		t.Fatalf("got %d transcript templates, want 1", bySource[SourceTranscript])
	}
	if templates[4].Name != "transcript_certificate_info" || templates[4].Source != SourceTranscript {
		t.Fatalf("template 5 = %q/%q, want transcript_certificate_info/transcript",
			templates[4].Name, templates[4].Source)
	}
}

func TestQuery_SubstitutesApplicant(t *testing.T) {
	templates, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	q, err := templates[1].Query("primary applicant")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if strings.Contains(q, "{applicant}") {
		t.Fatal("Query left {applicant} placeholder unsubstituted")
	}
	if !strings.Contains(q, "primary applicant") {
		t.Fatal("Query did not substitute applicant label")
	}
	if !strings.Contains(q, "passport_number") {
		t.Fatal("Query did not include the schema")
	}
	if !strings.Contains(q, "yyyy-mm-dd") {
		t.Fatal("Query did not include the date-format rule")
	}
}

func TestBlank_FillsScalarsAndAppliesType(t *testing.T) {
	templates, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	rec := Blank(templates, "secondary")

	info, ok := rec["applicant_info"].(map[string]any)
	if !ok {
		t.Fatal("applicant_info missing or wrong shape")
	}
	if info["applicant_type"] != "secondary" {
		t.Fatalf("applicant_type = %v, want secondary", info["applicant_type"])
	}
	if info["firstname"] != " " {
		t.Fatalf("firstname = %q, want blank space", info["firstname"])
	}

	passports, ok := rec["passport_info"].([]any)
	if !ok || len(passports) != 1 {
		t.Fatalf("passport_info = %v, want one-element array", rec["passport_info"])
	}
	entry, ok := passports[0].(map[string]any)
	if !ok || entry["passport_number"] != " " {
		t.Fatalf("passport entry = %v, want blanked map", passports[0])
	}
}

func TestBlank_DoesNotAliasSchema(t *testing.T) {
	templates, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	rec := Blank(templates, "primary")
	info := rec["applicant_info"].(map[string]any)
	info["firstname"] = "mutated"

	for _, tpl := range templates {
		if src, ok := tpl.Schema["applicant_info"].(map[string]any); ok {
			if src["firstname"] == "mutated" {
				t.Fatal("Blank aliased the template schema")
			}
		}
	}
}

func TestMerge_ReplacesTopLevelGroups(t *testing.T) {
	rec := Record{"x": map[string]any{"a": " "}, "y": " "}
	rec.Merge(map[string]any{"x": map[string]any{"a": "5"}})
	rec.Merge(map[string]any{"y": "foo"})

	x := rec["x"].(map[string]any)
	if x["a"] != "5" || rec["y"] != "foo" {
		t.Fatalf("merged record = %v", rec)
	}
}

func TestParse_RejectsBadInput(t *testing.T) {
	if _, err := parse([]byte("templates: []")); err == nil {
		t.Fatal("parse accepted an empty template set")
	}
	if _, err := parse([]byte("templates:\n  - instruction: x\n    schema: {a: b}")); err == nil {
		t.Fatal("parse accepted a template without a name")
	}
}
