package fieldgroup

// Record is the merged per-applicant result: one key per schema top-level
// field group.
type Record map[string]any

// Blank builds a record from the template schemas with every scalar set to
// a single blank space and applicant_type filled in. Array-shaped groups
// keep a one-element shape so consumers see the structure.
func Blank(templates []Template, applicantType string) Record {
	rec := Record{}
	for _, t := range templates {
		for key, shape := range t.Schema {
			rec[key] = blankValue(shape)
		}
	}
	if info, ok := rec["applicant_info"].(map[string]any); ok {
		info["applicant_type"] = applicantType
	}
	return rec
}

func blankValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = blankValue(inner)
		}
		return out
	case []any:
		if len(val) == 0 {
			return []any{}
		}
		return []any{blankValue(val[0])}
	default:
		return " "
	}
}

// Merge copies the top-level keys of an extraction answer into the record,
// replacing whatever blank shape was seeded there.
func (r Record) Merge(out map[string]any) {
	for k, v := range out {
		r[k] = v
	}
}
