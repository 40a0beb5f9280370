package ai

import "testing"

func TestStripCodeBlock(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"fenced json", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"fenced bare", "```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"no fence", "{\"a\":1}", "{\"a\":1}"},
		{"leading prose stays", "Here you go: {\"a\":1}", "Here you go: {\"a\":1}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeBlock(tc.in); got != tc.want {
				t.Fatalf("StripCodeBlock(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
