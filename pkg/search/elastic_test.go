package search

import "testing"

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"flour", "flour"},
		{"a+b", `a\+b`},
		{"name:cake", `name\:cake`},
		{"(x) OR y*", `\(x\) OR y\*`},
		{"<b>", "b"},
	}
	for _, tt := range tests {
		if got := EscapeQuery(tt.in); got != tt.want {
			t.Errorf("EscapeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
