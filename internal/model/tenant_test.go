package model

import "testing"

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme", "acme"},
		{"Acme", "acme"},
		{"  acme  ", "acme"},
		{"Acme Corp", "acme-corp"},
		{"  Acme Corp  ", "acme-corp"},
		{"acme corp inc", "acme-corp-inc"},
		{"already-normalized", "already-normalized"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
