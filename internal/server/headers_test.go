package server

import "testing"

func TestCanonicalHeaderKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "Content-Length", "Content-Length"},
		{"all lowercase", "content-length", "Content-Length"},
		{"all uppercase", "CONTENT-LENGTH", "Content-Length"},
		{"mixed case", "cOnTeNt-TyPe", "Content-Type"},
		{"single segment", "host", "Host"},
		{"empty segment preserved", "x--y", "X--Y"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalHeaderKey(tt.input); got != tt.want {
				t.Errorf("CanonicalHeaderKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Every casing of a header name must land on the same map key, so handlers
// can look headers up through the exported constants regardless of how the
// client spelled them.
func TestCanonicalHeaderKeyCaseInsensitive(t *testing.T) {
	variants := []string{
		"Content-Length", "content-length", "CONTENT-LENGTH",
		"Content-length", "content-Length", "cONTENT-lENGTH",
	}
	for _, v := range variants {
		if got := CanonicalHeaderKey(v); got != HeaderContentLength {
			t.Errorf("CanonicalHeaderKey(%q) = %q, want %q", v, got, HeaderContentLength)
		}
	}
}
