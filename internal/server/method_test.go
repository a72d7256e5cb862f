package server

import "testing"

func TestParseMethod(t *testing.T) {
	tests := []struct {
		token string
		want  Method
	}{
		{"GET", MethodGet},
		{"get", MethodGet},
		{"Get", MethodGet},
		{"POST", MethodPost},
		{"put", MethodPut},
		{"PATCH", MethodPatch},
		{"delete", MethodDelete},
		{"HEAD", MethodHead},
		{"options", MethodOptions},
		{"TRACE", MethodTrace},
		{"connect", MethodConnect},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, aerr := ParseMethod(tt.token)
			if aerr != nil {
				t.Fatalf("ParseMethod(%q) failed: %v", tt.token, aerr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseMethodUnknown(t *testing.T) {
	for _, token := range []string{"", "FETCH", "G E T", "GETT"} {
		_, aerr := ParseMethod(token)
		requireKind(t, aerr, KindInvalid)
	}
}
