package server

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindIO, "io"},
		{KindInvalid, "invalid"},
		{KindNotFound, "not_found"},
		{KindNotPermitted, "not_permitted"},
		{KindUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		kind ErrorKind
		msg  string
	}{
		{"io", IOError("disk %s", "full"), KindIO, "disk full"},
		{"invalid", InvalidError("bad input"), KindInvalid, "bad input"},
		{"not found", NotFoundError("missing: %d", 7), KindNotFound, "missing: 7"},
		{"not permitted", NotPermittedError("denied"), KindNotPermitted, "denied"},
		{"unknown", UnknownError("mystery"), KindUnknown, "mystery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.msg)
			}
			want := tt.kind.String() + ": " + tt.msg
			if got := tt.err.Error(); got != want {
				t.Errorf("Error() = %q, want %q", got, want)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if got := AsAppError(nil); got != nil {
			t.Errorf("AsAppError(nil) = %v, want nil", got)
		}
	})

	t.Run("app error passes through", func(t *testing.T) {
		orig := NotFoundError("gone")
		if got := AsAppError(orig); got != orig {
			t.Errorf("AsAppError returned %v, want original", got)
		}
	})

	t.Run("wrapped app error unwraps", func(t *testing.T) {
		orig := InvalidError("inner")
		wrapped := fmt.Errorf("outer: %w", orig)
		if got := AsAppError(wrapped); got != orig {
			t.Errorf("AsAppError(wrapped) = %v, want original", got)
		}
	})

	t.Run("plain error becomes unknown", func(t *testing.T) {
		got := AsAppError(errors.New("boom"))
		requireKind(t, got, KindUnknown)
		if got.Message != "boom" {
			t.Errorf("Message = %q, want %q", got.Message, "boom")
		}
	})
}
