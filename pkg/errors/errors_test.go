package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"no cause", New(ErrCodeNoTemplate, "unknown template %q", "x"), `NO_TEMPLATE: unknown template "x"`},
		{"with cause", Wrap(ErrCodeCapture, errors.New("boom"), "capture"), "CAPTURE_FAILED: capture: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsThroughWrapping(t *testing.T) {
	base := New(ErrCodeEncoding, "png")
	wrapped := fmt.Errorf("page 2: %w", base)

	if !Is(wrapped, ErrCodeEncoding) {
		t.Error("Is(wrapped, ErrCodeEncoding) = false, want true")
	}
	if Is(wrapped, ErrCodeCapture) {
		t.Error("Is(wrapped, ErrCodeCapture) = true, want false")
	}
	if got := GetCode(wrapped); got != ErrCodeEncoding {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeEncoding)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeExportInProgress, "export already running")); got != "export already running" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("raw")); got != "raw" {
		t.Errorf("UserMessage(raw) = %q", got)
	}
}

func TestValidation(t *testing.T) {
	if err := Validation(nil); err != nil {
		t.Fatalf("Validation(nil) = %v, want nil", err)
	}

	err := Validation(FieldErrors{"email": "Email is required"})
	if !Is(err, ErrCodeInvalidInput) {
		t.Fatalf("Validation code = %q, want %q", GetCode(err), ErrCodeInvalidInput)
	}
	fields := Fields(err)
	if fields["email"] != "Email is required" {
		t.Errorf("Fields()[email] = %q", fields["email"])
	}
}
