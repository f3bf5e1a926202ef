package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("Email is not registered"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "All fields are required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("This email is already registered"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("Password is incorrect"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Internal wraps ErrInternal",
			err:       Internal(errors.New("disk full")),
			target:    ErrInternal,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("Email is not registered"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrNotFound",
			err:       Unauthorized("Password is incorrect"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestInternal_MasksCause(t *testing.T) {
	cause := errors.New("sqlite: database is locked")
	err := Internal(cause)

	if err.Message != InternalMessage {
		t.Errorf("Message = %q, want %q", err.Message, InternalMessage)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(Internal(cause), cause) = false, want true")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "Conflict keeps message",
			err:         Conflict("This email is already registered"),
			wantMessage: "This email is already registered",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("email", "All fields are required"),
			wantMessage: "All fields are required",
		},
		{
			name:        "Internal includes cause in Error()",
			err:         Internal(errors.New("boom")),
			wantMessage: InternalMessage + ": boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestIsClassified(t *testing.T) {
	if !IsClassified(NotFound("x")) {
		t.Error("IsClassified(NotFound) = false, want true")
	}
	if IsClassified(Internal(errors.New("x"))) {
		t.Error("IsClassified(Internal) = true, want false")
	}
	if IsClassified(errors.New("plain")) {
		t.Error("IsClassified(plain error) = true, want false")
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "All fields are required")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
