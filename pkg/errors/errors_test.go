package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownRegion, "no region %q", "shape-99")

	if err.Code != ErrCodeUnknownRegion {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnknownRegion)
	}

	if err.Message != `no region "shape-99"` {
		t.Errorf("Message = %v, want %v", err.Message, `no region "shape-99"`)
	}

	expected := `UNKNOWN_REGION: no region "shape-99"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeLoad, cause, "failed to load drawing")

	if err.Code != ErrCodeLoad {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeLoad)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeUnknownPattern, "test"),
			code:     ErrCodeUnknownPattern,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnknownPattern, "test"),
			code:     ErrCodeUnknownRegion,
			expected: false,
		},
		{
			name:     "outer code of wrapped error",
			err:      Wrap(ErrCodeLoad, New(ErrCodeFileNotFound, "inner"), "outer"),
			code:     ErrCodeLoad,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeLoad, New(ErrCodeFileNotFound, "inner"), "outer"),
			code:     ErrCodeFileNotFound,
			expected: true,
		},
		{
			name:     "through fmt wrapping",
			err:      fmt.Errorf("ctx: %w", New(ErrCodeParse, "bad xml")),
			code:     ErrCodeParse,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeAssetDecode, "test"),
			expected: ErrCodeAssetDecode,
		},
		{
			name:     "wrapped returns outer",
			err:      Wrap(ErrCodeLoad, New(ErrCodeParse, "inner"), "outer"),
			expected: ErrCodeLoad,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnknownPattern, "pattern p9 is not available"),
			expected: "pattern p9 is not available",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeUnknownRegion, "x"), true},
		{New(ErrCodeUnknownPattern, "x"), true},
		{New(ErrCodeAssetDecode, "x"), true},
		{New(ErrCodeInvalidColor, "x"), true},
		{New(ErrCodeLoad, "x"), false},
		{New(ErrCodeInternal, "x"), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := Recoverable(tt.err); got != tt.want {
			t.Errorf("Recoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
