package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnsupportedTypeError(t *testing.T) {
	tests := []struct {
		name     string
		err      *UnsupportedTypeError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with dialect",
			err:      &UnsupportedTypeError{Dialect: "mysql", Type: "enum"},
			wantMsg:  `type "enum" has no mapping for dialect "mysql"`,
			wantBase: ErrUnsupportedType,
		},
		{
			name:     "without dialect",
			err:      &UnsupportedTypeError{Type: "geometry"},
			wantMsg:  `type "geometry" has no mapping`,
			wantBase: ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}
}

func TestGraphReferenceError(t *testing.T) {
	tests := []struct {
		name     string
		err      *GraphReferenceError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "missing column",
			err:      &GraphReferenceError{Constraint: "fk_orders_user_id_users", Table: "users", Column: "id"},
			wantMsg:  `constraint "fk_orders_user_id_users" references missing column users.id`,
			wantBase: ErrGraphReference,
		},
		{
			name:     "missing table",
			err:      &GraphReferenceError{Constraint: "fk_orders_user_id_users", Table: "users"},
			wantMsg:  `constraint "fk_orders_user_id_users" references missing table "users"`,
			wantBase: ErrGraphReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with locator",
			err:      &ParseError{Line: 3, Col: 14, Message: "expected column name"},
			wantMsg:  "parse error at line 3, col 14: expected column name",
			wantBase: ErrParse,
		},
		{
			name:     "without locator",
			err:      &ParseError{Message: "empty input"},
			wantMsg:  "parse error: empty input",
			wantBase: ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	// Test with underlying error separately
	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("lexer failure")
		err := &ParseError{Line: 1, Col: 1, Message: "bad token", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationWarning(t *testing.T) {
	tests := []struct {
		name    string
		warn    *ValidationWarning
		wantMsg string
	}{
		{
			name:    "with line",
			warn:    &ValidationWarning{Line: 7, Message: "unbalanced parentheses"},
			wantMsg: "line 7: unbalanced parentheses",
		},
		{
			name:    "without line",
			warn:    &ValidationWarning{Message: "statement not terminated"},
			wantMsg: "statement not terminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.warn.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	if err := NewUnsupportedType("sqlite", "enum"); err.Dialect != "sqlite" || err.Type != "enum" {
		t.Errorf("NewUnsupportedType() = %+v", err)
	}
	if err := NewGraphReference("fk1", "users", "id"); err.Constraint != "fk1" {
		t.Errorf("NewGraphReference() = %+v", err)
	}
	if err := NewParse(2, 5, "oops"); err.Line != 2 || err.Col != 5 {
		t.Errorf("NewParse() = %+v", err)
	}
	if err := NewParsef(1, 1, "unexpected token %q", ")"); err.Message != `unexpected token ")"` {
		t.Errorf("NewParsef() message = %q", err.Message)
	}
	if w := NewValidationWarning(4, "odd quote count"); w.Line != 4 {
		t.Errorf("NewValidationWarning() = %+v", w)
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("base error")

	if got := Wrap(nil, "context"); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}
	wrapped := Wrap(base, "while parsing")
	if wrapped == nil || !errors.Is(wrapped, base) {
		t.Errorf("Wrap() did not preserve the base error: %v", wrapped)
	}
	if wrapped.Error() != "while parsing: base error" {
		t.Errorf("Wrap() = %q", wrapped.Error())
	}

	wrappedf := Wrapf(base, "statement %d", 3)
	if wrappedf.Error() != "statement 3: base error" {
		t.Errorf("Wrapf() = %q", wrappedf.Error())
	}
	if got := Wrapf(nil, "statement %d", 3); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

func TestIsAs(t *testing.T) {
	err := NewParse(1, 2, "boom")

	if !Is(err, ErrParse) {
		t.Error("Is() should match the sentinel through Unwrap")
	}
	var target *ParseError
	if !As(err, &target) {
		t.Fatal("As() should extract *ParseError")
	}
	if target.Line != 1 || target.Col != 2 {
		t.Errorf("As() target = %+v", target)
	}
}
