// Package errors provides standardized error types and helpers for the SchemaCanvas codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedType indicates a logical column type with no mapping for a dialect
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrGraphReference indicates a foreign-key edge pointing at a missing table or column
	ErrGraphReference = errors.New("dangling graph reference")
	// ErrParse indicates SQL text that does not match any recognized statement grammar
	ErrParse = errors.New("parse error")
)

// UnsupportedTypeError reports a logical type that cannot be mapped to a
// physical type for the target dialect. Generation skips the column and
// surfaces this as a warning.
type UnsupportedTypeError struct {
	Dialect string // Target dialect (e.g., "mysql")
	Type    string // Logical type that has no mapping
	Err     error  // Underlying error, if any
}

func (e *UnsupportedTypeError) Error() string {
	if e.Dialect != "" {
		return fmt.Sprintf("type %q has no mapping for dialect %q", e.Type, e.Dialect)
	}
	return fmt.Sprintf("type %q has no mapping", e.Type)
}

func (e *UnsupportedTypeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupportedType
}

// GraphReferenceError reports a foreign-key edge whose source or target
// table/column will not exist in the generated DDL, either because it is
// absent from the graph or because the column was dropped for an
// unsupported type. Generation skips the edge and surfaces this as a
// warning.
type GraphReferenceError struct {
	Constraint string // Constraint name of the offending edge
	Table      string // Referenced table label
	Column     string // Referenced column title, if the table resolved
	Err        error  // Underlying error, if any
}

func (e *GraphReferenceError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("constraint %q references missing column %s.%s", e.Constraint, e.Table, e.Column)
	}
	return fmt.Sprintf("constraint %q references missing table %q", e.Constraint, e.Table)
}

func (e *GraphReferenceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrGraphReference
}

// ParseError represents a SQL parse failure with a source locator.
// A parse failure is atomic: no partial graph is produced.
type ParseError struct {
	Line    int    // Line number (1-based), 0 if unknown
	Col     int    // Column number (1-based), 0 if unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d, col %d: %s", e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

// ValidationWarning is an advisory structural finding in SQL text
// (unbalanced parens, unterminated statements). It never blocks repair
// or parse; callers surface it to the user as-is.
type ValidationWarning struct {
	Line    int    // Line number (1-based), 0 if unknown
	Message string // Human-readable description
}

func (e *ValidationWarning) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Helper functions for creating common errors

// NewUnsupportedType creates an UnsupportedTypeError
func NewUnsupportedType(dialect, logicalType string) *UnsupportedTypeError {
	return &UnsupportedTypeError{
		Dialect: dialect,
		Type:    logicalType,
	}
}

// NewGraphReference creates a GraphReferenceError
func NewGraphReference(constraint, table, column string) *GraphReferenceError {
	return &GraphReferenceError{
		Constraint: constraint,
		Table:      table,
		Column:     column,
	}
}

// NewParse creates a ParseError
func NewParse(line, col int, message string) *ParseError {
	return &ParseError{
		Line:    line,
		Col:     col,
		Message: message,
	}
}

// NewParsef creates a ParseError with a formatted message
func NewParsef(line, col int, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Line:    line,
		Col:     col,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewValidationWarning creates a ValidationWarning
func NewValidationWarning(line int, message string) *ValidationWarning {
	return &ValidationWarning{
		Line:    line,
		Message: message,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
