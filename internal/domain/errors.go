// Package domain defines core types, ports, and errors for the lake writer.
package domain

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input that does not fit a more specific kind.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// EmptyInputError indicates the dataset to be written has no rows.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string { return "dataset has no rows" }

// InvalidArgumentValueError indicates a single argument holds a value that is
// structurally wrong for the requested write.
type InvalidArgumentValueError struct {
	Message string
}

func (e *InvalidArgumentValueError) Error() string { return e.Message }

// InvalidArgumentCombinationError indicates arguments that are individually
// valid but cannot be used together.
type InvalidArgumentCombinationError struct {
	Message string
}

func (e *InvalidArgumentCombinationError) Error() string { return e.Message }

// DuplicateColumnsError indicates two or more columns share a name after
// sanitization.
type DuplicateColumnsError struct {
	Columns []string
}

func (e *DuplicateColumnsError) Error() string {
	return fmt.Sprintf("duplicated column names: %s", strings.Join(e.Columns, ", "))
}

// UnsupportedTypeError indicates a catalog type string that cannot be mapped
// to a column type.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported catalog type %q", e.Type)
}

// CastError indicates a column's values cannot be converted to the requested
// type. It wraps the underlying conversion error.
type CastError struct {
	Column string
	Type   string
	Err    error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast column %q to %s: %v", e.Column, e.Type, e.Err)
}

func (e *CastError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrEmptyInput creates an EmptyInputError.
func ErrEmptyInput() *EmptyInputError {
	return &EmptyInputError{}
}

// ErrInvalidArgumentValue creates an InvalidArgumentValueError with a formatted message.
func ErrInvalidArgumentValue(format string, args ...interface{}) *InvalidArgumentValueError {
	return &InvalidArgumentValueError{Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidArgumentCombination creates an InvalidArgumentCombinationError with a formatted message.
func ErrInvalidArgumentCombination(format string, args ...interface{}) *InvalidArgumentCombinationError {
	return &InvalidArgumentCombinationError{Message: fmt.Sprintf(format, args...)}
}

// ErrDuplicateColumns creates a DuplicateColumnsError for the given names.
func ErrDuplicateColumns(columns []string) *DuplicateColumnsError {
	return &DuplicateColumnsError{Columns: columns}
}

// ErrUnsupportedType creates an UnsupportedTypeError for the given type string.
func ErrUnsupportedType(typ string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Type: typ}
}

// ErrCast creates a CastError for column and target type typ.
func ErrCast(column, typ string, err error) *CastError {
	return &CastError{Column: column, Type: typ, Err: err}
}
