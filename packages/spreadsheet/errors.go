package spreadsheet

import (
	"errors"
	"fmt"
)

// Sentinel errors for spreadsheet operations. the typed errors below unwrap
// to one of these so callers can use errors.Is without a type switch.
var (
	// ErrFormulaFormat is returned when formula text is syntactically
	// invalid or contains a variable rejected by the validator. it is only
	// produced at construction time, never during evaluation.
	ErrFormulaFormat = errors.New("invalid formula")

	// ErrCircularReference is returned when committing a formula would
	// create a cycle in the dependency graph.
	ErrCircularReference = errors.New("circular reference")

	// ErrInvalidName is returned when a cell name fails the name pattern or
	// the caller supplied validator.
	ErrInvalidName = errors.New("invalid cell name")

	// ErrNilContents is returned when cell contents are absent. an empty
	// string is not absent, it clears the cell.
	ErrNilContents = errors.New("cell contents must not be nil")

	// ErrUnsupportedContents is returned by Set for contents that are not a
	// number, string or formula.
	ErrUnsupportedContents = errors.New("unsupported cell contents")

	// ErrReadWrite is returned for any failure while saving or loading a
	// spreadsheet document.
	ErrReadWrite = errors.New("spreadsheet read/write failure")
)

// FormulaFormatError describes why formula text could not be parsed
type FormulaFormatError struct {
	Pos     int    // rune offset of the offending token, -1 if not positional
	Token   string // offending token, normalized for variables
	Message string
}

func newFormatError(pos int, token, message string) *FormulaFormatError {
	return &FormulaFormatError{Pos: pos, Token: token, Message: message}
}

func (e *FormulaFormatError) Error() string {
	return "invalid formula: " + e.Message
}

func (e *FormulaFormatError) Unwrap() error {
	return ErrFormulaFormat
}

// CircularError names the cell that closed a dependency cycle
type CircularError struct {
	Cell string
}

func (e *CircularError) Error() string {
	return fmt.Sprintf("circular reference through cell %s", e.Cell)
}

func (e *CircularError) Unwrap() error {
	return ErrCircularReference
}

// InvalidNameError carries the rejected cell name
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid cell name %q", e.Name)
}

func (e *InvalidNameError) Unwrap() error {
	return ErrInvalidName
}

// ReadWriteError wraps failures from persistence collaborators. the cause
// is kept for diagnostics but the store never inspects it.
type ReadWriteError struct {
	Message string
	Err     error
}

// NewReadWriteError creates a read/write error with an optional cause
func NewReadWriteError(message string, cause error) *ReadWriteError {
	return &ReadWriteError{Message: message, Err: cause}
}

func (e *ReadWriteError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is lets errors.Is match ErrReadWrite while Unwrap exposes the cause
func (e *ReadWriteError) Is(target error) bool {
	return target == ErrReadWrite
}

func (e *ReadWriteError) Unwrap() error {
	return e.Err
}
