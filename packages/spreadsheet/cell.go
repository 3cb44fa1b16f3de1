package spreadsheet

import (
	"strconv"
)

// Primitive represents basic spreadsheet value types.
// contents:
//   - float64: numeric literal
//   - string: text
//   - *Formula: formula
//   - nil: empty cell
//
// values:
//   - float64: numeric result
//   - string: text
//   - FormulaError: evaluation error
//   - nil: empty cell
type Primitive any

// FormulaError is the value of a formula that could not be evaluated. it is
// an ordinary value stored in a cell, not a Go error.
type FormulaError struct {
	Reason string
}

// reasons produced by the evaluator
const (
	ReasonUndefinedVariable = "Undefined variable(s)"
	ReasonDivideByZero      = "Divide by zero error"
	ReasonMalformed         = "Malformed formula"
)

// NewFormulaError creates a new formula error with the given reason
func NewFormulaError(reason string) FormulaError {
	return FormulaError{Reason: reason}
}

func (e FormulaError) String() string {
	return e.Reason
}

// CellKind classifies the contents of a cell
type CellKind uint8

const (
	CellKindEmpty CellKind = iota
	CellKindNumber
	CellKindText
	CellKindFormula
)

func (k CellKind) String() string {
	switch k {
	case CellKindNumber:
		return "number"
	case CellKindText:
		return "text"
	case CellKindFormula:
		return "formula"
	}
	return "empty"
}

// KindOf reports the kind of a contents primitive
func KindOf(contents Primitive) CellKind {
	switch contents.(type) {
	case float64:
		return CellKindNumber
	case string:
		return CellKindText
	case *Formula:
		return CellKindFormula
	}
	return CellKindEmpty
}

// Cell represents a non-empty spreadsheet cell with its contents and cached
// value
type Cell struct {
	Name     string    // normalized cell name
	Contents Primitive // float64, string or *Formula
	Value    Primitive // float64, string or FormulaError
}

// Kind returns the kind of the cell's contents
func (c *Cell) Kind() CellKind {
	return KindOf(c.Contents)
}

// Text returns the contents as the string a user would type to recreate
// them. formulas are prefixed with '='.
func (c *Cell) Text() string {
	return contentsText(c.Contents)
}

func contentsText(contents Primitive) string {
	switch v := contents.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	case *Formula:
		return "=" + v.String()
	}
	return ""
}

// numberValue returns the cached value as a number, if it is one
func (c *Cell) numberValue() (float64, bool) {
	v, ok := c.Value.(float64)
	return v, ok
}
