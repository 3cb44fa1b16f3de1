package spreadsheet

import (
	"fmt"
	"sort"
)

// RunnableSpreadsheet provides a chainable interface for
// spreadsheet operations. wraps the standard Spreadsheet and tracks
// errors internally
type RunnableSpreadsheet struct {
	spreadsheet *Spreadsheet
	err         error
	recomputed  []string
	printLn     func(string)
}

// NewRunnableSpreadsheet creates a new RunnableSpreadsheet. printLn is
// required and will be used for all logging operations (Log, CheckError)
func NewRunnableSpreadsheet(printLn func(string)) *RunnableSpreadsheet {
	return NewRunnableSpreadsheetWithContext(nil, printLn)
}

// NewRunnableSpreadsheetWithContext is NewRunnableSpreadsheet over a
// spreadsheet configured by context
func NewRunnableSpreadsheetWithContext(context *SpreadsheetContext, printLn func(string)) *RunnableSpreadsheet {
	return &RunnableSpreadsheet{
		spreadsheet: NewSpreadsheetWithContext(context),
		printLn:     printLn,
	}
}

// Set sets a cell from user text (chainable)
func (r *RunnableSpreadsheet) Set(name, text string) *RunnableSpreadsheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.recomputed, r.err = r.spreadsheet.SetContentsOfCell(name, text)
	return r
}

// SetValue sets typed cell contents (chainable)
func (r *RunnableSpreadsheet) SetValue(name string, contents Primitive) *RunnableSpreadsheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.recomputed, r.err = r.spreadsheet.Set(name, contents)
	return r
}

// Remove clears a cell (chainable)
func (r *RunnableSpreadsheet) Remove(name string) *RunnableSpreadsheet {
	return r.Set(name, "")
}

// SetBatch sets multiple cells from user text in name order (chainable)
func (r *RunnableSpreadsheet) SetBatch(cells map[string]string) *RunnableSpreadsheet {
	names := make([]string, 0, len(cells))
	for name := range cells {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if r.Set(name, cells[name]).err != nil {
			return r
		}
	}
	return r
}

// Recomputed returns the cells recomputed by the last successful set
func (r *RunnableSpreadsheet) Recomputed() []string {
	return r.recomputed
}

// Value is a helper to get a single value from the chain.
// example: val := NewRunnableSpreadsheet(println).Set("A1", "10").Set("A2", "=A1*2").Value("A2")
func (r *RunnableSpreadsheet) Value(name string) Primitive {
	if r.err != nil {
		return nil
	}
	val, err := r.spreadsheet.GetCellValue(name)
	if err != nil {
		r.err = err
		return nil
	}
	return val
}

// Values is a helper to get multiple values from the chain
func (r *RunnableSpreadsheet) Values(names ...string) []Primitive {
	if r.err != nil {
		return nil
	}
	values := make([]Primitive, len(names))
	for i, name := range names {
		val, err := r.spreadsheet.GetCellValue(name)
		if err != nil {
			r.err = err
			return nil
		}
		values[i] = val
	}
	return values
}

// Log logs the value of a cell using the provided PrintLn function (chainable)
func (r *RunnableSpreadsheet) Log(name string) *RunnableSpreadsheet {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	val, err := r.spreadsheet.GetCellValue(name)
	if err != nil {
		r.err = err
		return r
	}

	var output string
	switch v := val.(type) {
	case nil:
		output = fmt.Sprintf("%s: <empty>", name)
	case FormulaError:
		output = fmt.Sprintf("%s: #ERROR %s", name, v.Reason)
	default:
		output = fmt.Sprintf("%s: %v", name, v)
	}
	r.printLn(output)
	return r
}

// Run returns the spreadsheet and any error. typically the last method in
// the chain
func (r *RunnableSpreadsheet) Run() (*Spreadsheet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.spreadsheet, nil
}

// RunOrPanic returns the spreadsheet and panics if there's an error.
// useful for examples and tests where you want to fail fast
func (r *RunnableSpreadsheet) RunOrPanic() *Spreadsheet {
	spreadsheet, err := r.Run()
	if err != nil {
		panic(err)
	}
	return spreadsheet
}

// Error returns the current error state
func (r *RunnableSpreadsheet) Error() error {
	return r.err
}

// CheckError logs the current error using the PrintLn function (chainable)
func (r *RunnableSpreadsheet) CheckError() *RunnableSpreadsheet {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Spreadsheet returns the underlying spreadsheet. use with caution as it
// bypasses error tracking.
func (r *RunnableSpreadsheet) Spreadsheet() *Spreadsheet {
	return r.spreadsheet
}

// Reset clears the error state (chainable)
func (r *RunnableSpreadsheet) Reset() *RunnableSpreadsheet {
	r.err = nil
	return r
}

// Then allows conditional execution based on current error state
func (r *RunnableSpreadsheet) Then(fn func(*RunnableSpreadsheet) *RunnableSpreadsheet) *RunnableSpreadsheet {
	if r.err != nil {
		return r // skip if there's an error
	}
	return fn(r)
}

// OnError allows error handling in the chain
func (r *RunnableSpreadsheet) OnError(fn func(error) error) *RunnableSpreadsheet {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// Must panics if there's an error (chainable)
func (r *RunnableSpreadsheet) Must() *RunnableSpreadsheet {
	if r.err != nil {
		panic(r.err)
	}
	return r
}

// If allows conditional operations in the chain
func (r *RunnableSpreadsheet) If(condition bool, fn func(*RunnableSpreadsheet) *RunnableSpreadsheet) *RunnableSpreadsheet {
	if r.err != nil || !condition {
		return r // skip if there's an error or condition is false
	}
	return fn(r)
}
