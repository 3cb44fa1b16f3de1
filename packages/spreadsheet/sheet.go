package spreadsheet

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultVersion is the version of a spreadsheet created without one
const DefaultVersion = "default"

// SpreadsheetContext configures a spreadsheet. nil or empty fields take the
// defaults used by NewSpreadsheet.
type SpreadsheetContext struct {
	Normalize Normalizer   // applied to cell names and formula variables
	Validate  Validator    // extra restriction on normalized names
	Version   string       // version written to and required from documents
	Logger    *slog.Logger // defaults to slog.Default()
}

// Spreadsheet is a set of named cells whose formula values are kept up to
// date as cells change. the zero value is not usable; use NewSpreadsheet.
// a Spreadsheet is not safe for concurrent use.
type Spreadsheet struct {
	id        string
	cells     map[string]*Cell
	graph     *DependencyGraph
	normalize Normalizer
	validate  Validator
	version   string
	changed   bool
	logger    *slog.Logger
}

// NewSpreadsheet creates an empty spreadsheet with the identity normalizer,
// a validator accepting every legal name and the default version
func NewSpreadsheet() *Spreadsheet {
	return NewSpreadsheetWithContext(nil)
}

// NewSpreadsheetWithContext creates an empty spreadsheet configured by
// context
func NewSpreadsheetWithContext(context *SpreadsheetContext) *Spreadsheet {
	s := &Spreadsheet{
		id:        uuid.NewString()[:12],
		cells:     make(map[string]*Cell),
		graph:     NewDependencyGraph(),
		normalize: IdentityNormalizer,
		validate:  AcceptAll,
		version:   DefaultVersion,
		logger:    slog.Default(),
	}
	if context != nil {
		if context.Normalize != nil {
			s.normalize = context.Normalize
		}
		if context.Validate != nil {
			s.validate = context.Validate
		}
		if context.Version != "" {
			s.version = context.Version
		}
		if context.Logger != nil {
			s.logger = context.Logger
		}
	}
	s.logger = s.logger.With(slog.String("sheet", s.id))
	return s
}

// ID returns the identifier attached to this spreadsheet's log records
func (s *Spreadsheet) ID() string {
	return s.id
}

// Version returns the version string documents must carry
func (s *Spreadsheet) Version() string {
	return s.version
}

// Changed reports whether the spreadsheet was modified since it was created,
// loaded or last saved
func (s *Spreadsheet) Changed() bool {
	return s.changed
}

// formulaContext returns the context formulas are parsed with
func (s *Spreadsheet) formulaContext() *FormulaContext {
	return &FormulaContext{Normalize: s.normalize, Validate: s.validate}
}

// resolveName checks name against the variable pattern, normalizes it and
// checks the result against the pattern and the validator
func (s *Spreadsheet) resolveName(name string) (string, error) {
	if !IsVariable(name) {
		return "", &InvalidNameError{Name: name}
	}
	normalized := s.normalize(name)
	if !IsVariable(normalized) || !s.validate(normalized) {
		return "", &InvalidNameError{Name: normalized}
	}
	return normalized, nil
}

// parseContents classifies text the way a user types it into a cell:
// "=..." is a formula, a finite number is a number, "" is empty and
// anything else is text
func (s *Spreadsheet) parseContents(text string) (Primitive, error) {
	if strings.HasPrefix(text, "=") {
		formula, err := NewFormulaWithContext(text[1:], s.formulaContext())
		if err != nil {
			formulaFormatErrorsTotal.Inc()
			return nil, err
		}
		return formula, nil
	}
	if text == "" {
		return nil, nil
	}
	if number, ok := parseNumber(strings.TrimSpace(text)); ok {
		return number, nil
	}
	return text, nil
}

// parseNumber accepts finite decimal floating-point literals. hex floats,
// which strconv also parses, stay text.
func parseNumber(text string) (float64, bool) {
	digits := strings.TrimLeft(text, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	number, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(number, 0) || math.IsNaN(number) {
		return 0, false
	}
	return number, true
}

// SetContentsOfCell sets the contents of a cell from user text and returns
// the cell followed by every cell whose value was recomputed, in
// recalculation order. on error the spreadsheet is unchanged.
func (s *Spreadsheet) SetContentsOfCell(name, text string) ([]string, error) {
	normalized, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}
	contents, err := s.parseContents(text)
	if err != nil {
		return nil, err
	}
	return s.setContents(normalized, contents)
}

// Set sets typed contents: a finite number, text or formula. text is stored as is,
// it is not parsed as a formula or number, and "" clears the cell. a
// formula is reparsed with this spreadsheet's normalizer and validator.
func (s *Spreadsheet) Set(name string, contents Primitive) ([]string, error) {
	normalized, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}

	switch v := contents.(type) {
	case nil:
		return nil, ErrNilContents
	case *Formula:
		if v == nil {
			return nil, ErrNilContents
		}
		formula, err := NewFormulaWithContext(v.String(), s.formulaContext())
		if err != nil {
			formulaFormatErrorsTotal.Inc()
			return nil, err
		}
		contents = formula
	case string:
		if v == "" {
			contents = nil
		}
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: non-finite number %v", ErrUnsupportedContents, v)
		}
	case int:
		contents = float64(v)
	case int64:
		contents = float64(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedContents, contents)
	}
	return s.setContents(normalized, contents)
}

// setContents commits contents for an already normalized name. the prior
// dependees are snapshotted by value so a circular assignment can be undone
// before any cell is touched.
func (s *Spreadsheet) setContents(name string, contents Primitive) ([]string, error) {
	var variables []string
	if formula, ok := contents.(*Formula); ok {
		variables = formula.Variables()
	}

	previous := s.graph.Dependees(name)
	s.graph.ReplaceDependees(name, variables)

	order, err := s.graph.CellsToRecalculate(name)
	if err != nil {
		s.graph.ReplaceDependees(name, previous)
		circularRejectionsTotal.Inc()
		s.logger.Warn("rejected circular assignment",
			slog.String("cell", name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if contents == nil {
		delete(s.cells, name)
	} else {
		cell := &Cell{Name: name, Contents: contents}
		cell.Value = s.evaluate(contents)
		s.cells[name] = cell
	}

	for _, dependent := range order[1:] {
		cell, exists := s.cells[dependent]
		if !exists || cell.Kind() != CellKindFormula {
			continue
		}
		cell.Value = s.evaluate(cell.Contents)
	}

	s.changed = true
	kind := KindOf(contents)
	cellUpdatesTotal.WithLabelValues(kind.String()).Inc()
	recalculatedCells.Observe(float64(len(order)))
	s.logger.Debug("cell set",
		slog.String("cell", name),
		slog.String("kind", kind.String()),
		slog.Int("recalculated", len(order)),
	)
	return order, nil
}

// evaluate computes the value of contents
func (s *Spreadsheet) evaluate(contents Primitive) Primitive {
	if formula, ok := contents.(*Formula); ok {
		return formula.Evaluate(s.lookup)
	}
	return contents
}

// lookup resolves a variable to the cached numeric value of its cell. empty
// cells, text and formula errors are undefined.
func (s *Spreadsheet) lookup(name string) (float64, error) {
	cell, exists := s.cells[name]
	if !exists {
		return 0, fmt.Errorf("cell %s is empty", name)
	}
	value, ok := cell.numberValue()
	if !ok {
		return 0, fmt.Errorf("cell %s has no numeric value", name)
	}
	return value, nil
}

// GetCellContents returns the contents of a cell: float64, string,
// *Formula, or nil if the cell is empty
func (s *Spreadsheet) GetCellContents(name string) (Primitive, error) {
	normalized, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}
	if cell, exists := s.cells[normalized]; exists {
		return cell.Contents, nil
	}
	return nil, nil
}

// GetCellValue returns the value of a cell: float64, string, FormulaError,
// or nil if the cell is empty
func (s *Spreadsheet) GetCellValue(name string) (Primitive, error) {
	normalized, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}
	if cell, exists := s.cells[normalized]; exists {
		return cell.Value, nil
	}
	return nil, nil
}

// GetCellText returns the contents of a cell as editable text, "" if the
// cell is empty. SetContentsOfCell with this text recreates the contents.
func (s *Spreadsheet) GetCellText(name string) (string, error) {
	contents, err := s.GetCellContents(name)
	if err != nil {
		return "", err
	}
	return contentsText(contents), nil
}

// GetDirectDependents returns the cells whose formulas reference name
func (s *Spreadsheet) GetDirectDependents(name string) ([]string, error) {
	normalized, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}
	return s.graph.Dependents(normalized), nil
}

// GetNamesOfAllNonemptyCells returns the sorted names of every cell with
// contents
func (s *Spreadsheet) GetNamesOfAllNonemptyCells() []string {
	names := make([]string, 0, len(s.cells))
	for name := range s.cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
