package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CellRecord is one saved cell: its name and its contents as editable
// text, formulas prefixed with '='
type CellRecord struct {
	Name     string `yaml:"name"`
	Contents string `yaml:"contents"`
}

// Document is the persisted form of a spreadsheet
type Document struct {
	Version string       `yaml:"version"`
	Cells   []CellRecord `yaml:"cells"`
}

// Serializer encodes and decodes documents in one concrete format.
// implementations live in the storage package.
type Serializer interface {
	Encode(w io.Writer, doc *Document) error
	Decode(r io.Reader) (*Document, error)
}

// DocumentStore keeps documents under string keys, e.g. a database
type DocumentStore interface {
	Put(key string, doc *Document) error
	Get(key string) (*Document, error)
}

// Document returns the spreadsheet's version and every non-empty cell in
// name order
func (s *Spreadsheet) Document() *Document {
	doc := &Document{Version: s.version}
	for _, name := range s.GetNamesOfAllNonemptyCells() {
		doc.Cells = append(doc.Cells, CellRecord{Name: name, Contents: s.cells[name].Text()})
	}
	return doc
}

// Save encodes the spreadsheet to w and clears the changed flag
func (s *Spreadsheet) Save(w io.Writer, serializer Serializer) error {
	if err := serializer.Encode(w, s.Document()); err != nil {
		return asReadWriteError("save spreadsheet", err)
	}
	s.changed = false
	s.logger.Debug("spreadsheet saved")
	return nil
}

// SaveFile saves the spreadsheet to the file at path, replacing it
func (s *Spreadsheet) SaveFile(path string, serializer Serializer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return NewReadWriteError("create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = NewReadWriteError("close "+path, cerr)
		}
	}()
	return s.Save(f, serializer)
}

// SaveTo stores the spreadsheet under key and clears the changed flag
func (s *Spreadsheet) SaveTo(store DocumentStore, key string) error {
	if err := store.Put(key, s.Document()); err != nil {
		return asReadWriteError("save spreadsheet "+key, err)
	}
	s.changed = false
	s.logger.Debug("spreadsheet stored", slog.String("key", key))
	return nil
}

// LoadFrom builds a spreadsheet from the document stored under key
func LoadFrom(store DocumentStore, key string, context *SpreadsheetContext) (*Spreadsheet, error) {
	doc, err := store.Get(key)
	if err != nil {
		return nil, asReadWriteError("load spreadsheet "+key, err)
	}
	return NewSpreadsheetFromDocument(doc, context)
}

// SavedVersion returns the version recorded in a saved document
func SavedVersion(r io.Reader, serializer Serializer) (string, error) {
	doc, err := serializer.Decode(r)
	if err != nil {
		return "", asReadWriteError("read version", err)
	}
	return doc.Version, nil
}

// Load decodes a document from r and builds a spreadsheet from it
func Load(r io.Reader, serializer Serializer, context *SpreadsheetContext) (*Spreadsheet, error) {
	doc, err := serializer.Decode(r)
	if err != nil {
		return nil, asReadWriteError("load spreadsheet", err)
	}
	return NewSpreadsheetFromDocument(doc, context)
}

// OpenFile loads the spreadsheet saved at path
func OpenFile(path string, serializer Serializer, context *SpreadsheetContext) (*Spreadsheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewReadWriteError("open "+path, err)
	}
	defer f.Close()
	return Load(f, serializer, context)
}

// NewSpreadsheetFromDocument builds a spreadsheet configured by context and
// fills it with the cells of doc. the document version must equal the
// context version. any cell that cannot be set fails the whole load with a
// *ReadWriteError. the result reports Changed() == false.
func NewSpreadsheetFromDocument(doc *Document, context *SpreadsheetContext) (*Spreadsheet, error) {
	s := NewSpreadsheetWithContext(context)
	if doc == nil {
		return nil, NewReadWriteError("load spreadsheet: no document", nil)
	}
	if doc.Version != s.version {
		return nil, NewReadWriteError(
			fmt.Sprintf("load spreadsheet: version %q does not match %q", doc.Version, s.version), nil)
	}
	for _, record := range doc.Cells {
		if _, err := s.SetContentsOfCell(record.Name, record.Contents); err != nil {
			return nil, NewReadWriteError("load cell "+record.Name, err)
		}
	}
	s.changed = false
	s.logger.Debug("spreadsheet loaded", slog.Int("cells", len(doc.Cells)))
	return s, nil
}

// asReadWriteError wraps err unless it already is a read/write error
func asReadWriteError(message string, err error) error {
	var rw *ReadWriteError
	if errors.As(err, &rw) {
		return err
	}
	return NewReadWriteError(message, err)
}
