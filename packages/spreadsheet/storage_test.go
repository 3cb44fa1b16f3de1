package spreadsheet

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// yamlSerializer is a minimal Serializer for exercising the store without
// importing the storage package
type yamlSerializer struct{}

func (yamlSerializer) Encode(w io.Writer, doc *Document) error {
	return yaml.NewEncoder(w).Encode(doc)
}

func (yamlSerializer) Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type failingSerializer struct{}

func (failingSerializer) Encode(io.Writer, *Document) error { return errors.New("disk full") }

func (failingSerializer) Decode(io.Reader) (*Document, error) { return nil, errors.New("garbage") }

func buildSheet(t *testing.T, context *SpreadsheetContext, cells map[string]string) *Spreadsheet {
	t.Helper()
	s := NewSpreadsheetWithContext(context)
	for name, text := range cells {
		_, err := s.SetContentsOfCell(name, text)
		require.NoError(t, err)
	}
	return s
}

func TestDocument(t *testing.T) {
	s := buildSheet(t, &SpreadsheetContext{Version: "v1"}, map[string]string{
		"B1": "=A1 * 2",
		"A1": "2.50",
		"C1": "hello",
	})
	doc := s.Document()
	assert.Equal(t, "v1", doc.Version)
	assert.Equal(t, []CellRecord{
		{Name: "A1", Contents: "2.5"},
		{Name: "B1", Contents: "=A1*2"},
		{Name: "C1", Contents: "hello"},
	}, doc.Cells)
}

func TestSaveAndLoad(t *testing.T) {
	context := &SpreadsheetContext{Version: "v2", Normalize: UpperNormalizer}
	s := buildSheet(t, context, map[string]string{
		"a1": "3",
		"b1": "=a1+1",
		"c1": "=b1/0",
		"d1": "note",
	})
	require.True(t, s.Changed())

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf, yamlSerializer{}))
	assert.False(t, s.Changed())

	saved := buf.String()
	version, err := SavedVersion(strings.NewReader(saved), yamlSerializer{})
	require.NoError(t, err)
	assert.Equal(t, "v2", version)

	loaded, err := Load(strings.NewReader(saved), yamlSerializer{}, context)
	require.NoError(t, err)
	assert.False(t, loaded.Changed())
	assert.Equal(t, s.GetNamesOfAllNonemptyCells(), loaded.GetNamesOfAllNonemptyCells())
	for _, name := range s.GetNamesOfAllNonemptyCells() {
		want, err := s.GetCellValue(name)
		require.NoError(t, err)
		got, err := loaded.GetCellValue(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestLoadOrderIndependent(t *testing.T) {
	doc := &Document{Version: DefaultVersion, Cells: []CellRecord{
		{Name: "C1", Contents: "=B1*2"},
		{Name: "B1", Contents: "=A1+1"},
		{Name: "A1", Contents: "1"},
	}}
	s, err := NewSpreadsheetFromDocument(doc, nil)
	require.NoError(t, err)
	value, err := s.GetCellValue("C1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, value)
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
	}{
		{"nil document", nil},
		{"version mismatch", &Document{Version: "other"}},
		{"invalid name", &Document{Version: DefaultVersion, Cells: []CellRecord{{Name: "1A", Contents: "1"}}}},
		{"invalid formula", &Document{Version: DefaultVersion, Cells: []CellRecord{{Name: "A1", Contents: "=1+"}}}},
		{"circular", &Document{Version: DefaultVersion, Cells: []CellRecord{
			{Name: "A1", Contents: "=B1"},
			{Name: "B1", Contents: "=A1"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpreadsheetFromDocument(tt.doc, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReadWrite)
			var rw *ReadWriteError
			assert.ErrorAs(t, err, &rw)
		})
	}
}

func TestSerializerFailures(t *testing.T) {
	s := buildSheet(t, nil, map[string]string{"A1": "1"})
	err := s.Save(io.Discard, failingSerializer{})
	assert.ErrorIs(t, err, ErrReadWrite)
	assert.True(t, s.Changed())

	_, err = Load(strings.NewReader(""), failingSerializer{}, nil)
	assert.ErrorIs(t, err, ErrReadWrite)

	_, err = SavedVersion(strings.NewReader(""), failingSerializer{})
	assert.ErrorIs(t, err, ErrReadWrite)
}

func TestSaveFileAndOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.yaml")
	s := buildSheet(t, nil, map[string]string{"A1": "2", "A2": "=A1*A1"})
	require.NoError(t, s.SaveFile(path, yamlSerializer{}))

	loaded, err := OpenFile(path, yamlSerializer{}, nil)
	require.NoError(t, err)
	value, err := loaded.GetCellValue("A2")
	require.NoError(t, err)
	assert.Equal(t, 4.0, value)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.yaml"), yamlSerializer{}, nil)
	assert.ErrorIs(t, err, ErrReadWrite)

	err = s.SaveFile(filepath.Join(t.TempDir(), "no", "such", "dir.yaml"), yamlSerializer{})
	assert.ErrorIs(t, err, ErrReadWrite)
}

type memoryStore map[string]*Document

func (m memoryStore) Put(key string, doc *Document) error {
	m[key] = doc
	return nil
}

func (m memoryStore) Get(key string) (*Document, error) {
	doc, ok := m[key]
	if !ok {
		return nil, errors.New("no document " + key)
	}
	return doc, nil
}

func TestSaveToAndLoadFrom(t *testing.T) {
	store := memoryStore{}
	s := buildSheet(t, nil, map[string]string{"A1": "6", "B1": "=A1/3"})
	require.NoError(t, s.SaveTo(store, "budget"))
	assert.False(t, s.Changed())

	loaded, err := LoadFrom(store, "budget", nil)
	require.NoError(t, err)
	value, err := loaded.GetCellValue("B1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, value)

	_, err = LoadFrom(store, "missing", nil)
	assert.ErrorIs(t, err, ErrReadWrite)
}
