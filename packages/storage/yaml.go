package storage

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// YAML reads and writes
//
//	version: v
//	cells:
//	  - name: A1
//	    contents: =B1*2
type YAML struct{}

var _ spreadsheet.Serializer = YAML{}

type yamlDocument struct {
	Version *string    `yaml:"version"`
	Cells   []yamlCell `yaml:"cells"`
}

type yamlCell struct {
	Name     *string `yaml:"name"`
	Contents *string `yaml:"contents"`
}

// Encode writes doc with two space indentation
func (YAML) Encode(w io.Writer, doc *spreadsheet.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return spreadsheet.NewReadWriteError("encode yaml", err)
	}
	if err := enc.Close(); err != nil {
		return spreadsheet.NewReadWriteError("encode yaml", err)
	}
	return nil
}

// Decode reads a document. unknown fields are rejected.
func (YAML) Decode(r io.Reader) (*spreadsheet.Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var in yamlDocument
	if err := dec.Decode(&in); err != nil {
		return nil, spreadsheet.NewReadWriteError(invalidFile, err)
	}
	if in.Version == nil {
		return nil, spreadsheet.NewReadWriteError(invalidFile+": missing version", nil)
	}

	doc := &spreadsheet.Document{Version: *in.Version}
	for i, cell := range in.Cells {
		if cell.Name == nil || cell.Contents == nil {
			return nil, spreadsheet.NewReadWriteError(incompleteCell(i), nil)
		}
		doc.Cells = append(doc.Cells, spreadsheet.CellRecord{Name: *cell.Name, Contents: *cell.Contents})
	}
	return doc, nil
}
