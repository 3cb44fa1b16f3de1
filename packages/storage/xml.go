package storage

import (
	"encoding/xml"
	"io"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// XML reads and writes the element format
//
//	<spreadsheet version="v">
//	  <cell><name>A1</name><contents>=B1*2</contents></cell>
//	</spreadsheet>
type XML struct{}

var _ spreadsheet.Serializer = XML{}

type xmlSpreadsheet struct {
	XMLName xml.Name  `xml:"spreadsheet"`
	Version *string   `xml:"version,attr"`
	Cells   []xmlCell `xml:"cell"`
}

type xmlCell struct {
	Name     *string `xml:"name"`
	Contents *string `xml:"contents"`
}

// Encode writes doc as an indented XML document
func (XML) Encode(w io.Writer, doc *spreadsheet.Document) error {
	out := xmlSpreadsheet{Version: &doc.Version}
	for i := range doc.Cells {
		out.Cells = append(out.Cells, xmlCell{
			Name:     &doc.Cells[i].Name,
			Contents: &doc.Cells[i].Contents,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return spreadsheet.NewReadWriteError("write xml header", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return spreadsheet.NewReadWriteError("encode xml", err)
	}
	if err := enc.Close(); err != nil {
		return spreadsheet.NewReadWriteError("encode xml", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return spreadsheet.NewReadWriteError("encode xml", err)
	}
	return nil
}

// Decode reads a document. the root must be <spreadsheet> with a version
// attribute and every <cell> needs both <name> and <contents>.
func (XML) Decode(r io.Reader) (*spreadsheet.Document, error) {
	var in xmlSpreadsheet
	if err := xml.NewDecoder(r).Decode(&in); err != nil {
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
