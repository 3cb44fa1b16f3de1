package storage

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// workbook layout: cell names and contents as text in two columns of the
// cells sheet below a header row, the version in meta!B1
const (
	xlsxCellsSheet  = "cells"
	xlsxMetaSheet   = "meta"
	xlsxVersionKey  = "version"
	xlsxNameHeader  = "name"
	xlsxContentsHdr = "contents"
)

type cellWrite struct {
	sheet, cell, value string
}

// XLSX reads and writes Office Open XML workbooks. contents are always
// stored as strings so formulas are never evaluated by a spreadsheet
// application opening the file.
type XLSX struct{}

var _ spreadsheet.Serializer = XLSX{}

// Encode writes doc as a workbook
func (XLSX) Encode(w io.Writer, doc *spreadsheet.Document) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = spreadsheet.NewReadWriteError("close workbook", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", xlsxCellsSheet); err != nil {
		return spreadsheet.NewReadWriteError("create cells sheet", err)
	}
	if _, err := f.NewSheet(xlsxMetaSheet); err != nil {
		return spreadsheet.NewReadWriteError("create meta sheet", err)
	}

	writes := []cellWrite{
		{xlsxMetaSheet, "A1", xlsxVersionKey},
		{xlsxMetaSheet, "B1", doc.Version},
		{xlsxCellsSheet, "A1", xlsxNameHeader},
		{xlsxCellsSheet, "B1", xlsxContentsHdr},
	}
	for i, record := range doc.Cells {
		row := i + 2
		writes = append(writes,
			cellWrite{xlsxCellsSheet, fmt.Sprintf("A%d", row), record.Name},
			cellWrite{xlsxCellsSheet, fmt.Sprintf("B%d", row), record.Contents},
		)
	}
	for _, wr := range writes {
		if err := f.SetCellStr(wr.sheet, wr.cell, wr.value); err != nil {
			return spreadsheet.NewReadWriteError("write "+wr.sheet+"!"+wr.cell, err)
		}
	}

	if err := f.Write(w); err != nil {
		return spreadsheet.NewReadWriteError("write workbook", err)
	}
	return nil
}

// Decode reads a workbook written by Encode
func (XLSX) Decode(r io.Reader) (*spreadsheet.Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, spreadsheet.NewReadWriteError(invalidFile, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(xlsxMetaSheet); err != nil || idx < 0 {
		return nil, spreadsheet.NewReadWriteError(invalidFile+": missing meta sheet", err)
	}
	key, err := f.GetCellValue(xlsxMetaSheet, "A1")
	if err != nil || key != xlsxVersionKey {
		return nil, spreadsheet.NewReadWriteError(invalidFile+": missing version", err)
	}
	version, err := f.GetCellValue(xlsxMetaSheet, "B1")
	if err != nil {
		return nil, spreadsheet.NewReadWriteError(invalidFile+": missing version", err)
	}

	rows, err := f.GetRows(xlsxCellsSheet)
	if err != nil {
		return nil, spreadsheet.NewReadWriteError(invalidFile+": missing cells sheet", err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 || rows[0][0] != xlsxNameHeader || rows[0][1] != xlsxContentsHdr {
		return nil, spreadsheet.NewReadWriteError(invalidFile+": missing header row", nil)
	}

	doc := &spreadsheet.Document{Version: version}
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if len(row) < 2 || row[0] == "" {
			return nil, spreadsheet.NewReadWriteError(incompleteCell(i), nil)
		}
		doc.Cells = append(doc.Cells, spreadsheet.CellRecord{Name: row[0], Contents: row[1]})
	}
	return doc, nil
}
