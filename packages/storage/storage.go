// Package storage provides the persistence formats for spreadsheet
// documents: XML, YAML and XLSX serializers and a bolt database store.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// ErrUnknownFormat is returned when a format or file extension has no
// serializer.
var ErrUnknownFormat = errors.New("unknown storage format")

const invalidFile = "Invalid file!"

func incompleteCell(index int) string {
	return fmt.Sprintf("%s: cell %d needs a name and contents", invalidFile, index)
}

// Format names a storage format
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
	FormatBolt Format = "bolt"
)

// Formats lists every supported format
var Formats = []Format{FormatXML, FormatYAML, FormatXLSX, FormatBolt}

// FormatForPath picks a format from the file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".db", ".bolt":
		return FormatBolt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Serializer returns the stream serializer for a format. bolt is a
// database, not a stream format, and has none.
func Serializer(format Format) (spreadsheet.Serializer, error) {
	switch format {
	case FormatXML:
		return XML{}, nil
	case FormatYAML:
		return YAML{}, nil
	case FormatXLSX:
		return XLSX{}, nil
	}
	return nil, fmt.Errorf("%w: no serializer for %q", ErrUnknownFormat, format)
}

// ForPath returns the serializer for a file by its extension
func ForPath(path string) (spreadsheet.Serializer, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return Serializer(format)
}

// ReadDocument reads the document at path. sheet selects the bucket when
// path is a bolt database and is ignored otherwise. a missing database is
// not created.
func ReadDocument(path, sheet string) (*spreadsheet.Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatBolt {
		store, err := OpenBoltReadOnly(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Get(sheet)
	}

	serializer, err := Serializer(format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, spreadsheet.NewReadWriteError("open "+path, err)
	}
	defer f.Close()
	return serializer.Decode(f)
}

// WriteDocument writes doc to path, replacing a file or the bolt bucket
// named sheet
func WriteDocument(path, sheet string, doc *spreadsheet.Document) (err error) {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	if format == FormatBolt {
		store, err := OpenBolt(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Put(sheet, doc)
	}

	serializer, err := Serializer(format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return spreadsheet.NewReadWriteError("create "+path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = spreadsheet.NewReadWriteError("close "+path, cerr)
		}
	}()
	return serializer.Encode(f, doc)
}

// OpenSheet loads the spreadsheet at path. see ReadDocument for sheet.
func OpenSheet(path, sheet string, context *spreadsheet.SpreadsheetContext) (*spreadsheet.Spreadsheet, error) {
	if format, err := FormatForPath(path); err == nil && format == FormatBolt {
		store, err := OpenBoltReadOnly(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return spreadsheet.LoadFrom(store, sheet, context)
	}
	serializer, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return spreadsheet.OpenFile(path, serializer, context)
}

// SaveSheet saves s to path. see WriteDocument for sheet.
func SaveSheet(path, sheet string, s *spreadsheet.Spreadsheet) error {
	if format, err := FormatForPath(path); err == nil && format == FormatBolt {
		store, err := OpenBolt(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return s.SaveTo(store, sheet)
	}
	serializer, err := ForPath(path)
	if err != nil {
		return err
	}
	return s.SaveFile(path, serializer)
}
