package storage

import (
	"errors"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// ErrNoSheet is returned by (*BoltStore).Get when there is no such sheet.
var ErrNoSheet = errors.New("no such sheet")

// versionKey cannot collide with a cell name
var versionKey = []byte("\x00version")

// BoltStore keeps many spreadsheets in one bolt database, one bucket per
// sheet. inside a bucket the version is stored under versionKey and every
// other key is a cell name mapping to its contents.
type BoltStore struct {
	db *bolt.DB
}

var _ spreadsheet.DocumentStore = (*BoltStore)(nil)

// OpenBolt opens or creates the database at path
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, spreadsheet.NewReadWriteError("open "+path, err)
	}
	return &BoltStore{db: db}, nil
}

// OpenBoltReadOnly opens an existing database without creating it. a
// missing path is a read/write error wrapping os.ErrNotExist.
func OpenBoltReadOnly(path string) (*BoltStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, spreadsheet.NewReadWriteError("open "+path, err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, spreadsheet.NewReadWriteError("open "+path, err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Put replaces the sheet with doc
func (s *BoltStore) Put(sheet string, doc *spreadsheet.Document) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(sheet)) != nil {
			if err := tx.DeleteBucket([]byte(sheet)); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket([]byte(sheet))
		if err != nil {
			return err
		}
		if err := b.Put(versionKey, []byte(doc.Version)); err != nil {
			return err
		}
		for _, record := range doc.Cells {
			if err := b.Put([]byte(record.Name), []byte(record.Contents)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return spreadsheet.NewReadWriteError("put sheet "+sheet, err)
	}
	return nil
}

// Get returns the document stored for sheet, cells in name order
func (s *BoltStore) Get(sheet string) (*spreadsheet.Document, error) {
	var doc *spreadsheet.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sheet))
		if b == nil {
			return ErrNoSheet
		}
		version := b.Get(versionKey)
		if version == nil {
			return errors.New("missing version")
		}
		doc = &spreadsheet.Document{Version: string(version)}
		return b.ForEach(func(k, v []byte) error {
			if string(k) == string(versionKey) {
				return nil
			}
			doc.Cells = append(doc.Cells, spreadsheet.CellRecord{Name: string(k), Contents: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, spreadsheet.NewReadWriteError("get sheet "+sheet, err)
	}
	return doc, nil
}

// Delete removes a sheet. deleting a missing sheet is not an error.
func (s *BoltStore) Delete(sheet string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(sheet)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(sheet))
	})
	if err != nil {
		return spreadsheet.NewReadWriteError("delete sheet "+sheet, err)
	}
	return nil
}

// List returns the names of every stored sheet in order
func (s *BoltStore) List() ([]string, error) {
	var sheets []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			sheets = append(sheets, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, spreadsheet.NewReadWriteError("list sheets", err)
	}
	return sheets, nil
}
