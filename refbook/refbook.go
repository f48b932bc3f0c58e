// Package refbook persists contract references across sessions. A reference
// is the only durable handle to a deployed governing contract, so losing it
// means losing the contract; the book keeps every reference it has seen plus
// the one used most recently.
package refbook

import (
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	lastKey   = []byte("last")
	refPrefix = []byte("ref/")
)

type Book struct {
	db *leveldb.DB
}

func Open(path string) (*Book, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Book{db: db}, nil
}

func (b *Book) Close() error {
	return b.db.Close()
}

// Put records a reference. Re-recording a known reference refreshes its
// timestamp.
func (b *Book) Put(ref string) error {
	key := append(refPrefix, ref...)
	return b.db.Put(key, []byte(time.Now().UTC().Format(time.RFC3339)), nil)
}

// SetLast marks ref as the most recently used reference, recording it first
// if unseen.
func (b *Book) SetLast(ref string) error {
	if err := b.Put(ref); err != nil {
		return err
	}
	return b.db.Put(lastKey, []byte(ref), nil)
}

// Last returns the most recently used reference, if any.
func (b *Book) Last() (string, bool, error) {
	v, err := b.db.Get(lastKey, nil)
	if err == leveldb.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

// List returns every recorded reference in key order.
func (b *Book) List() ([]string, error) {
	var refs []string
	it := b.db.NewIterator(util.BytesPrefix(refPrefix), nil)
	defer it.Release()
	for it.Next() {
		refs = append(refs, string(it.Key()[len(refPrefix):]))
	}
	return refs, it.Error()
}
