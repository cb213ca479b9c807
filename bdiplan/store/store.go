// Package store persists compiled plan libraries in a BadgerDB keyed by a
// digest of the full input tuple, so repeat compilations of unchanged
// inputs skip the pipeline entirely.
package store

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// LibraryStore is a content-addressed store of compiled libraries.
type LibraryStore struct {
	db *badger.DB
}

// Open opens (or creates) a store at the given directory.
func Open(path string) (*LibraryStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is noise here.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening library store: %w", err)
	}
	return &LibraryStore{db: db}, nil
}

// Close releases the store.
func (s *LibraryStore) Close() error {
	return s.db.Close()
}

// Digest computes the content key of one compilation: the SHA-1 of the
// domain text, DFA text, grounding-map text and the budget configuration.
func Digest(domainText, dfaText, groundingText string, maxStates, maxObjects, mintermBudget int, refiner string) string {
	h := sha1.New()
	fmt.Fprintf(h, "domain:%d:%s", len(domainText), domainText)
	fmt.Fprintf(h, "dfa:%d:%s", len(dfaText), dfaText)
	fmt.Fprintf(h, "grounding:%d:%s", len(groundingText), groundingText)
	fmt.Fprintf(h, "budgets:%d:%d:%d:%s", maxStates, maxObjects, mintermBudget, refiner)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the library stored under a digest, if present.
func (s *LibraryStore) Get(digest string) (string, bool, error) {
	var library []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(digest))
		if err != nil {
			return err
		}
		library, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading library store: %w", err)
	}
	return string(library), true, nil
}

// Put stores a compiled library under its digest.
func (s *LibraryStore) Put(digest, library string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(digest), []byte(library))
	})
	if err != nil {
		return fmt.Errorf("writing library store: %w", err)
	}
	return nil
}
