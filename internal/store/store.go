// Package store persists documents and postings in a LevelDB database.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"GoSplit/internal/indexing"
)

// DirPerm is the permission of the database directory.
const DirPerm os.FileMode = 0755

var ErrNotFound = errors.New("not found")

const (
	postingsPrefix = "p/"
	documentPrefix = "d/"
)

// StoredDocument is a document as read back from the store.
type StoredDocument struct {
	ID     string              `json:"id"`
	Fields map[string]string   `json:"fields"`
	Terms  map[string][]string `json:"terms,omitempty"`
}

type documentRecord struct {
	Fields   map[string]string   `json:"fields"`
	Terms    map[string][]string `json:"terms,omitempty"`
	Checksum Checksum            `json:"checksum"`
}

// Store is a LevelDB-backed indexing.Sink. It is safe for concurrent use.
type Store struct {
	db     *leveldb.DB
	logger *slog.Logger

	// mu serializes read-modify-write of postings.
	mu sync.Mutex
}

var _ indexing.Sink = (*Store)(nil)

// Open opens or creates the database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	logger.Info("store opened", "dir", dir)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func postingsKey(field, term string) []byte {
	return []byte(postingsPrefix + field + "\x00" + term)
}

func documentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// AddPostings merges entries into the postings of field/term. An entry
// replaces an existing entry of the same document. Entries stay sorted by
// document ID.
func (s *Store) AddPostings(field, term string, entries []indexing.PostingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := postingsKey(field, term)
	existing, err := s.readPostings(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	byDoc := make(map[string]indexing.PostingEntry, len(existing)+len(entries))
	for _, e := range existing {
		byDoc[e.DocID] = e
	}
	for _, e := range entries {
		byDoc[e.DocID] = e
	}

	batch := new(leveldb.Batch)
	if err := writePostings(batch, key, byDoc); err != nil {
		return err
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("store: put postings %s/%s: %w", field, term, err)
	}
	return nil
}

// Postings returns the postings of field/term.
func (s *Store) Postings(field, term string) ([]indexing.PostingEntry, error) {
	return s.readPostings(postingsKey(field, term))
}

// Terms returns the terms of field starting with prefix, in byte order.
func (s *Store) Terms(field, prefix string) ([]string, error) {
	base := postingsPrefix + field + "\x00"
	iter := s.db.NewIterator(util.BytesPrefix([]byte(base+prefix)), nil)
	defer iter.Release()

	var terms []string
	for iter.Next() {
		terms = append(terms, string(bytes.TrimPrefix(iter.Key(), []byte(base))))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("store: list terms of %s: %w", field, err)
	}
	return terms, nil
}

// PutDocument stores the fields of a document and the terms it was indexed
// under, replacing any earlier record.
func (s *Store) PutDocument(id string, fields map[string]string, terms map[string][]string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	canonical, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("store: encode document %q: %w", id, err)
	}
	rec := documentRecord{Fields: fields, Terms: terms, Checksum: ComputeChecksum(canonical)}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode document %q: %w", id, err)
	}
	if err := s.db.Put(documentKey(id), data, nil); err != nil {
		return fmt.Errorf("store: put document %q: %w", id, err)
	}
	return nil
}

// Document returns a stored document. The field checksum is verified.
func (s *Store) Document(id string) (*StoredDocument, error) {
	rec, err := s.readDocument(id)
	if err != nil {
		return nil, err
	}
	return &StoredDocument{ID: id, Fields: rec.Fields, Terms: rec.Terms}, nil
}

// DeleteDocument removes a document and its entries from every postings
// list it was indexed under. Deleting a missing document is a no-op.
func (s *Store) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.readDocument(id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrChecksumMismatch) {
		return err
	}

	batch := new(leveldb.Batch)
	if rec != nil {
		for field, terms := range rec.Terms {
			for _, term := range terms {
				key := postingsKey(field, term)
				existing, err := s.readPostings(key)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				byDoc := make(map[string]indexing.PostingEntry, len(existing))
				for _, e := range existing {
					if e.DocID != id {
						byDoc[e.DocID] = e
					}
				}
				if err := writePostings(batch, key, byDoc); err != nil {
					return err
				}
			}
		}
	}
	batch.Delete(documentKey(id))
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("store: delete document %q: %w", id, err)
	}
	return nil
}

func (s *Store) readDocument(id string) (*documentRecord, error) {
	data, err := s.db.Get(documentKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document %q: %w", id, err)
	}
	var rec documentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("store: decode document %q: %w", id, err)
	}
	canonical, err := json.Marshal(rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("store: encode document %q: %w", id, err)
	}
	if err := VerifyChecksum(canonical, rec.Checksum); err != nil {
		s.logger.Error("stored document failed verification", "id", id, "error", err)
		return &rec, fmt.Errorf("document %q: %w", id, err)
	}
	return &rec, nil
}

func (s *Store) readPostings(key []byte) ([]indexing.PostingEntry, error) {
	data, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("postings %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get postings: %w", err)
	}
	var entries []indexing.PostingEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("store: decode postings %q: %w", key, err)
	}
	return entries, nil
}

// writePostings queues the entries of byDoc sorted by document ID, or
// deletes the key when byDoc is empty.
func writePostings(batch *leveldb.Batch, key []byte, byDoc map[string]indexing.PostingEntry) error {
	if len(byDoc) == 0 {
		batch.Delete(key)
		return nil
	}
	entries := make([]indexing.PostingEntry, 0, len(byDoc))
	for _, e := range byDoc {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DocID < entries[j].DocID })
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("store: encode postings %q: %w", key, err)
	}
	batch.Put(key, data)
	return nil
}
