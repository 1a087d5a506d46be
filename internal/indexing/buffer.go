package indexing

import (
	"errors"
	"sort"
	"sync/atomic"
)

// Buffer limits.
const (
	DefaultBufferMemoryLimit = 64 * 1024 * 1024 // 64MB
	DefaultMaxDocsPerFlush   = 100_000
)

var (
	ErrBufferFull      = errors.New("write buffer memory limit reached")
	ErrDuplicateDoc    = errors.New("duplicate document ID in buffer")
	ErrMissingID       = errors.New("document has no ID")
	ErrUnknownField    = errors.New("unknown field in document")
	ErrWriterNotActive = errors.New("writer is not active")
)

// PostingEntry represents a single posting for a term in a field.
// Positions are absolute token graph positions, so overlapping split units
// share positions with the token they were cut from.
type PostingEntry struct {
	DocID     string   `json:"doc_id"`
	Freq      uint32   `json:"freq"`
	Positions []uint32 `json:"positions,omitempty"`
}

// PostingsList accumulates postings for a single term in a single field.
type PostingsList struct {
	Entries []PostingEntry
}

// WriteBuffer accumulates documents until they are flushed.
type WriteBuffer struct {
	// InvertedIndex: field → term → postings list
	InvertedIndex map[string]map[string]*PostingsList

	// StoredFields: doc ID → field → value
	StoredFields map[string]map[string]string

	// Docs holds the IDs added since the last reset, in order.
	Docs []string

	// Deletions tracks IDs marked for deletion.
	Deletions map[string]bool

	DocCount  int
	TermCount int

	memoryUsed  atomic.Int64
	MemoryLimit int64
	MaxDocs     int
}

// NewWriteBuffer creates a new empty write buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		InvertedIndex: make(map[string]map[string]*PostingsList),
		StoredFields:  make(map[string]map[string]string),
		Deletions:     make(map[string]bool),
		MemoryLimit:   DefaultBufferMemoryLimit,
		MaxDocs:       DefaultMaxDocsPerFlush,
	}
}

// AddPosting adds a posting entry for the given field and term.
func (b *WriteBuffer) AddPosting(field, term, docID string, freq uint32, positions []uint32) {
	fieldMap, ok := b.InvertedIndex[field]
	if !ok {
		fieldMap = make(map[string]*PostingsList)
		b.InvertedIndex[field] = fieldMap
	}

	pl, ok := fieldMap[term]
	if !ok {
		pl = &PostingsList{}
		fieldMap[term] = pl
		b.TermCount++
	}

	pl.Entries = append(pl.Entries, PostingEntry{
		DocID:     docID,
		Freq:      freq,
		Positions: positions,
	})

	// Approximate memory tracking.
	b.memoryUsed.Add(int64(16 + len(term) + len(docID) + len(positions)*4))
}

// StoreField stores a field value for a document.
func (b *WriteBuffer) StoreField(docID, field, value string) {
	fields, ok := b.StoredFields[docID]
	if !ok {
		fields = make(map[string]string)
		b.StoredFields[docID] = fields
	}
	fields[field] = value
	b.memoryUsed.Add(int64(len(value) + len(field)))
}

// AddDoc registers a document ID. It fails if the ID is already buffered.
func (b *WriteBuffer) AddDoc(docID string) error {
	if docID == "" {
		return ErrMissingID
	}
	if _, exists := b.StoredFields[docID]; exists {
		return ErrDuplicateDoc
	}
	b.StoredFields[docID] = make(map[string]string)
	b.Docs = append(b.Docs, docID)
	b.DocCount++
	return nil
}

// Terms returns, for docID, the sorted terms of every field it was indexed in.
func (b *WriteBuffer) Terms(docID string) map[string][]string {
	out := make(map[string][]string)
	for field, terms := range b.InvertedIndex {
		for term, pl := range terms {
			for _, e := range pl.Entries {
				if e.DocID == docID {
					out[field] = append(out[field], term)
					break
				}
			}
		}
	}
	for _, terms := range out {
		sort.Strings(terms)
	}
	return out
}

// MemoryUsed returns the approximate memory used by the buffer.
func (b *WriteBuffer) MemoryUsed() int64 {
	return b.memoryUsed.Load()
}

// IsFull returns true if the buffer has reached its memory or document limit.
func (b *WriteBuffer) IsFull() bool {
	if b.DocCount >= b.MaxDocs {
		return true
	}
	if b.memoryUsed.Load() >= b.MemoryLimit {
		return true
	}
	return false
}

// MarkDeleted records an ID for deletion at flush time. A document with
// that ID still in the buffer is dropped along with its postings.
func (b *WriteBuffer) MarkDeleted(docID string) {
	b.Deletions[docID] = true
	if _, ok := b.StoredFields[docID]; !ok {
		return
	}
	b.discard(docID)
}

// discard removes a buffered document. Memory accounting is approximate
// and is not given back until Reset.
func (b *WriteBuffer) discard(docID string) {
	delete(b.StoredFields, docID)
	for i, id := range b.Docs {
		if id == docID {
			b.Docs = append(b.Docs[:i], b.Docs[i+1:]...)
			break
		}
	}
	b.DocCount--

	for field, terms := range b.InvertedIndex {
		for term, pl := range terms {
			kept := pl.Entries[:0]
			for _, e := range pl.Entries {
				if e.DocID != docID {
					kept = append(kept, e)
				}
			}
			pl.Entries = kept
			if len(kept) == 0 {
				delete(terms, term)
				b.TermCount--
			}
		}
		if len(terms) == 0 {
			delete(b.InvertedIndex, field)
		}
	}
}

// Reset clears the buffer for reuse.
func (b *WriteBuffer) Reset() {
	b.InvertedIndex = make(map[string]map[string]*PostingsList)
	b.StoredFields = make(map[string]map[string]string)
	b.Docs = nil
	b.Deletions = make(map[string]bool)
	b.DocCount = 0
	b.TermCount = 0
	b.memoryUsed.Store(0)
}
