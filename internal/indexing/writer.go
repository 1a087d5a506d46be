package indexing

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"GoSplit/internal/analysis"
)

// FieldDef describes how one document field is indexed.
type FieldDef struct {
	Name string `json:"name"`
	// Analyzer names a registry entry. Empty means "standard".
	Analyzer  string `json:"analyzer,omitempty"`
	Stored    bool   `json:"stored"`
	Positions bool   `json:"positions"`
}

// Document is a set of text fields under an external ID.
type Document struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// Sink receives flushed documents and postings.
type Sink interface {
	// DeleteDocument removes a document and its postings. Missing IDs are not an error.
	DeleteDocument(id string) error
	// PutDocument records the stored fields of a document and the terms it was indexed under.
	PutDocument(id string, fields map[string]string, terms map[string][]string) error
	// AddPostings merges entries into the postings of field/term.
	AddPostings(field, term string, entries []PostingEntry) error
}

// FlushResult contains information about a successful flush.
type FlushResult struct {
	Documents int
	Deleted   int
	Terms     int
	Duration  time.Duration
}

// Writer analyzes documents into a WriteBuffer and flushes it to a Sink.
// It is safe for concurrent use.
type Writer struct {
	fields   []FieldDef
	byName   map[string]FieldDef
	registry *analysis.Registry
	buffer   *WriteBuffer
	logger   *slog.Logger

	mu     sync.Mutex
	active bool
}

// NewWriter creates a new Writer for the given fields and analyzer registry.
func NewWriter(fields []FieldDef, registry *analysis.Registry) *Writer {
	byName := make(map[string]FieldDef, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Writer{
		fields:   fields,
		byName:   byName,
		registry: registry,
		buffer:   NewWriteBuffer(),
		logger:   slog.Default(),
		active:   true,
	}
}

// SetLogger replaces the writer's logger.
func (w *Writer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Fields returns the field definitions of the writer.
func (w *Writer) Fields() []FieldDef {
	return w.fields
}

// AddDocument analyzes a single document into the write buffer.
// Fields without a definition are rejected.
func (w *Writer) AddDocument(doc Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrWriterNotActive
	}
	if w.buffer.IsFull() {
		return ErrBufferFull
	}

	for name := range doc.Fields {
		if _, ok := w.byName[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	// A rejected document must leave the buffer untouched.
	analyzers := make(map[string]analysis.Analyzer, len(doc.Fields))
	for name := range doc.Fields {
		a, err := w.analyzer(w.byName[name])
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		analyzers[name] = a
	}

	if err := w.buffer.AddDoc(doc.ID); err != nil {
		return err
	}

	for _, def := range w.fields {
		text, ok := doc.Fields[def.Name]
		if !ok {
			continue
		}
		w.indexField(def, analyzers[def.Name], doc.ID, text)
		if def.Stored {
			w.buffer.StoreField(doc.ID, def.Name, text)
		}
	}
	return nil
}

// AddDocuments indexes multiple documents into the write buffer.
func (w *Writer) AddDocuments(docs []Document) error {
	for i, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

// DeleteDocument marks a document for deletion at the next flush. A copy
// of it still in the write buffer is discarded right away.
func (w *Writer) DeleteDocument(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrWriterNotActive
	}
	if id == "" {
		return ErrMissingID
	}
	w.buffer.MarkDeleted(id)
	return nil
}

// DocCount returns the number of documents currently in the write buffer.
func (w *Writer) DocCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.DocCount
}

// IsFull returns true if the write buffer has reached its memory or document limit.
func (w *Writer) IsFull() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.IsFull()
}

// Buffer returns the current write buffer.
func (w *Writer) Buffer() *WriteBuffer {
	return w.buffer
}

// Flush writes deletions, then buffered documents and their postings to
// sink, and resets the buffer. A buffered document replaces any earlier
// version in the sink. On error the buffer is kept so the flush can be retried.
func (w *Writer) Flush(sink Sink) (*FlushResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	b := w.buffer

	deleted := make([]string, 0, len(b.Deletions))
	for id := range b.Deletions {
		deleted = append(deleted, id)
	}
	sort.Strings(deleted)
	for _, id := range deleted {
		if err := sink.DeleteDocument(id); err != nil {
			return nil, fmt.Errorf("flush: delete %q: %w", id, err)
		}
	}

	for _, id := range b.Docs {
		if err := sink.DeleteDocument(id); err != nil {
			return nil, fmt.Errorf("flush: replace %q: %w", id, err)
		}
		if err := sink.PutDocument(id, b.StoredFields[id], b.Terms(id)); err != nil {
			return nil, fmt.Errorf("flush: put %q: %w", id, err)
		}
	}

	for field, terms := range b.InvertedIndex {
		for term, pl := range terms {
			if err := sink.AddPostings(field, term, pl.Entries); err != nil {
				return nil, fmt.Errorf("flush: postings %s/%s: %w", field, term, err)
			}
		}
	}

	result := &FlushResult{
		Documents: b.DocCount,
		Deleted:   len(deleted),
		Terms:     b.TermCount,
		Duration:  time.Since(start),
	}
	b.Reset()

	w.logger.Info("write buffer flushed",
		"documents", result.Documents,
		"deleted", result.Deleted,
		"terms", result.Terms,
		"duration", result.Duration,
	)
	return result, nil
}

// Abort discards all buffered changes.
func (w *Writer) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer.Reset()
}

// Release deactivates the writer.
func (w *Writer) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
}

func (w *Writer) analyzer(def FieldDef) (analysis.Analyzer, error) {
	name := def.Analyzer
	if name == "" {
		name = "standard"
	}
	return w.registry.Get(name)
}

// indexField records term frequencies and positions. Split units that
// repeat the head term at the same position count once.
func (w *Writer) indexField(def FieldDef, analyzer analysis.Analyzer, docID, text string) {
	tokens := analyzer.Analyze(def.Name, text)

	type seenKey struct {
		term string
		pos  int
	}
	seen := make(map[seenKey]bool, len(tokens))
	termFreqs := make(map[string]uint32)
	termPositions := make(map[string][]uint32)
	var order []string
	for _, tok := range tokens {
		k := seenKey{tok.Term, tok.Position}
		if seen[k] {
			continue
		}
		seen[k] = true
		if _, ok := termFreqs[tok.Term]; !ok {
			order = append(order, tok.Term)
		}
		termFreqs[tok.Term]++
		if def.Positions {
			termPositions[tok.Term] = append(termPositions[tok.Term], uint32(tok.Position))
		}
	}

	for _, term := range order {
		var positions []uint32
		if def.Positions {
			positions = termPositions[term]
		}
		w.buffer.AddPosting(def.Name, term, docID, termFreqs[term], positions)
	}
}
