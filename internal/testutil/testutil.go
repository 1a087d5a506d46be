package testutil

import (
	"testing"
	"unicode/utf8"

	"GoSplit/internal/analysis"
	"GoSplit/internal/indexing"
)

// Morph is a scripted morpheme. Splits maps a split mode to the surfaces of
// its units; a mode without an entry yields the morpheme itself.
type Morph struct {
	Text    string
	Start   int
	OOV     bool
	POS     []string
	Base    string
	Reading string
	Splits  map[analysis.SplitMode][]string
}

// Word returns an in-vocabulary morpheme.
func Word(text string, pos ...string) *Morph {
	return &Morph{Text: text, POS: pos}
}

// Unknown returns an out-of-vocabulary morpheme.
func Unknown(text string) *Morph {
	return &Morph{Text: text, OOV: true, POS: []string{"名詞", "固有名詞"}}
}

// WithSplit sets the units of m for mode and returns m.
func (m *Morph) WithSplit(mode analysis.SplitMode, parts ...string) *Morph {
	if m.Splits == nil {
		m.Splits = make(map[analysis.SplitMode][]string)
	}
	m.Splits[mode] = parts
	return m
}

// WithForms sets the dictionary and reading forms and returns m.
func (m *Morph) WithForms(base, reading string) *Morph {
	m.Base = base
	m.Reading = reading
	return m
}

func (m *Morph) Surface() string        { return m.Text }
func (m *Morph) Begin() int             { return m.Start }
func (m *Morph) End() int               { return m.Start + utf8.RuneCountInString(m.Text) }
func (m *Morph) IsOOV() bool            { return m.OOV }
func (m *Morph) PartOfSpeech() []string { return m.POS }
func (m *Morph) DictionaryForm() string { return m.Base }
func (m *Morph) ReadingForm() string    { return m.Reading }

func (m *Morph) Split(mode analysis.SplitMode) []analysis.Morpheme {
	parts := m.Splits[mode]
	if mode == analysis.SplitC || len(parts) == 0 {
		return []analysis.Morpheme{m}
	}
	units := make([]analysis.Morpheme, 0, len(parts))
	begin := m.Start
	for _, p := range parts {
		units = append(units, &Morph{Text: p, Start: begin, POS: m.POS, Base: p})
		begin += utf8.RuneCountInString(p)
	}
	return units
}

// MorphToken builds the upstream token for m placed at byte offset start of
// an unnormalized text.
func MorphToken(m *Morph, start int) analysis.Token {
	widths := make([]int, 0, len(m.Text))
	for _, r := range m.Text {
		widths = append(widths, utf8.RuneLen(r))
	}
	offsets := analysis.Identity(start, widths...)
	return analysis.Token{
		Term:              m.Text,
		Start:             offsets[0],
		End:               offsets[len(offsets)-1],
		PositionIncrement: 1,
		PositionLength:    1,
		Kind:              analysis.KindMorpheme,
		Morpheme:          m,
		Offsets:           offsets,
	}
}

// Sentence lays the morphemes out back to back from offset 0.
func Sentence(ms ...*Morph) []analysis.Token {
	tokens := make([]analysis.Token, 0, len(ms))
	offset := 0
	for _, m := range ms {
		tok := MorphToken(m, offset)
		tokens = append(tokens, tok)
		offset = tok.End
	}
	return tokens
}

// Stream returns a stream over Sentence(ms...).
func Stream(ms ...*Morph) analysis.TokenStream {
	return analysis.NewSliceStream(Sentence(ms...))
}

// Tokenizer returns a tokenizer that ignores its text and replays ms.
func Tokenizer(ms ...*Morph) analysis.Tokenizer {
	return analysis.TokenizerFunc(func(string) analysis.TokenStream {
		return Stream(ms...)
	})
}

// Terms returns the terms of tokens in order.
func Terms(tokens []analysis.Token) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// BasicFields returns field definitions suitable for most tests.
func BasicFields() []indexing.FieldDef {
	return []indexing.FieldDef{
		{Name: "title", Analyzer: "standard", Stored: true, Positions: true},
		{Name: "body", Analyzer: "standard", Stored: false, Positions: true},
		{Name: "tags", Analyzer: "whitespace", Stored: true},
	}
}

// SampleDocuments returns a small set of test documents.
func SampleDocuments() []indexing.Document {
	return []indexing.Document{
		{ID: "doc-1", Fields: map[string]string{
			"title": "Introduction to Search Engines",
			"body":  "Full-text search is a technique for searching documents",
			"tags":  "search tutorial",
		}},
		{ID: "doc-2", Fields: map[string]string{
			"title": "Advanced Query Processing",
			"body":  "Boolean queries combine multiple search terms",
			"tags":  "search advanced",
		}},
		{ID: "doc-3", Fields: map[string]string{
			"title": "Building an Inverted Index",
			"body":  "An inverted index maps terms to the documents containing them",
			"tags":  "indexing tutorial",
		}},
	}
}

// IngestDocuments indexes a set of documents into a writer.
func IngestDocuments(t *testing.T, w *indexing.Writer, docs []indexing.Document) {
	t.Helper()
	for _, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			t.Fatalf("AddDocument(%v): %v", doc.ID, err)
		}
	}
}

// CreatePopulatedWriter creates a writer with sample documents already ingested.
func CreatePopulatedWriter(t *testing.T) *indexing.Writer {
	t.Helper()
	w := indexing.NewWriter(BasicFields(), analysis.NewRegistry())
	IngestDocuments(t, w, SampleDocuments())
	return w
}
