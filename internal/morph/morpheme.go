package morph

import (
	"context"
	"unicode/utf8"

	"github.com/ikawaha/kagome/v2/tokenizer"

	"GoSplit/internal/analysis"
	"GoSplit/internal/userdict"
)

type splitKey struct {
	mode    analysis.SplitMode
	surface string
}

// piece is the dictionary data of a morpheme without its position.
type piece struct {
	surface string
	oov     bool
	pos     []string
	base    string
	reading string
}

func pieceOf(kt tokenizer.Token) piece {
	base, _ := kt.BaseForm()
	reading, _ := kt.Reading()
	return piece{
		surface: kt.Surface,
		oov:     kt.Class == tokenizer.UNKNOWN,
		pos:     trimPOS(kt.POS()),
		base:    feature(base),
		reading: feature(reading),
	}
}

// feature maps the IPA dictionary placeholder to "".
func feature(v string) string {
	if v == "*" {
		return ""
	}
	return v
}

func trimPOS(pos []string) []string {
	for i, p := range pos {
		if p == "*" || p == "" {
			return pos[:i]
		}
	}
	return pos
}

// Morpheme is a kagome morpheme placed in its chunk. Begin and End are rune
// positions in the normalized chunk.
type Morpheme struct {
	piece
	t     *Tokenizer
	begin int
	end   int
}

var _ analysis.Morpheme = (*Morpheme)(nil)

func (t *Tokenizer) newMorpheme(kt tokenizer.Token, begin, end int) *Morpheme {
	return &Morpheme{piece: pieceOf(kt), t: t, begin: begin, end: end}
}

func (m *Morpheme) Surface() string        { return m.surface }
func (m *Morpheme) Begin() int             { return m.begin }
func (m *Morpheme) End() int               { return m.end }
func (m *Morpheme) IsOOV() bool            { return m.oov }
func (m *Morpheme) PartOfSpeech() []string { return m.pos }
func (m *Morpheme) DictionaryForm() string { return m.base }
func (m *Morpheme) ReadingForm() string    { return m.reading }

// Split returns the units of m under mode. C, out-of-vocabulary morphemes
// and surfaces with no finer analysis yield m alone.
func (m *Morpheme) Split(mode analysis.SplitMode) []analysis.Morpheme {
	self := []analysis.Morpheme{m}
	if mode == analysis.SplitC || m.oov || m.t == nil {
		return self
	}

	pieces := m.t.split(mode, m.surface)
	if len(pieces) < 2 {
		return self
	}
	units := make([]analysis.Morpheme, 0, len(pieces))
	begin := m.begin
	for _, p := range pieces {
		n := utf8.RuneCountInString(p.surface)
		units = append(units, &Morpheme{piece: p, t: m.t, begin: begin, end: begin + n})
		begin += n
	}
	if begin != m.end {
		m.t.logger.Warn("split does not cover morpheme",
			"surface", m.surface,
			"mode", mode.String(),
		)
		return self
	}
	return units
}

// split returns the pieces of surface under mode (A or B), from the user
// dictionary when it has an entry and from kagome otherwise.
func (t *Tokenizer) split(mode analysis.SplitMode, surface string) []piece {
	if utf8.RuneCountInString(surface) < 2 {
		return nil
	}
	key := splitKey{mode: mode, surface: surface}
	if t.cache != nil {
		if pieces, ok := t.cache.Get(key); ok {
			return pieces
		}
	}

	pieces, cacheable := t.userPieces(mode, surface)
	if pieces == nil {
		pieces = t.searchPieces(surface)
		if mode == analysis.SplitB {
			pieces = mergeSingles(pieces)
		}
	}
	if cacheable && t.cache != nil {
		t.cache.Add(key, pieces)
	}
	return pieces
}

// userPieces consults the user dictionary. cacheable is false when the
// lookup failed, so a later call retries it.
func (t *Tokenizer) userPieces(mode analysis.SplitMode, surface string) (pieces []piece, cacheable bool) {
	if t.opts.Source == nil {
		return nil, true
	}
	parts, ok, err := t.opts.Source.Lookup(context.Background(), surface, mode)
	if err != nil {
		t.logger.Warn("user dictionary lookup failed", "surface", surface, "error", err)
		return nil, false
	}
	if !ok {
		return nil, true
	}
	if err := userdict.Validate(surface, mode, parts); err != nil {
		t.logger.Warn("ignoring user split", "surface", surface, "error", err)
		return nil, true
	}

	pieces = make([]piece, 0, len(parts))
	for _, p := range parts {
		pieces = append(pieces, t.lookupPiece(p))
	}
	return pieces, true
}

// lookupPiece returns the dictionary data of s when kagome reads it as a
// single morpheme and a bare piece otherwise.
func (t *Tokenizer) lookupPiece(s string) piece {
	var found []tokenizer.Token
	for _, kt := range t.kg.Analyze(s, tokenizer.Normal) {
		if kt.Class != tokenizer.DUMMY {
			found = append(found, kt)
		}
	}
	if len(found) == 1 && found[0].Surface == s {
		return pieceOf(found[0])
	}
	return piece{surface: s}
}

// searchPieces re-analyzes surface in kagome's search mode, which breaks up
// long compound nouns.
func (t *Tokenizer) searchPieces(surface string) []piece {
	var pieces []piece
	for _, kt := range t.kg.Analyze(surface, tokenizer.Search) {
		if kt.Class == tokenizer.DUMMY || kt.Surface == "" {
			continue
		}
		pieces = append(pieces, pieceOf(kt))
	}
	return pieces
}

// mergeSingles joins every single rune piece to the piece before it. A
// leading single rune piece stays on its own.
func mergeSingles(pieces []piece) []piece {
	out := make([]piece, 0, len(pieces))
	for _, p := range pieces {
		if len(out) == 0 || utf8.RuneCountInString(p.surface) != 1 {
			out = append(out, p)
			continue
		}
		last := &out[len(out)-1]
		last.surface += p.surface
		last.base = last.surface
		if last.reading != "" && p.reading != "" {
			last.reading += p.reading
		} else {
			last.reading = ""
		}
		last.oov = last.oov || p.oov
	}
	return out
}
