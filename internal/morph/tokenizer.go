// Package morph produces morpheme tokens from Japanese text with kagome and
// knows how to split them into finer A and B units.
package morph

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"GoSplit/internal/analysis"
)

// Tokenizer turns text into a stream of morpheme tokens.
// It is safe for concurrent use; each Stream has its own state.
type Tokenizer struct {
	kg     *tokenizer.Tokenizer
	opts   Options
	cache  *lru.Cache[splitKey, []piece]
	logger *slog.Logger
}

// New loads the IPA dictionary and creates a Tokenizer.
func New(opts Options) (*Tokenizer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kg, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("morph: create kagome tokenizer: %w", err)
	}

	t := &Tokenizer{kg: kg, opts: opts, logger: logger}
	if opts.CacheSize > 0 {
		t.cache, err = lru.New[splitKey, []piece](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("morph: create split cache: %w", err)
		}
	}

	logger.Info("morph tokenizer ready",
		"normalize", opts.Normalize,
		"discard_punctuation", opts.DiscardPunctuation,
		"cache_size", opts.CacheSize,
		"user_dictionary", opts.Source != nil,
	)
	return t, nil
}

// Stream implements analysis.Tokenizer.
func (t *Tokenizer) Stream(text string) analysis.TokenStream {
	return &stream{t: t, chunks: chunks(text, t.opts.MaxChunkBytes)}
}

// Purge drops every cached split, e.g. after the user dictionary changed.
func (t *Tokenizer) Purge() {
	if t.cache != nil {
		t.cache.Purge()
	}
}

// NewAnalyzer builds an analyzer that runs tok, then a SplitFilter, then
// filters in order.
func NewAnalyzer(tok analysis.Tokenizer, mode analysis.Mode, splitMode analysis.SplitMode, filters ...analysis.Filter) *analysis.Pipeline {
	stages := make([]analysis.Filter, 0, len(filters)+1)
	stages = append(stages, analysis.SplitStage(mode, splitMode))
	stages = append(stages, filters...)
	return analysis.NewPipeline(tok, stages...)
}

type stream struct {
	t      *Tokenizer
	chunks []chunk

	// current chunk
	text    string
	offsets analysis.OffsetMap
	tokens  []tokenizer.Token
	i       int
	byteAt  int
	runeAt  int

	cur analysis.Token
}

func (s *stream) Token() *analysis.Token { return &s.cur }

func (s *stream) Next() bool {
	for {
		for s.i < len(s.tokens) {
			kt := s.tokens[s.i]
			s.i++
			if kt.Class == tokenizer.DUMMY || kt.Surface == "" {
				continue
			}
			begin, end := s.locate(kt.Surface)
			if s.t.opts.DiscardPunctuation && isPunctuation(kt) {
				continue
			}
			s.emit(kt, begin, end)
			return true
		}
		if len(s.chunks) == 0 {
			return false
		}
		s.load(s.chunks[0])
		s.chunks = s.chunks[1:]
	}
}

func (s *stream) load(c chunk) {
	if s.t.opts.Normalize {
		s.text, s.offsets = normalize(c.text, c.base)
	} else {
		s.text, s.offsets = identity(c.text, c.base)
	}
	s.tokens = s.t.kg.Analyze(s.text, tokenizer.Normal)
	s.i = 0
	s.byteAt = 0
	s.runeAt = 0
}

// locate finds surface at or after the read position of the chunk and
// returns its rune span.
func (s *stream) locate(surface string) (begin, end int) {
	rest := s.text[s.byteAt:]
	skip := strings.Index(rest, surface)
	if skip < 0 {
		// kagome only returns substrings of its input
		panic(fmt.Sprintf("morph: surface %q not found in chunk", surface))
	}
	begin = s.runeAt + utf8.RuneCountInString(rest[:skip])
	end = begin + utf8.RuneCountInString(surface)
	s.byteAt += skip + len(surface)
	s.runeAt = end
	return begin, end
}

// emit converts a kagome token spanning runes [begin, end) of the chunk.
func (s *stream) emit(kt tokenizer.Token, begin, end int) {
	m := s.t.newMorpheme(kt, begin, end)
	offsets := s.offsets.Sub(begin, end)
	s.cur = analysis.Token{
		Term:              kt.Surface,
		Start:             offsets[0],
		End:               offsets[len(offsets)-1],
		PositionIncrement: 1,
		PositionLength:    1,
		Kind:              analysis.KindMorpheme,
		Morpheme:          m,
		Offsets:           offsets,
	}
}

// punctuationTags are the IPA 記号 subcategories that are punctuation.
// Other 記号 entries include letters such as Ω and uncategorized characters.
var punctuationTags = map[string]bool{
	"句点":  true,
	"読点":  true,
	"括弧開": true,
	"括弧閉": true,
	"空白":  true,
}

func isPunctuation(kt tokenizer.Token) bool {
	if pos := kt.POS(); len(pos) > 1 && pos[0] == "記号" && punctuationTags[pos[1]] {
		return true
	}
	for _, r := range kt.Surface {
		if !unicode.IsPunct(r) && !unicode.IsSpace(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
