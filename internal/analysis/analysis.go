package analysis

// TokenKind tells which variant of Token is populated.
type TokenKind int

const (
	// KindPlain is a token with no attached morpheme. Filters pass it through verbatim.
	KindPlain TokenKind = iota
	// KindMorpheme is a token backed by an analyzer morpheme.
	KindMorpheme
	// KindChar is a single character unit cut from an out-of-vocabulary morpheme.
	KindChar
)

func (k TokenKind) String() string {
	switch k {
	case KindMorpheme:
		return "morpheme"
	case KindChar:
		return "char"
	default:
		return "plain"
	}
}

// Token represents a single token produced by an analyzer.
//
// Start and End are byte offsets into the original text. PositionIncrement and
// PositionLength encode the token graph: a token with increment 0 starts at the
// same node as the previous one, and PositionLength counts how many positions
// it spans. Position is the absolute start position and is only set by Collect.
type Token struct {
	Term              string
	Start             int
	End               int
	Position          int
	PositionIncrement int
	PositionLength    int
	Kind              TokenKind

	// Morpheme is set iff Kind == KindMorpheme.
	Morpheme Morpheme
	// Offsets maps rune boundaries of Morpheme's surface to original offsets.
	Offsets OffsetMap

	// Keyword protects Term from being rewritten by field filters.
	Keyword bool
}

// Analyzer processes text into a stream of tokens.
// Implementations MUST be safe for concurrent use.
type Analyzer interface {
	// Analyze tokenizes the input text and returns tokens with positions.
	Analyze(field string, text string) []Token
}

// TokenStream is a pull-based token source. Next advances to the following
// token and reports whether one exists; Token returns it. The returned
// pointer is only valid until the next call to Next.
type TokenStream interface {
	Next() bool
	Token() *Token
}

// Tokenizer turns text into a TokenStream.
type Tokenizer interface {
	Stream(text string) TokenStream
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) TokenStream

// Stream calls f(text).
func (f TokenizerFunc) Stream(text string) TokenStream { return f(text) }

// Filter wraps a TokenStream with another stage.
type Filter func(TokenStream) TokenStream

// Collect drains ts and returns copies of its tokens with absolute positions.
func Collect(ts TokenStream) []Token {
	var tokens []Token
	pos := -1
	for ts.Next() {
		tok := *ts.Token()
		pos += tok.PositionIncrement
		if pos < 0 {
			pos = 0
		}
		tok.Position = pos
		tokens = append(tokens, tok)
	}
	return tokens
}

// Pipeline is an Analyzer made of a tokenizer followed by filters.
type Pipeline struct {
	tokenizer Tokenizer
	filters   []Filter
}

// NewPipeline creates a Pipeline. Filters are applied in order.
func NewPipeline(tokenizer Tokenizer, filters ...Filter) *Pipeline {
	return &Pipeline{tokenizer: tokenizer, filters: filters}
}

// Analyze runs the pipeline over text.
func (p *Pipeline) Analyze(_ string, text string) []Token {
	ts := p.Stream(text)
	return Collect(ts)
}

// Stream returns the filtered stream without collecting it.
func (p *Pipeline) Stream(text string) TokenStream {
	ts := p.tokenizer.Stream(text)
	for _, f := range p.filters {
		ts = f(ts)
	}
	return ts
}

// SliceStream replays a fixed slice of tokens.
type SliceStream struct {
	tokens []Token
	cur    Token
	i      int
}

// NewSliceStream creates a stream over tokens. The slice is not copied.
func NewSliceStream(tokens []Token) *SliceStream {
	return &SliceStream{tokens: tokens}
}

func (s *SliceStream) Next() bool {
	if s.i >= len(s.tokens) {
		return false
	}
	s.cur = s.tokens[s.i]
	s.i++
	return true
}

func (s *SliceStream) Token() *Token { return &s.cur }
