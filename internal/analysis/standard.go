package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StandardAnalyzer tokenizes on Unicode word boundaries and lowercases tokens.
type StandardAnalyzer struct{}

// NewStandardAnalyzer creates a new StandardAnalyzer.
func NewStandardAnalyzer() *StandardAnalyzer {
	return &StandardAnalyzer{}
}

// Analyze tokenizes the input using Unicode word boundary detection and lowercasing.
func (a *StandardAnalyzer) Analyze(_ string, text string) []Token {
	return Collect(a.Stream(text))
}

// Stream returns the lowercased words of text as a stream.
func (a *StandardAnalyzer) Stream(text string) TokenStream {
	return &wordStream{text: text}
}

type wordStream struct {
	text string
	i    int
	cur  Token
}

func (s *wordStream) Token() *Token { return &s.cur }

func (s *wordStream) Next() bool {
	text := s.text
	for s.i < len(text) {
		// Skip non-word characters.
		r, size := utf8.DecodeRuneInString(text[s.i:])
		if !isWordRune(r) {
			s.i += size
			continue
		}

		// Collect word characters.
		start := s.i
		for s.i < len(text) {
			r, size = utf8.DecodeRuneInString(text[s.i:])
			if !isWordRune(r) {
				break
			}
			s.i += size
		}

		s.cur = Token{
			Term:              strings.ToLower(text[start:s.i]),
			Start:             start,
			End:               s.i,
			PositionIncrement: 1,
			PositionLength:    1,
		}
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
