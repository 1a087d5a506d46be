package analysis

import "strings"

// WhitespaceAnalyzer splits text on whitespace without any normalization.
type WhitespaceAnalyzer struct{}

// NewWhitespaceAnalyzer creates a new WhitespaceAnalyzer.
func NewWhitespaceAnalyzer() *WhitespaceAnalyzer {
	return &WhitespaceAnalyzer{}
}

// Analyze splits the input on whitespace, preserving case.
func (a *WhitespaceAnalyzer) Analyze(_ string, text string) []Token {
	return Collect(a.Stream(text))
}

// Stream splits text on whitespace as a stream.
func (a *WhitespaceAnalyzer) Stream(text string) TokenStream {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))

	searchFrom := 0
	for _, f := range fields {
		idx := strings.Index(text[searchFrom:], f)
		start := searchFrom + idx
		end := start + len(f)

		tokens = append(tokens, Token{
			Term:              f,
			Start:             start,
			End:               end,
			PositionIncrement: 1,
			PositionLength:    1,
		})
		searchFrom = end
	}

	return NewSliceStream(tokens)
}
