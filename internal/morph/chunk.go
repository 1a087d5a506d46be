package morph

import (
	"strings"
	"unicode/utf8"
)

// sentenceEnds are the runes after which a chunk may be cut.
const sentenceEnds = "\n。！？"

type chunk struct {
	text string
	base int
}

// chunks cuts text into pieces of at most max bytes. A piece ends after the
// last line or sentence end that fits and otherwise at a rune boundary.
// A single rune wider than max still forms its own piece.
func chunks(text string, max int) []chunk {
	if max <= 0 || len(text) <= max {
		return []chunk{{text: text}}
	}
	var out []chunk
	base := 0
	for len(text) > max {
		cut := cutPoint(text, max)
		out = append(out, chunk{text: text[:cut], base: base})
		text = text[cut:]
		base += cut
	}
	if len(text) > 0 {
		out = append(out, chunk{text: text, base: base})
	}
	return out
}

// cutPoint picks where to end the chunk starting text. len(text) > max.
func cutPoint(text string, max int) int {
	if i := strings.LastIndexAny(text[:max], sentenceEnds); i >= 0 {
		_, size := utf8.DecodeRuneInString(text[i:])
		if i+size <= max {
			return i + size
		}
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(text)
	}
	return cut
}
