package morph

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"GoSplit/internal/analysis"
)

// normalize returns the NFKC form of s together with the map from rune
// boundaries of the result to byte offsets of s, shifted by base.
//
// Runes of a segment that normalization left alone map one to one. Inside a
// rewritten segment every boundary maps to the segment start, so a unit cut
// from it never claims part of the original characters.
func normalize(s string, base int) (string, analysis.OffsetMap) {
	var out strings.Builder
	out.Grow(len(s))
	offsets := make(analysis.OffsetMap, 0, len(s)+1)

	var it norm.Iter
	it.InitString(norm.NFKC, s)
	for !it.Done() {
		start := it.Pos()
		seg := it.Next()
		unchanged := string(seg) == s[start:it.Pos()]
		for i := 0; i < len(seg); {
			_, size := utf8.DecodeRune(seg[i:])
			if unchanged {
				offsets = append(offsets, base+start+i)
			} else {
				offsets = append(offsets, base+start)
			}
			i += size
		}
		out.Write(seg)
	}
	offsets = append(offsets, base+len(s))
	return out.String(), offsets
}

// identity returns s with the map of an unchanged text starting at base.
func identity(s string, base int) (string, analysis.OffsetMap) {
	offsets := make(analysis.OffsetMap, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, base+i)
	}
	offsets = append(offsets, base+len(s))
	return s, offsets
}
