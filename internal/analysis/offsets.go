package analysis

import "fmt"

// OffsetMap maps rune boundary i of a morpheme's surface to the byte offset in
// the original text it came from. It has one entry per boundary, so its length
// is the surface rune count plus one, and entries never decrease.
type OffsetMap []int

// Correct translates boundary b into an original offset.
// An out of range boundary means the map was sized for another surface and
// panics rather than producing corrupt offsets.
func (m OffsetMap) Correct(b int) int {
	if b < 0 || b >= len(m) {
		panic(fmt.Sprintf("analysis: offset boundary %d outside map of %d entries", b, len(m)))
	}
	return m[b]
}

// Sub returns the map for the runes [start, end) re-based at boundary 0.
// The result shares storage with m.
func (m OffsetMap) Sub(start, end int) OffsetMap {
	if start < 0 || end < start || end >= len(m) {
		panic(fmt.Sprintf("analysis: offset span [%d, %d) outside map of %d entries", start, end, len(m)))
	}
	return m[start : end+1]
}

// Identity returns the map of an unchanged text whose runes start at base
// and have the given byte widths.
func Identity(base int, widths ...int) OffsetMap {
	m := make(OffsetMap, 0, len(widths)+1)
	m = append(m, base)
	for _, w := range widths {
		base += w
		m = append(m, base)
	}
	return m
}
