package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type span struct {
	surface    string
	begin, end int
}

func (s span) Surface() string            { return s.surface }
func (s span) Begin() int                 { return s.begin }
func (s span) End() int                   { return s.end }
func (s span) IsOOV() bool                { return false }
func (s span) Split(SplitMode) []Morpheme { return []Morpheme{s} }
func (s span) PartOfSpeech() []string     { return nil }
func (s span) DictionaryForm() string     { return s.surface }
func (s span) ReadingForm() string        { return "" }

func drainChars(c *charCursor) []string {
	var out []string
	for c.hasNext() {
		out = append(out, c.next())
	}
	return out
}

func TestCharCursor_Basic(t *testing.T) {
	var c charCursor
	c.load("アマゾン")

	require.Equal(t, 4, c.count())
	assert.Equal(t, 0, c.index())

	assert.Equal(t, "ア", c.next())
	assert.Equal(t, 1, c.index())
	assert.Equal(t, 1, c.offset())

	assert.Equal(t, []string{"マ", "ゾ", "ン"}, drainChars(&c))
	assert.False(t, c.hasNext())
	assert.Equal(t, 4, c.offset())
}

func TestCharCursor_SupplementaryCharacterStaysWhole(t *testing.T) {
	var c charCursor
	c.load("a😀𠮷b")

	assert.Equal(t, 4, c.count())
	assert.Equal(t, "a", c.next())
	assert.Equal(t, "😀", c.next())
	assert.Equal(t, 2, c.offset(), "a supplementary character is one rune boundary")
	assert.Equal(t, "𠮷", c.next())
	assert.Equal(t, "b", c.next())
	assert.False(t, c.hasNext())
}

func TestCharCursor_InvalidUTF8(t *testing.T) {
	var c charCursor
	c.load("x\xffy")

	assert.Equal(t, 3, c.count())
	assert.Equal(t, []string{"x", "\uFFFD", "y"}, drainChars(&c))
}

func TestCharCursor_BufferIsReused(t *testing.T) {
	var c charCursor
	c.load("abcdefgh")
	drainChars(&c)
	before := &c.buf[:1][0]

	c.load("xyz")
	assert.Same(t, before, &c.buf[:1][0], "shorter input must reuse the buffer")
	assert.Equal(t, []string{"x", "y", "z"}, drainChars(&c))

	c.load("a much longer input than before")
	assert.GreaterOrEqual(t, cap(c.buf), len("a much longer input than before"))
	assert.Equal(t, "a", c.next())
}

func TestCharCursor_ExhaustedPanics(t *testing.T) {
	var c charCursor
	c.load("a")
	c.next()
	assert.Panics(t, func() { c.next() })
}

func TestUnitCursor_Offsets(t *testing.T) {
	var u unitCursor
	u.load([]Morpheme{
		span{"関西", 10, 12},
		span{"国際", 12, 14},
		span{"空港", 14, 16},
	})

	assert.True(t, u.hasNext())
	assert.Equal(t, 0, u.index())
	assert.Equal(t, 0, u.offset())

	m := u.next()
	assert.Equal(t, "関西", m.Surface())
	assert.Equal(t, 1, u.index())
	assert.Equal(t, 2, u.offset())

	u.next()
	u.next()
	assert.Equal(t, 6, u.offset())
	assert.False(t, u.hasNext())
	assert.Panics(t, func() { u.next() })
}

func TestUnitCursor_LoadRewinds(t *testing.T) {
	var u unitCursor
	u.load([]Morpheme{span{"a", 0, 1}, span{"b", 1, 2}})
	u.next()

	u.load([]Morpheme{span{"cd", 0, 2}})
	assert.Equal(t, 0, u.index())
	assert.Equal(t, 0, u.offset())
	assert.Equal(t, "cd", u.next().Surface())
	assert.Equal(t, 2, u.offset())
}
