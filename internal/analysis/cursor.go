package analysis

// charCursor walks an out-of-vocabulary surface one codepoint at a time.
// Go strings decode to whole runes, so a supplementary character is a
// single unit and is never cut in two. The buffer only grows and is reused
// for every morpheme the filter loads.
type charCursor struct {
	buf []rune
	pos int
}

// load decodes s into the cursor and rewinds it.
func (c *charCursor) load(s string) {
	c.buf = c.buf[:0]
	for _, r := range s {
		c.buf = append(c.buf, r)
	}
	c.pos = 0
}

func (c *charCursor) hasNext() bool {
	return c.pos < len(c.buf)
}

// next returns the following codepoint.
func (c *charCursor) next() string {
	if !c.hasNext() {
		panic("analysis: next called on exhausted char cursor")
	}
	r := c.buf[c.pos]
	c.pos++
	return string(r)
}

// count returns how many units next will yield for the loaded buffer.
func (c *charCursor) count() int { return len(c.buf) }

// index and offset both report runes consumed so far.
func (c *charCursor) index() int  { return c.pos }
func (c *charCursor) offset() int { return c.pos }

// unitCursor walks the sub-morphemes of a split.
type unitCursor struct {
	units    []Morpheme
	size     int
	pos      int
	consumed int
}

func (u *unitCursor) load(units []Morpheme) {
	u.units = units
	u.size = len(units)
	u.pos = 0
	u.consumed = 0
}

func (u *unitCursor) hasNext() bool {
	return u.pos < u.size
}

// next returns the following sub-morpheme and advances offset by its length.
func (u *unitCursor) next() Morpheme {
	if !u.hasNext() {
		panic("analysis: next called on exhausted unit cursor")
	}
	m := u.units[u.pos]
	u.pos++
	u.consumed += m.End() - m.Begin()
	return m
}

func (u *unitCursor) index() int  { return u.pos }
func (u *unitCursor) offset() int { return u.consumed }

