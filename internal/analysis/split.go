package analysis

import "unicode/utf8"

// SplitFilter refines morpheme tokens into finer, overlapping tokens.
//
// A morpheme that splits into N units is emitted first as-is with
// PositionLength N, followed by its N units: the first with
// PositionIncrement 0 and the rest with 1, each with PositionLength 1.
// Under ModeExtended an out-of-vocabulary morpheme is split the same way
// into single characters. Tokens without a morpheme pass through untouched.
//
// A SplitFilter is not safe for concurrent use.
type SplitFilter struct {
	input     TokenStream
	mode      Mode
	splitMode SplitMode

	tok     Token
	offsets OffsetMap
	chars   charCursor
	units   unitCursor
}

// NewSplitFilter creates a SplitFilter reading from input.
func NewSplitFilter(input TokenStream, mode Mode, splitMode SplitMode) *SplitFilter {
	return &SplitFilter{
		input:     input,
		mode:      mode,
		splitMode: splitMode,
	}
}

// SplitStage returns a Filter that wraps streams in a new SplitFilter.
func SplitStage(mode Mode, splitMode SplitMode) Filter {
	return func(ts TokenStream) TokenStream {
		return NewSplitFilter(ts, mode, splitMode)
	}
}

// Token returns the current token.
func (f *SplitFilter) Token() *Token { return &f.tok }

// Next advances to the next output token.
func (f *SplitFilter) Next() bool {
	// drain the current split first
	if f.chars.hasNext() {
		f.setCharUnit()
		return true
	}
	if f.units.hasNext() {
		f.setSubUnit()
		return true
	}

	if !f.input.Next() {
		return false
	}
	f.tok = *f.input.Token()
	f.offsets = f.tok.Offsets

	m := f.tok.Morpheme
	if m == nil {
		return true
	}

	// OOV morphemes have no splits; extended mode cuts them into characters.
	if m.IsOOV() {
		if f.mode == ModeExtended && utf8.RuneCountInString(f.tok.Term) > 1 {
			f.chars.load(f.tok.Term)
			f.tok.PositionLength = f.chars.count()
		}
		return true
	}

	if f.splitMode == SplitC {
		return true
	}

	if units := m.Split(f.splitMode); len(units) > 1 {
		f.units.load(units)
		f.tok.PositionLength = len(units)
	}
	return true
}

func (f *SplitFilter) setSubUnit() {
	inc := 1
	if f.units.index() == 0 {
		inc = 0
	}

	start := f.units.offset()
	m := f.units.next()
	end := f.units.offset()

	f.tok = Token{
		Term:              m.Surface(),
		Start:             f.offsets.Correct(start),
		End:               f.offsets.Correct(end),
		PositionIncrement: inc,
		PositionLength:    1,
		Kind:              KindMorpheme,
		Morpheme:          m,
		Offsets:           f.offsets.Sub(start, end),
	}
}

func (f *SplitFilter) setCharUnit() {
	inc := 1
	if f.chars.index() == 0 {
		inc = 0
	}

	start := f.chars.offset()
	term := f.chars.next()
	end := f.chars.offset()

	f.tok = Token{
		Term:              term,
		Start:             f.offsets.Correct(start),
		End:               f.offsets.Correct(end),
		PositionIncrement: inc,
		PositionLength:    1,
		Kind:              KindChar,
	}
}
