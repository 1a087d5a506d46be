package analysis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMode      = errors.New("unknown split filter mode")
	ErrUnknownSplitMode = errors.New("unknown split mode")
)

// SplitMode selects the granularity a morpheme is split into.
type SplitMode int

const (
	// SplitA is the shortest units.
	SplitA SplitMode = iota
	// SplitB is the middle granularity.
	SplitB
	// SplitC keeps the longest unit; morphemes are not split.
	SplitC
)

func (m SplitMode) String() string {
	switch m {
	case SplitA:
		return "A"
	case SplitB:
		return "B"
	case SplitC:
		return "C"
	default:
		return fmt.Sprintf("SplitMode(%d)", int(m))
	}
}

// ParseSplitMode parses "A", "B" or "C", ignoring case.
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return SplitA, nil
	case "B":
		return SplitB, nil
	case "C":
		return SplitC, nil
	}
	return SplitC, fmt.Errorf("%w: %q", ErrUnknownSplitMode, s)
}

// Mode controls how the split filter treats out-of-vocabulary morphemes.
type Mode int

const (
	// ModeSearch never splits OOV morphemes.
	ModeSearch Mode = iota
	// ModeExtended additionally splits OOV morphemes into characters.
	ModeExtended
)

// DefaultMode is the split filter mode used when none is configured.
const DefaultMode = ModeSearch

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeExtended:
		return "extended"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "search" or "extended", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "search":
		return ModeSearch, nil
	case "extended":
		return ModeExtended, nil
	}
	return DefaultMode, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Morpheme is a unit produced by a morphological analyzer.
//
// Begin and End are rune indices in the morpheme's own coordinate space; only
// their difference is meaningful to the split filter. Split must return
// sub-morphemes whose lengths add up to End-Begin.
type Morpheme interface {
	Surface() string
	Begin() int
	End() int
	IsOOV() bool
	Split(mode SplitMode) []Morpheme

	// PartOfSpeech returns the hierarchical part of speech, most general first.
	PartOfSpeech() []string
	DictionaryForm() string
	ReadingForm() string
}
