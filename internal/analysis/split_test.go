package analysis_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoSplit/internal/analysis"
	"GoSplit/internal/testutil"
)

func split(tokens []analysis.Token, mode analysis.Mode, splitMode analysis.SplitMode) []analysis.Token {
	f := analysis.NewSplitFilter(analysis.NewSliceStream(tokens), mode, splitMode)
	return analysis.Collect(f)
}

func TestSplitFilter_PlainTokenPassesThrough(t *testing.T) {
	in := []analysis.Token{{Term: "hello", Start: 4, End: 9, PositionIncrement: 3, PositionLength: 1}}

	got := split(in, analysis.ModeExtended, analysis.SplitA)

	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Term)
	assert.Equal(t, 4, got[0].Start)
	assert.Equal(t, 9, got[0].End)
	assert.Equal(t, 3, got[0].PositionIncrement)
	assert.Equal(t, analysis.KindPlain, got[0].Kind)
}

func TestSplitFilter_LongestUnitKeepsMorpheme(t *testing.T) {
	// "A" normalized from a three byte character.
	m := testutil.Word("A").WithSplit(analysis.SplitA, "A")
	in := []analysis.Token{{
		Term: "A", Start: 0, End: 3,
		PositionIncrement: 2, PositionLength: 1,
		Kind: analysis.KindMorpheme, Morpheme: m, Offsets: analysis.OffsetMap{0, 3},
	}}

	f := analysis.NewSplitFilter(analysis.NewSliceStream(in), analysis.ModeSearch, analysis.SplitC)
	require.True(t, f.Next())
	tok := f.Token()
	assert.Equal(t, "A", tok.Term)
	assert.Equal(t, 0, tok.Start)
	assert.Equal(t, 3, tok.End)
	assert.Equal(t, 1, tok.PositionLength)
	assert.Equal(t, 2, tok.PositionIncrement)
	assert.Same(t, m, tok.Morpheme)
	assert.False(t, f.Next())
}

func TestSplitFilter_SplitIntoUnits(t *testing.T) {
	m := testutil.Word("abc").WithSplit(analysis.SplitA, "ab", "c")
	in := []analysis.Token{testutil.MorphToken(m, 10)}

	got := split(in, analysis.ModeSearch, analysis.SplitA)

	require.Len(t, got, 3)

	head := got[0]
	assert.Equal(t, "abc", head.Term)
	assert.Equal(t, [2]int{10, 13}, [2]int{head.Start, head.End})
	assert.Equal(t, 1, head.PositionIncrement)
	assert.Equal(t, 2, head.PositionLength)

	first := got[1]
	assert.Equal(t, "ab", first.Term)
	assert.Equal(t, [2]int{10, 12}, [2]int{first.Start, first.End})
	assert.Equal(t, 0, first.PositionIncrement)
	assert.Equal(t, 1, first.PositionLength)
	assert.Equal(t, analysis.KindMorpheme, first.Kind)
	assert.Equal(t, "ab", first.Morpheme.Surface())
	assert.Equal(t, analysis.OffsetMap{10, 11, 12}, first.Offsets)

	second := got[2]
	assert.Equal(t, "c", second.Term)
	assert.Equal(t, [2]int{12, 13}, [2]int{second.Start, second.End})
	assert.Equal(t, 1, second.PositionIncrement)
	assert.Equal(t, 1, second.PositionLength)
	assert.Equal(t, analysis.OffsetMap{12, 13}, second.Offsets)
}

func TestSplitFilter_SingleUnitIsNotSplit(t *testing.T) {
	m := testutil.Word("東京").WithSplit(analysis.SplitB, "東京")
	got := split(testutil.Sentence(m), analysis.ModeExtended, analysis.SplitB)

	require.Len(t, got, 1)
	assert.Equal(t, "東京", got[0].Term)
	assert.Equal(t, 1, got[0].PositionLength)
}

func TestSplitFilter_ModeSensitivity(t *testing.T) {
	oov := testutil.Unknown("xyz")

	search := split(testutil.Sentence(oov), analysis.ModeSearch, analysis.SplitA)
	require.Len(t, search, 1)
	assert.Equal(t, "xyz", search[0].Term)
	assert.Equal(t, 1, search[0].PositionLength)

	extended := split(testutil.Sentence(oov), analysis.ModeExtended, analysis.SplitA)
	require.Len(t, extended, 4)
	assert.Equal(t, []string{"xyz", "x", "y", "z"}, testutil.Terms(extended))
	assert.Equal(t, 3, extended[0].PositionLength)
	for i, tok := range extended[1:] {
		assert.Equal(t, 1, tok.PositionLength)
		assert.Equal(t, analysis.KindChar, tok.Kind)
		assert.Nil(t, tok.Morpheme)
		assert.Equal(t, i, tok.Start)
		assert.Equal(t, i+1, tok.End)
		if i == 0 {
			assert.Equal(t, 0, tok.PositionIncrement)
		} else {
			assert.Equal(t, 1, tok.PositionIncrement)
		}
	}
}

func TestSplitFilter_SingleCharOOVIsNotSplit(t *testing.T) {
	got := split(testutil.Sentence(testutil.Unknown("ゑ")), analysis.ModeExtended, analysis.SplitA)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].PositionLength)
}

func TestSplitFilter_OOVIgnoresSplitMode(t *testing.T) {
	oov := testutil.Unknown("ab").WithSplit(analysis.SplitA, "a", "b")
	got := split(testutil.Sentence(oov), analysis.ModeSearch, analysis.SplitA)
	require.Len(t, got, 1)
}

func TestSplitFilter_SupplementaryCharactersStayWhole(t *testing.T) {
	oov := testutil.Unknown("😀a😀")
	got := split(testutil.Sentence(oov), analysis.ModeExtended, analysis.SplitC)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"😀a😀", "😀", "a", "😀"}, testutil.Terms(got))
	assert.Equal(t, [2]int{0, 4}, [2]int{got[1].Start, got[1].End})
	assert.Equal(t, [2]int{4, 5}, [2]int{got[2].Start, got[2].End})
	assert.Equal(t, [2]int{5, 9}, [2]int{got[3].Start, got[3].End})
	for _, tok := range got[1:] {
		assert.True(t, utf8.ValidString(tok.Term))
	}
}

func TestSplitFilter_NormalizedOffsets(t *testing.T) {
	// "株式会社" normalized from the single character "㍿".
	m := testutil.Unknown("株式会社")
	in := []analysis.Token{{
		Term: "株式会社", Start: 0, End: 3,
		PositionIncrement: 1, PositionLength: 1,
		Kind: analysis.KindMorpheme, Morpheme: m, Offsets: analysis.OffsetMap{0, 0, 0, 0, 3},
	}}

	got := split(in, analysis.ModeExtended, analysis.SplitC)

	require.Len(t, got, 5)
	assert.Equal(t, [2]int{0, 0}, [2]int{got[1].Start, got[1].End})
	assert.Equal(t, [2]int{0, 3}, [2]int{got[4].Start, got[4].End})
}

func TestSplitFilter_MisSizedOffsetMapPanics(t *testing.T) {
	m := testutil.Unknown("abc")
	tok := testutil.MorphToken(m, 0)
	tok.Offsets = tok.Offsets[:2]

	f := analysis.NewSplitFilter(analysis.NewSliceStream([]analysis.Token{tok}), analysis.ModeExtended, analysis.SplitC)
	require.True(t, f.Next())
	require.True(t, f.Next())
	assert.Panics(t, func() {
		for f.Next() {
		}
	})
}

func TestSplitFilter_GraphPositions(t *testing.T) {
	in := testutil.Sentence(
		testutil.Word("関西国際空港").WithSplit(analysis.SplitA, "関西", "国際", "空港"),
		testutil.Word("に"),
		testutil.Unknown("ボボ"),
		testutil.Word("行く"),
	)

	got := split(in, analysis.ModeExtended, analysis.SplitA)

	terms := []string{"関西国際空港", "関西", "国際", "空港", "に", "ボボ", "ボ", "ボ", "行く"}
	positions := []int{0, 0, 1, 2, 3, 4, 4, 5, 6}
	lengths := []int{3, 1, 1, 1, 1, 2, 1, 1, 1}
	require.Equal(t, terms, testutil.Terms(got))
	for i, tok := range got {
		assert.Equal(t, positions[i], tok.Position, "position of %q", tok.Term)
		assert.Equal(t, lengths[i], tok.PositionLength, "length of %q", tok.Term)
	}
}

func TestSplitFilter_SpanCoverage(t *testing.T) {
	in := testutil.Sentence(
		testutil.Word("東京都").WithSplit(analysis.SplitA, "東京", "都").WithSplit(analysis.SplitB, "東京都"),
		testutil.Unknown("アマゾン"),
		testutil.Word("選挙管理委員会").
			WithSplit(analysis.SplitA, "選挙", "管理", "委員", "会").
			WithSplit(analysis.SplitB, "選挙", "管理", "委員会"),
	)

	for _, mode := range []analysis.Mode{analysis.ModeSearch, analysis.ModeExtended} {
		for _, sm := range []analysis.SplitMode{analysis.SplitA, analysis.SplitB, analysis.SplitC} {
			t.Run(mode.String()+"/"+sm.String(), func(t *testing.T) {
				assertCovers(t, split(in, mode, sm))
			})
		}
	}
}

// assertCovers checks that the units following every head token tile its
// span exactly.
func assertCovers(t *testing.T, tokens []analysis.Token) {
	t.Helper()
	for i := 0; i < len(tokens); {
		head := tokens[i]
		n := head.PositionLength
		i++
		if n == 1 {
			continue
		}
		require.LessOrEqual(t, i+n, len(tokens), "head %q announces %d units", head.Term, n)
		at := head.Start
		for j, unit := range tokens[i : i+n] {
			assert.Equal(t, at, unit.Start, "unit %d of %q", j, head.Term)
			assert.Equal(t, 1, unit.PositionLength)
			at = unit.End
		}
		assert.Equal(t, head.End, at, "units of %q end early", head.Term)
		i += n
	}
}

func TestSplitStage_InPipeline(t *testing.T) {
	p := analysis.NewPipeline(
		testutil.Tokenizer(testutil.Word("ab").WithSplit(analysis.SplitA, "a", "b")),
		analysis.SplitStage(analysis.ModeSearch, analysis.SplitA),
	)
	assert.Equal(t, []string{"ab", "a", "b"}, testutil.Terms(p.Analyze("f", "")))
}

func FuzzSplitFilter_Extended(f *testing.F) {
	f.Add("アマゾン")
	f.Add("a")
	f.Add("😀x😀")
	f.Add("日本語テキスト")

	f.Fuzz(func(t *testing.T, input string) {
		if input == "" || !utf8.ValidString(input) {
			t.Skip()
		}
		got := split(testutil.Sentence(testutil.Unknown(input)), analysis.ModeExtended, analysis.SplitC)

		n := utf8.RuneCountInString(input)
		if n == 1 {
			if len(got) != 1 {
				t.Fatalf("single rune %q produced %d tokens", input, len(got))
			}
			return
		}
		if len(got) != n+1 {
			t.Fatalf("%q produced %d tokens, want %d", input, len(got), n+1)
		}
		if got[0].PositionLength != n {
			t.Errorf("head position length = %d, want %d", got[0].PositionLength, n)
		}
		assertCovers(t, got)
	})
}
