package analysis

import (
	"testing"
	"unicode/utf8"
)

func FuzzStandardThroughSplitFilter(f *testing.F) {
	f.Add("Hello World")
	f.Add("")
	f.Add("  spaces  everywhere  ")
	f.Add("café résumé naïve")
	f.Add("東京 タワー 2024")

	f.Fuzz(func(t *testing.T, input string) {
		want := NewStandardAnalyzer().Analyze("field", input)
		// Tokens without a morpheme must pass through untouched.
		p := NewPipeline(NewStandardAnalyzer(), SplitStage(ModeExtended, SplitA))
		got := p.Analyze("field", input)

		if len(got) != len(want) {
			t.Fatalf("split filter changed token count: %d -> %d", len(want), len(got))
		}
		for i := range got {
			if got[i].Term != want[i].Term || got[i].Start != want[i].Start || got[i].End != want[i].End {
				t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
			}
			if got[i].Position != i || got[i].PositionLength != 1 {
				t.Errorf("token %d at position %d/%d", i, got[i].Position, got[i].PositionLength)
			}
		}
	})
}

func FuzzWhitespaceOffsets(f *testing.F) {
	f.Add("Hello World")
	f.Add("")
	f.Add("\t\n\r mixed whitespace")
	f.Add("全角　スペース")

	f.Fuzz(func(t *testing.T, input string) {
		for i, tok := range NewWhitespaceAnalyzer().Analyze("field", input) {
			if tok.Start < 0 || tok.End > len(input) || tok.Start > tok.End {
				t.Fatalf("invalid byte offsets: start=%d end=%d input_len=%d", tok.Start, tok.End, len(input))
			}
			if input[tok.Start:tok.End] != tok.Term {
				t.Errorf("token %d: text[%d:%d] = %q, term %q", i, tok.Start, tok.End, input[tok.Start:tok.End], tok.Term)
			}
		}
	})
}

func FuzzOffsetMapSub(f *testing.F) {
	f.Add("関西国際空港", 1, 3)
	f.Add("abc", 0, 3)
	f.Add("😀a", 1, 1)

	f.Fuzz(func(t *testing.T, input string, start, end int) {
		if !utf8.ValidString(input) {
			t.Skip()
		}
		var widths []int
		for _, r := range input {
			widths = append(widths, utf8.RuneLen(r))
		}
		m := Identity(7, widths...)
		if start < 0 || end < start || end > len(widths) {
			t.Skip()
		}

		sub := m.Sub(start, end)
		if len(sub) != end-start+1 {
			t.Fatalf("len(Sub(%d, %d)) = %d, want %d", start, end, len(sub), end-start+1)
		}
		for i := range sub {
			if sub.Correct(i) != m.Correct(start+i) {
				t.Errorf("Sub(%d, %d)[%d] = %d, want %d", start, end, i, sub[i], m[start+i])
			}
		}
	})
}
