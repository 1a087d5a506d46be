package morph

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func joinChunks(cs []chunk) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.text)
	}
	return b.String()
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  []string
	}{
		{"fits", "今日は晴れ。", 100, []string{"今日は晴れ。"}},
		{"no limit", "今日は晴れ。明日は雨。", 0, []string{"今日は晴れ。明日は雨。"}},
		{"sentence end", "晴れ。明日は雨", 12, []string{"晴れ。", "明日は雨"}},
		{"newline", "ab\ncdef", 4, []string{"ab\n", "cdef"}},
		{"rune boundary", "あいうえ", 7, []string{"あい", "うえ"}},
		{"rune wider than max", "あい", 2, []string{"あ", "い"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunks(tt.input, tt.max)
			texts := make([]string, len(got))
			for i, c := range got {
				texts[i] = c.text
			}
			assert.Equal(t, tt.want, texts)
			assert.Equal(t, tt.input, joinChunks(got))
		})
	}
}

func TestChunks_Bases(t *testing.T) {
	input := "一。二。三。"
	got := chunks(input, 7)
	at := 0
	for _, c := range got {
		assert.Equal(t, at, c.base)
		assert.Equal(t, c.text, input[c.base:c.base+len(c.text)])
		at += len(c.text)
	}
}

func FuzzChunks(f *testing.F) {
	f.Add("今日は晴れ。明日は雨！", 5)
	f.Add("abc\ndef", 2)

	f.Fuzz(func(t *testing.T, input string, max int) {
		if !utf8.ValidString(input) || max < 1 || max > 64 {
			t.Skip()
		}
		got := chunks(input, max)
		if joinChunks(got) != input {
			t.Fatalf("chunks of %q do not rebuild it", input)
		}
		for _, c := range got {
			if !utf8.ValidString(c.text) {
				t.Fatalf("chunk %q cuts a rune", c.text)
			}
			if len(c.text) > max && utf8.RuneCountInString(c.text) > 1 {
				t.Fatalf("chunk %q exceeds %d bytes", c.text, max)
			}
		}
	})
}
