package analysis

import "strings"

// Stop returns a Filter that removes tokens whose term is in words.
func Stop(words ...string) Filter {
	set := toSet(words)
	return func(ts TokenStream) TokenStream {
		return &dropFilter{input: ts, drop: func(tok *Token) bool {
			_, ok := set[tok.Term]
			return ok
		}}
	}
}

// PartOfSpeechStop returns a Filter that removes morpheme tokens whose part
// of speech starts with one of tags. A tag is a comma-joined prefix such as
// "助詞" or "補助記号,句点".
func PartOfSpeechStop(tags ...string) Filter {
	set := toSet(tags)
	return func(ts TokenStream) TokenStream {
		return &dropFilter{input: ts, drop: func(tok *Token) bool {
			if tok.Morpheme == nil {
				return false
			}
			return matchPOS(set, tok.Morpheme.PartOfSpeech())
		}}
	}
}

func matchPOS(tags map[string]struct{}, pos []string) bool {
	var b strings.Builder
	for i, p := range pos {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p)
		if _, ok := tags[b.String()]; ok {
			return true
		}
	}
	return false
}

// dropFilter removes tokens and hands their position increments to the next
// kept token so the remaining positions do not shift.
type dropFilter struct {
	input TokenStream
	drop  func(*Token) bool
}

func (f *dropFilter) Token() *Token { return f.input.Token() }

func (f *dropFilter) Next() bool {
	skipped := 0
	for f.input.Next() {
		tok := f.input.Token()
		if f.drop(tok) {
			skipped += tok.PositionIncrement
			continue
		}
		tok.PositionIncrement += skipped
		return true
	}
	return false
}
