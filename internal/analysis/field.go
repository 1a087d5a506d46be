package analysis

// FieldFunc picks a term from a morpheme. Returning "" keeps the surface.
type FieldFunc func(m Morpheme) string

// MorphemeFieldFilter rewrites the term of every morpheme-backed token with
// value(m). Tokens marked Keyword keep their surface, and tokens without a
// morpheme are left alone.
func MorphemeFieldFilter(input TokenStream, value FieldFunc) TokenStream {
	return &fieldFilter{input: input, value: value}
}

// BaseFormFilter replaces terms with their dictionary form.
func BaseFormFilter(input TokenStream) TokenStream {
	return MorphemeFieldFilter(input, Morpheme.DictionaryForm)
}

// ReadingFormFilter replaces terms with their reading.
func ReadingFormFilter(input TokenStream) TokenStream {
	return MorphemeFieldFilter(input, Morpheme.ReadingForm)
}

type fieldFilter struct {
	input TokenStream
	value FieldFunc
}

func (f *fieldFilter) Token() *Token { return f.input.Token() }

func (f *fieldFilter) Next() bool {
	if !f.input.Next() {
		return false
	}
	tok := f.input.Token()
	m := tok.Morpheme
	if m == nil {
		return true
	}
	var term string
	if !tok.Keyword {
		term = f.value(m)
	}
	if term == "" {
		term = m.Surface()
	}
	tok.Term = term
	return true
}

// KeywordMarker returns a Filter that marks tokens whose term is one of terms
// as keywords.
func KeywordMarker(terms ...string) Filter {
	set := toSet(terms)
	return func(ts TokenStream) TokenStream {
		return &keywordFilter{input: ts, terms: set}
	}
}

type keywordFilter struct {
	input TokenStream
	terms map[string]struct{}
}

func (f *keywordFilter) Token() *Token { return f.input.Token() }

func (f *keywordFilter) Next() bool {
	if !f.input.Next() {
		return false
	}
	tok := f.input.Token()
	if _, ok := f.terms[tok.Term]; ok {
		tok.Keyword = true
	}
	return true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
