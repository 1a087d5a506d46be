// Package blevesplit exposes the split analyzer as a bleve tokenizer.
//
// Importing the package registers the tokenizer under Name:
//
//	mapping.AddCustomTokenizer("ja", map[string]interface{}{
//		"type":       blevesplit.Name,
//		"split_mode": "A",
//	})
package blevesplit

import (
	"fmt"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	split "GoSplit/internal/analysis"
	"GoSplit/internal/morph"
	"GoSplit/internal/userdict"
)

// Name is the registered tokenizer name.
const Name = "morph_split"

func init() {
	registry.RegisterTokenizer(Name, Constructor)
}

// Tokenizer runs a split analyzer and converts its token graph to bleve
// tokens. Positions are 1-based, and the first unit of a split shares the
// position of the token it was cut from.
type Tokenizer struct {
	analyzer *split.Pipeline
}

// NewTokenizer wraps tok with a split filter.
func NewTokenizer(tok split.Tokenizer, mode split.Mode, splitMode split.SplitMode) *Tokenizer {
	return &Tokenizer{analyzer: morph.NewAnalyzer(tok, mode, splitMode)}
}

// Tokenize implements analysis.Tokenizer.
func (t *Tokenizer) Tokenize(input []byte) analysis.TokenStream {
	tokens := t.analyzer.Analyze("", string(input))
	out := make(analysis.TokenStream, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, &analysis.Token{
			Term:     []byte(tok.Term),
			Start:    tok.Start,
			End:      tok.End,
			Position: tok.Position + 1,
			Type:     tokenType(tok),
			KeyWord:  tok.Keyword,
		})
	}
	return out
}

func tokenType(tok split.Token) analysis.TokenType {
	if tok.Kind == split.KindChar {
		return analysis.Single
	}
	for _, r := range tok.Term {
		if !unicode.IsDigit(r) {
			return analysis.Ideographic
		}
	}
	return analysis.Numeric
}

// options is the parsed tokenizer config.
type options struct {
	mode      split.Mode
	splitMode split.SplitMode
	morph     morph.Options
	userDict  string
}

func parseConfig(config map[string]interface{}) (options, error) {
	opts := options{mode: split.DefaultMode, splitMode: split.SplitA, morph: morph.DefaultOptions()}

	if v, ok := config["mode"]; ok {
		s, ok := v.(string)
		if !ok {
			return opts, fmt.Errorf("%s: mode must be a string, got %T", Name, v)
		}
		m, err := split.ParseMode(s)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", Name, err)
		}
		opts.mode = m
	}
	if v, ok := config["split_mode"]; ok {
		s, ok := v.(string)
		if !ok {
			return opts, fmt.Errorf("%s: split_mode must be a string, got %T", Name, v)
		}
		m, err := split.ParseSplitMode(s)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", Name, err)
		}
		opts.splitMode = m
	}
	for key, dst := range map[string]*bool{
		"discard_punctuation": &opts.morph.DiscardPunctuation,
		"normalize":           &opts.morph.Normalize,
	} {
		if v, ok := config[key]; ok {
			b, ok := v.(bool)
			if !ok {
				return opts, fmt.Errorf("%s: %s must be a bool, got %T", Name, key, v)
			}
			*dst = b
		}
	}
	if v, ok := config["user_dict"]; ok {
		s, ok := v.(string)
		if !ok {
			return opts, fmt.Errorf("%s: user_dict must be a string, got %T", Name, v)
		}
		opts.userDict = s
	}
	return opts, nil
}

// Constructor builds a Tokenizer from a bleve config map. Recognized keys:
// mode, split_mode, discard_punctuation, normalize and user_dict.
func Constructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	opts, err := parseConfig(config)
	if err != nil {
		return nil, err
	}
	if opts.userDict != "" {
		dict, err := userdict.LoadFile(opts.userDict, opts.morph.Normalize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", Name, err)
		}
		opts.morph.Source = dict
	}
	tok, err := morph.New(opts.morph)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return NewTokenizer(tok, opts.mode, opts.splitMode), nil
}
