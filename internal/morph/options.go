package morph

import (
	"log/slog"

	"GoSplit/internal/userdict"
)

// Options configures a Tokenizer.
type Options struct {
	// DiscardPunctuation drops punctuation and whitespace morphemes.
	DiscardPunctuation bool

	// Normalize applies NFKC before analysis. Offsets still point into the
	// original text.
	Normalize bool

	// MaxChunkBytes bounds how much text kagome sees at once. Zero means no limit.
	MaxChunkBytes int

	// CacheSize is the number of split results kept. Zero disables the cache.
	CacheSize int

	// Source holds user splits consulted before kagome. May be nil.
	Source userdict.Source

	// Logger for tokenizer events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		DiscardPunctuation: true,
		Normalize:          true,
		MaxChunkBytes:      1 << 20,
		CacheSize:          10_000,
	}
}
