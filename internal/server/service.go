package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"GoSplit/internal/analysis"
	"GoSplit/internal/config"
	"GoSplit/internal/indexing"
	"GoSplit/internal/morph"
	"GoSplit/internal/store"
	"GoSplit/internal/userdict"
)

var (
	ErrNoDictionary = errors.New("dictionary administration requires redis")
	ErrEmptyText    = errors.New("text is empty")
)

// DictAdmin edits the runtime user dictionary.
type DictAdmin interface {
	Add(ctx context.Context, surface string, mode analysis.SplitMode, parts ...string) error
	Remove(ctx context.Context, surface string) error
	All(ctx context.Context) (map[string]userdict.Entry, error)
}

// Purger drops cached analysis results.
type Purger interface {
	Purge()
}

// Service holds the runtime state behind the HTTP API.
type Service struct {
	Registry        *analysis.Registry
	DefaultAnalyzer string
	Writer          *indexing.Writer
	Store           *store.Store

	// Dict is nil when no redis is configured.
	Dict DictAdmin
	// Cache is purged after dictionary edits. May be nil.
	Cache Purger

	logger *slog.Logger

	// normalize folds user splits to NFKC, the form the tokenizer looks
	// surfaces up by.
	normalize bool

	// mu serializes buffering and flushing of documents.
	mu      sync.Mutex
	closers []func() error
}

// NewService wires the tokenizer, user dictionaries, analyzers and store
// described by cfg.
func NewService(cfg config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{DefaultAnalyzer: cfg.DefaultAnalyzer, logger: logger, normalize: cfg.Normalize}

	var sources userdict.Chain
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		s.closers = append(s.closers, client.Close)
		rd := userdict.NewRedisDict(client, cfg.RedisPrefix)
		s.Dict = rd
		sources = append(sources, rd)
		logger.Info("redis user dictionary enabled", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
	}
	if cfg.UserDictPath != "" {
		dict, err := userdict.LoadFile(cfg.UserDictPath, cfg.Normalize)
		if err != nil {
			s.Close()
			return nil, err
		}
		sum, err := store.ComputeFileChecksum(cfg.UserDictPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		sources = append(sources, dict)
		logger.Info("user dictionary loaded",
			"path", cfg.UserDictPath,
			"entries", dict.Len(),
			"checksum", sum,
		)
	}

	opts := morph.DefaultOptions()
	opts.DiscardPunctuation = cfg.DiscardPunctuation
	opts.Normalize = cfg.Normalize
	opts.MaxChunkBytes = cfg.MaxChunkBytes
	opts.CacheSize = cfg.CacheSize
	opts.Logger = logger.With("component", "morph")
	if len(sources) > 0 {
		opts.Source = sources
	}
	tok, err := morph.New(opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Cache = tok

	s.Registry = analysis.NewRegistry()
	for _, ac := range cfg.Analyzers {
		a, err := BuildAnalyzer(tok, ac)
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := s.Registry.Register(ac.Name, a); err != nil {
			s.Close()
			return nil, err
		}
	}

	st, err := store.Open(cfg.DataDir, logger.With("component", "store"))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Store = st
	s.closers = append(s.closers, st.Close)

	s.Writer = indexing.NewWriter(cfg.Fields, s.Registry)
	s.Writer.SetLogger(logger.With("component", "writer"))
	return s, nil
}

// BuildAnalyzer assembles a morphological analyzer: tok, the split filter,
// then keyword marking, base form or reading rewriting and stop filters as
// configured.
func BuildAnalyzer(tok analysis.Tokenizer, ac config.AnalyzerConfig) (*analysis.Pipeline, error) {
	mode, err := analysis.ParseMode(ac.Mode)
	if err != nil {
		return nil, fmt.Errorf("analyzer %q: %w", ac.Name, err)
	}
	splitMode, err := analysis.ParseSplitMode(ac.SplitMode)
	if err != nil {
		return nil, fmt.Errorf("analyzer %q: %w", ac.Name, err)
	}

	var filters []analysis.Filter
	if len(ac.Keywords) > 0 {
		filters = append(filters, analysis.KeywordMarker(ac.Keywords...))
	}
	switch {
	case ac.BaseForm && ac.ReadingForm:
		return nil, fmt.Errorf("analyzer %q: base_form and reading_form are exclusive", ac.Name)
	case ac.BaseForm:
		filters = append(filters, analysis.BaseFormFilter)
	case ac.ReadingForm:
		filters = append(filters, analysis.ReadingFormFilter)
	}
	if len(ac.StopTags) > 0 {
		filters = append(filters, analysis.PartOfSpeechStop(ac.StopTags...))
	}
	if len(ac.StopWords) > 0 {
		filters = append(filters, analysis.Stop(ac.StopWords...))
	}
	return morph.NewAnalyzer(tok, mode, splitMode, filters...), nil
}

// Analyze runs the named analyzer, or the default one when name is empty.
func (s *Service) Analyze(name, text string) (string, []analysis.Token, error) {
	if name == "" {
		name = s.DefaultAnalyzer
	}
	if name == "" {
		name = "standard"
	}
	if text == "" {
		return name, nil, ErrEmptyText
	}
	a, err := s.Registry.Get(name)
	if err != nil {
		return name, nil, err
	}
	return name, a.Analyze("", text), nil
}

// Index buffers doc and flushes it to the store.
func (s *Service) Index(doc indexing.Document) (*indexing.FlushResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Writer.AddDocument(doc); err != nil {
		return nil, err
	}
	res, err := s.Writer.Flush(s.Store)
	if err != nil {
		s.Writer.Abort()
		return nil, err
	}
	return res, nil
}

// Delete removes a document from the store.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Writer.DeleteDocument(id); err != nil {
		return err
	}
	if _, err := s.Writer.Flush(s.Store); err != nil {
		s.Writer.Abort()
		return err
	}
	return nil
}

// SetSplit stores user splits for surface and purges cached splits.
// Empty part lists are skipped.
func (s *Service) SetSplit(ctx context.Context, surface string, a, b []string) error {
	if s.Dict == nil {
		return ErrNoDictionary
	}
	if len(a) == 0 && len(b) == 0 {
		return fmt.Errorf("%w: no parts for %q", userdict.ErrMalformedEntry, surface)
	}
	if s.normalize {
		_, a = userdict.Fold(surface, a)
		surface, b = userdict.Fold(surface, b)
	}
	// Validate both before writing either.
	for mode, parts := range map[analysis.SplitMode][]string{analysis.SplitA: a, analysis.SplitB: b} {
		if len(parts) == 0 {
			continue
		}
		if err := userdict.Validate(surface, mode, parts); err != nil {
			return err
		}
	}
	if len(a) > 0 {
		if err := s.Dict.Add(ctx, surface, analysis.SplitA, a...); err != nil {
			return err
		}
	}
	if len(b) > 0 {
		if err := s.Dict.Add(ctx, surface, analysis.SplitB, b...); err != nil {
			return err
		}
	}
	s.purge()
	s.logger.Info("user split stored", "surface", surface, "a", a, "b", b)
	return nil
}

// RemoveSplit deletes the user splits of surface.
func (s *Service) RemoveSplit(ctx context.Context, surface string) error {
	if s.Dict == nil {
		return ErrNoDictionary
	}
	if s.normalize {
		surface, _ = userdict.Fold(surface, nil)
	}
	if err := s.Dict.Remove(ctx, surface); err != nil {
		return err
	}
	s.purge()
	s.logger.Info("user split removed", "surface", surface)
	return nil
}

// Splits lists the runtime user dictionary.
func (s *Service) Splits(ctx context.Context) (map[string]userdict.Entry, error) {
	if s.Dict == nil {
		return nil, ErrNoDictionary
	}
	return s.Dict.All(ctx)
}

func (s *Service) purge() {
	if s.Cache != nil {
		s.Cache.Purge()
	}
}

// Close releases the store and redis connections.
func (s *Service) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
