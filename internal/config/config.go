// Package config loads the service configuration from defaults, an optional
// JSON file and GOSPLIT_* environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"GoSplit/internal/analysis"
	"GoSplit/internal/indexing"
)

var ErrInvalidConfig = errors.New("invalid config")

// builtinAnalyzers are registered by analysis.NewRegistry.
var builtinAnalyzers = map[string]bool{"standard": true, "whitespace": true, "keyword": true}

// AnalyzerConfig describes a morphological analyzer: kagome tokenization
// followed by a split filter and optional rewriting and stop filters.
type AnalyzerConfig struct {
	Name string `json:"name"`

	// Mode is "search" or "extended".
	Mode string `json:"mode"`

	// SplitMode is "A", "B" or "C".
	SplitMode string `json:"split_mode"`

	// BaseForm replaces terms with their dictionary form.
	BaseForm bool `json:"base_form,omitempty"`

	// ReadingForm replaces terms with their katakana reading. It cannot be
	// combined with BaseForm.
	ReadingForm bool `json:"reading_form,omitempty"`

	// Keywords are terms protected from BaseForm and ReadingForm rewriting.
	Keywords []string `json:"keywords,omitempty"`

	// StopTags drops tokens whose part of speech starts with a tag.
	StopTags []string `json:"stop_tags,omitempty"`

	// StopWords drops tokens by term.
	StopWords []string `json:"stop_words,omitempty"`
}

// Config configures the server.
type Config struct {
	// Port is the HTTP listen port.
	Port string `json:"port"`

	// DataDir holds the LevelDB store.
	DataDir string `json:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`

	// DiscardPunctuation drops punctuation morphemes before splitting.
	DiscardPunctuation bool `json:"discard_punctuation"`

	// Normalize applies NFKC before analysis.
	Normalize bool `json:"normalize"`

	// MaxChunkBytes bounds how much text the tokenizer analyzes at once.
	MaxChunkBytes int `json:"max_chunk_bytes"`

	// CacheSize is the number of cached split results.
	CacheSize int `json:"cache_size"`

	// UserDictPath is an optional TSV user dictionary.
	UserDictPath string `json:"user_dict_path,omitempty"`

	// RedisAddr enables the Redis user dictionary when set.
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisPrefix is the key prefix of the Redis user dictionary.
	RedisPrefix string `json:"redis_prefix"`

	// Analyzers are the morphological analyzers to register.
	Analyzers []AnalyzerConfig `json:"analyzers"`

	// DefaultAnalyzer is used by /analyze when the request names none.
	DefaultAnalyzer string `json:"default_analyzer"`

	// Fields are the indexed document fields.
	Fields []indexing.FieldDef `json:"fields"`

	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

// Duration is a time.Duration written in JSON as a string such as "30s".
// A bare number is read as nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = Duration(v)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", data)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:               "8080",
		DataDir:            "data",
		LogLevel:           "info",
		DiscardPunctuation: true,
		Normalize:          true,
		MaxChunkBytes:      1 << 20,
		CacheSize:          10_000,
		RedisPrefix:        "split_dict",
		Analyzers: []AnalyzerConfig{
			{Name: "ja_search", Mode: "search", SplitMode: "A", StopTags: []string{"助詞", "助動詞"}},
			{Name: "ja_extended", Mode: "extended", SplitMode: "A"},
			{Name: "ja_normal", Mode: "search", SplitMode: "C"},
		},
		DefaultAnalyzer: "ja_search",
		Fields: []indexing.FieldDef{
			{Name: "title", Analyzer: "ja_search", Stored: true, Positions: true},
			{Name: "body", Analyzer: "ja_search", Stored: true, Positions: true},
		},
		ReadTimeout:  Duration(30 * time.Second),
		WriteTimeout: Duration(60 * time.Second),
	}
}

// Load returns DefaultConfig overlaid with the JSON file at path (if not
// empty) and then the process environment.
func Load(path string) (Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with a custom environment lookup.
func LoadWith(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		// Lists in the file replace the defaults instead of merging into them.
		defaults := cfg
		cfg.Analyzers, cfg.Fields = nil, nil
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
		if cfg.Analyzers == nil {
			cfg.Analyzers = defaults.Analyzers
		}
		if cfg.Fields == nil {
			cfg.Fields = defaults.Fields
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GOSPLIT_PORT":             &c.Port,
		"GOSPLIT_DATA_DIR":         &c.DataDir,
		"GOSPLIT_LOG_LEVEL":        &c.LogLevel,
		"GOSPLIT_USER_DICT":        &c.UserDictPath,
		"GOSPLIT_REDIS_ADDR":       &c.RedisAddr,
		"GOSPLIT_REDIS_PREFIX":     &c.RedisPrefix,
		"GOSPLIT_DEFAULT_ANALYZER": &c.DefaultAnalyzer,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"GOSPLIT_NORMALIZE":           &c.Normalize,
		"GOSPLIT_DISCARD_PUNCTUATION": &c.DiscardPunctuation,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"GOSPLIT_MAX_CHUNK_BYTES": &c.MaxChunkBytes,
		"GOSPLIT_CACHE_SIZE":      &c.CacheSize,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*Duration{
		"GOSPLIT_READ_TIMEOUT":  &c.ReadTimeout,
		"GOSPLIT_WRITE_TIMEOUT": &c.WriteTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
			}
			*dst = Duration(d)
		}
	}
	return nil
}

// Validate checks analyzer modes and that every analyzer reference resolves.
func (c *Config) Validate() error {
	if c.MaxChunkBytes < 0 || c.CacheSize < 0 {
		return fmt.Errorf("%w: max_chunk_bytes and cache_size must not be negative", ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: read_timeout and write_timeout must not be negative", ErrInvalidConfig)
	}

	known := make(map[string]bool, len(builtinAnalyzers)+len(c.Analyzers))
	for name := range builtinAnalyzers {
		known[name] = true
	}
	for _, a := range c.Analyzers {
		if a.Name == "" {
			return fmt.Errorf("%w: analyzer without a name", ErrInvalidConfig)
		}
		if known[a.Name] {
			return fmt.Errorf("%w: analyzer %q defined twice", ErrInvalidConfig, a.Name)
		}
		if _, err := analysis.ParseMode(a.Mode); err != nil {
			return fmt.Errorf("%w: analyzer %q: %v", ErrInvalidConfig, a.Name, err)
		}
		if _, err := analysis.ParseSplitMode(a.SplitMode); err != nil {
			return fmt.Errorf("%w: analyzer %q: %v", ErrInvalidConfig, a.Name, err)
		}
		if a.BaseForm && a.ReadingForm {
			return fmt.Errorf("%w: analyzer %q: base_form and reading_form are exclusive", ErrInvalidConfig, a.Name)
		}
		known[a.Name] = true
	}

	if c.DefaultAnalyzer != "" && !known[c.DefaultAnalyzer] {
		return fmt.Errorf("%w: default analyzer %q is not defined", ErrInvalidConfig, c.DefaultAnalyzer)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: field name %q empty or repeated", ErrInvalidConfig, f.Name)
		}
		seen[f.Name] = true
		if f.Analyzer != "" && !known[f.Analyzer] {
			return fmt.Errorf("%w: field %q uses undefined analyzer %q", ErrInvalidConfig, f.Name, f.Analyzer)
		}
	}
	return nil
}

// Level returns the slog level named by LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
