package server

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoSplit/internal/analysis"
	"GoSplit/internal/config"
	"GoSplit/internal/testutil"
)

func TestBuildAnalyzer(t *testing.T) {
	tok := testutil.Tokenizer(
		testutil.Word("東京都", "名詞").WithSplit(analysis.SplitA, "東京", "都"),
		testutil.Word("に", "助詞"),
		testutil.Word("行っ", "動詞").WithForms("行く", "イッ"),
		testutil.Word("た", "助動詞"),
	)

	tests := []struct {
		name string
		ac   config.AnalyzerConfig
		want []string
	}{
		{
			name: "split only",
			ac:   config.AnalyzerConfig{Name: "a", Mode: "search", SplitMode: "A"},
			want: []string{"東京都", "東京", "都", "に", "行っ", "た"},
		},
		{
			name: "no split",
			ac:   config.AnalyzerConfig{Name: "c", Mode: "search", SplitMode: "C"},
			want: []string{"東京都", "に", "行っ", "た"},
		},
		{
			name: "base form and stop tags",
			ac: config.AnalyzerConfig{
				Name: "b", Mode: "search", SplitMode: "C",
				BaseForm: true, StopTags: []string{"助詞", "助動詞"},
			},
			want: []string{"東京都", "行く"},
		},
		{
			name: "reading form",
			ac: config.AnalyzerConfig{
				Name: "r", Mode: "search", SplitMode: "C",
				ReadingForm: true, StopTags: []string{"助詞", "助動詞"},
			},
			want: []string{"東京都", "イッ"},
		},
		{
			name: "keywords keep surface",
			ac: config.AnalyzerConfig{
				Name: "k", Mode: "search", SplitMode: "C",
				BaseForm: true, Keywords: []string{"行っ"}, StopWords: []string{"に"},
			},
			want: []string{"東京都", "行っ", "た"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildAnalyzer(tok, tt.ac)
			require.NoError(t, err)
			assert.Equal(t, tt.want, testutil.Terms(p.Analyze("", "ignored")))
		})
	}
}

func TestBuildAnalyzer_InvalidModes(t *testing.T) {
	tok := testutil.Tokenizer()

	_, err := BuildAnalyzer(tok, config.AnalyzerConfig{Name: "x", Mode: "normal", SplitMode: "A"})
	assert.ErrorIs(t, err, analysis.ErrUnknownMode)

	_, err = BuildAnalyzer(tok, config.AnalyzerConfig{Name: "x", Mode: "search", SplitMode: "D"})
	assert.ErrorIs(t, err, analysis.ErrUnknownSplitMode)

	_, err = BuildAnalyzer(tok, config.AnalyzerConfig{Name: "x", Mode: "search", SplitMode: "A", BaseForm: true, ReadingForm: true})
	assert.Error(t, err)
}

func TestService_AnalyzeFallsBackToDefault(t *testing.T) {
	svc := newTestService(t)

	name, tokens, err := svc.Analyze("", "関西国際空港")
	require.NoError(t, err)
	assert.Equal(t, "fake", name)
	assert.Len(t, tokens, 4)

	svc.DefaultAnalyzer = ""
	name, tokens, err = svc.Analyze("", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "standard", name)
	assert.Equal(t, []string{"hello", "world"}, testutil.Terms(tokens))

	_, _, err = svc.Analyze("fake", "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNewService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	svc, err := NewService(cfg, discardLogger())
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Dict)
	assert.NotNil(t, svc.Cache)
	assert.Contains(t, svc.Registry.Names(), "ja_search")

	name, tokens, err := svc.Analyze("", "関西国際空港に行った")
	require.NoError(t, err)
	assert.Equal(t, "ja_search", name)
	assert.Contains(t, testutil.Terms(tokens), "空港")
}

func TestNewService_BadUserDict(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.UserDictPath = filepath.Join(t.TempDir(), "missing.tsv")

	_, err := NewService(cfg, discardLogger())
	assert.Error(t, err)
}
