package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/equitylens/strata/pkg/cli/config"
	"github.com/equitylens/strata/pkg/domain/types"
)

func writeChunkingConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunking.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestChunking_Configure(t *testing.T) {
	t.Run("defaults apply without a config file", func(t *testing.T) {
		cfg, weights, err := config.NewChunkingForTest("", 0, 0, 0).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.SummaryFlushSentences).Equal(3)
		gt.Value(t, cfg.ParagraphFlushSentences).Equal(2)
		gt.Value(t, cfg.MinSentenceRunes).Equal(10)
		gt.Value(t, weights).Nil()
	})

	t.Run("loads thresholds and weights from TOML", func(t *testing.T) {
		path := writeChunkingConfig(t, `
[thresholds]
summary_flush_sentences = 5
min_sentence_runes = 20

[weights]
"analyst-report" = 0.3
`)

		cfg, weights, err := config.NewChunkingForTest(path, 0, 0, 0).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.SummaryFlushSentences).Equal(5)
		gt.Value(t, cfg.ParagraphFlushSentences).Equal(2)
		gt.Value(t, cfg.MinSentenceRunes).Equal(20)

		gt.Value(t, weights[types.SourceKindAnalystReport]).Equal(0.3)
		// untouched kinds keep their defaults
		gt.Value(t, weights[types.SourceKindEarningsCall]).Equal(1.0)
	})

	t.Run("flag overrides beat the config file", func(t *testing.T) {
		path := writeChunkingConfig(t, `
[thresholds]
summary_flush_sentences = 5
`)

		cfg, _, err := config.NewChunkingForTest(path, 7, 0, 0).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.SummaryFlushSentences).Equal(7)
	})

	t.Run("missing config file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.toml")
		_, _, err := config.NewChunkingForTest(path, 0, 0, 0).Configure()
		gt.Error(t, err)
	})

	t.Run("unknown source kind in weights fails", func(t *testing.T) {
		path := writeChunkingConfig(t, `
[weights]
"rumor-mill" = 0.9
`)

		_, _, err := config.NewChunkingForTest(path, 0, 0, 0).Configure()
		gt.Error(t, err)
	})

	t.Run("out-of-range weight fails", func(t *testing.T) {
		path := writeChunkingConfig(t, `
[weights]
"filing" = 1.5
`)

		_, _, err := config.NewChunkingForTest(path, 0, 0, 0).Configure()
		gt.Error(t, err)
	})

	t.Run("returns flags", func(t *testing.T) {
		var c config.Chunking
		gt.Value(t, len(c.Flags())).Equal(4)
	})
}
