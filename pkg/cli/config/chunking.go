package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/equitylens/strata/pkg/chunker"
	"github.com/equitylens/strata/pkg/domain/types"
)

// Chunking holds CLI flags for chunking thresholds and authority
// weights. A TOML config file sets the baseline; explicit threshold
// flags override it.
type Chunking struct {
	configPath string

	summaryFlush     int
	paragraphFlush   int
	minSentenceRunes int
}

// chunkingFile is the TOML file layout:
//
//	[thresholds]
//	summary_flush_sentences = 3
//	paragraph_flush_sentences = 2
//	min_sentence_runes = 10
//
//	[weights]
//	"earnings-call" = 1.0
//	"analyst-report" = 0.4
type chunkingFile struct {
	Thresholds chunker.Config     `toml:"thresholds"`
	Weights    map[string]float64 `toml:"weights"`
}

// Flags returns CLI flags for chunking configuration
func (c *Chunking) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "chunking-config",
			Usage:       "Path to TOML file with chunking thresholds and authority weights",
			Sources:     cli.EnvVars("STRATA_CHUNKING_CONFIG"),
			Destination: &c.configPath,
		},
		&cli.IntFlag{
			Name:        "summary-flush-sentences",
			Usage:       "Sentences per summary group before flushing (0 uses the default)",
			Sources:     cli.EnvVars("STRATA_SUMMARY_FLUSH_SENTENCES"),
			Destination: &c.summaryFlush,
		},
		&cli.IntFlag{
			Name:        "paragraph-flush-sentences",
			Usage:       "Minimum group size flushed at a paragraph boundary (0 uses the default)",
			Sources:     cli.EnvVars("STRATA_PARAGRAPH_FLUSH_SENTENCES"),
			Destination: &c.paragraphFlush,
		},
		&cli.IntFlag{
			Name:        "min-sentence-runes",
			Usage:       "Minimum sentence length in runes for detail chunks (0 uses the default)",
			Sources:     cli.EnvVars("STRATA_MIN_SENTENCE_RUNES"),
			Destination: &c.minSentenceRunes,
		},
	}
}

// Configure resolves the chunking thresholds and the authority weight
// table. A nil weight table means the built-in defaults apply.
func (c *Chunking) Configure() (chunker.Config, map[types.SourceKind]float64, error) {
	cfg := chunker.DefaultConfig()
	var weights map[types.SourceKind]float64

	if c.configPath != "" {
		// #nosec G304 - path is expected to be provided by CLI argument
		data, err := os.ReadFile(c.configPath)
		if err != nil {
			return cfg, nil, goerr.Wrap(err, "failed to read chunking config file",
				goerr.V("path", c.configPath))
		}

		var file chunkingFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return cfg, nil, goerr.Wrap(err, "failed to parse TOML chunking config",
				goerr.V("path", c.configPath))
		}

		if file.Thresholds.SummaryFlushSentences > 0 {
			cfg.SummaryFlushSentences = file.Thresholds.SummaryFlushSentences
		}
		if file.Thresholds.ParagraphFlushSentences > 0 {
			cfg.ParagraphFlushSentences = file.Thresholds.ParagraphFlushSentences
		}
		if file.Thresholds.MinSentenceRunes > 0 {
			cfg.MinSentenceRunes = file.Thresholds.MinSentenceRunes
		}

		if len(file.Weights) > 0 {
			weights = types.DefaultAuthorityWeights()
			for k, w := range file.Weights {
				kind, err := types.ParseSourceKind(k)
				if err != nil {
					return cfg, nil, goerr.Wrap(err, "invalid source kind in weights table",
						goerr.V("path", c.configPath))
				}
				if w < 0 || w > 1 {
					return cfg, nil, goerr.New("authority weight must be in [0,1]",
						goerr.V("kind", kind), goerr.V("weight", w))
				}
				weights[kind] = w
			}
		}
	}

	if c.summaryFlush > 0 {
		cfg.SummaryFlushSentences = c.summaryFlush
	}
	if c.paragraphFlush > 0 {
		cfg.ParagraphFlushSentences = c.paragraphFlush
	}
	if c.minSentenceRunes > 0 {
		cfg.MinSentenceRunes = c.minSentenceRunes
	}

	return cfg, weights, nil
}
