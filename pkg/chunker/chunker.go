package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/equitylens/strata/pkg/domain/types"
)

// Default chunking thresholds. These are empirical; tune per corpus and
// language via Config rather than editing the constants.
const (
	// DefaultSummaryFlushSentences flushes an accumulated summary group
	// once it reaches this many sentences
	DefaultSummaryFlushSentences = 3

	// DefaultParagraphFlushSentences flushes a group of at least this
	// many sentences at a paragraph boundary, so topic breaks are
	// respected before a group fills up
	DefaultParagraphFlushSentences = 2

	// DefaultMinSentenceRunes drops shorter sentences from Detail
	// derivation as noise (bare punctuation, stray headers). Measured
	// in runes so Hangul and CJK text is counted per character.
	DefaultMinSentenceRunes = 10
)

// Config holds the chunking thresholds. Zero values fall back to the
// package defaults.
type Config struct {
	SummaryFlushSentences   int `toml:"summary_flush_sentences"`
	ParagraphFlushSentences int `toml:"paragraph_flush_sentences"`
	MinSentenceRunes        int `toml:"min_sentence_runes"`
}

// DefaultConfig returns the default chunking thresholds
func DefaultConfig() Config {
	return Config{
		SummaryFlushSentences:   DefaultSummaryFlushSentences,
		ParagraphFlushSentences: DefaultParagraphFlushSentences,
		MinSentenceRunes:        DefaultMinSentenceRunes,
	}
}

func (c Config) withDefaults() Config {
	if c.SummaryFlushSentences <= 0 {
		c.SummaryFlushSentences = DefaultSummaryFlushSentences
	}
	if c.ParagraphFlushSentences <= 0 {
		c.ParagraphFlushSentences = DefaultParagraphFlushSentences
	}
	if c.MinSentenceRunes <= 0 {
		c.MinSentenceRunes = DefaultMinSentenceRunes
	}
	return c
}

// Piece is one chunk-to-be produced by splitting a document body.
// ParentIndex refers to the index of the owning Summary piece within
// the returned slice, and is -1 for Summary pieces themselves. The
// slice index of a piece is its final order.
type Piece struct {
	Content     string
	Level       types.ChunkLevel
	ParentIndex int
}

// Splitter turns a document body into an ordered two-level list of
// pieces. It is deterministic and performs no I/O.
type Splitter struct {
	cfg Config
}

// New creates a Splitter with the given thresholds, applying defaults
// for zero values
func New(cfg Config) *Splitter {
	return &Splitter{cfg: cfg.withDefaults()}
}

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace   = regexp.MustCompile(` {2,}`)

	// sentencePattern captures a run of text up to and including its
	// terminal punctuation run; trailing text without terminal
	// punctuation forms a final sentence.
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Split chunks a document body. Summary pieces come first in document
// order, followed by Detail pieces grouped by parent in document order.
// An empty or whitespace-only body yields no pieces.
func (s *Splitter) Split(body string) []Piece {
	normalized := normalize(body)
	if normalized == "" {
		return nil
	}

	summaries := s.buildSummaries(splitParagraphs(normalized))
	if len(summaries) == 0 {
		return nil
	}

	pieces := make([]Piece, 0, len(summaries)*2)
	for _, content := range summaries {
		pieces = append(pieces, Piece{
			Content:     content,
			Level:       types.LevelSummary,
			ParentIndex: -1,
		})
	}

	// Details are re-derived from each summary's own text so that a
	// summary and its details always agree, even if grouping spanned a
	// paragraph boundary.
	for parentIdx, content := range summaries {
		for _, para := range splitParagraphs(content) {
			for _, sent := range splitSentences(para) {
				if utf8.RuneCountInString(sent) < s.cfg.MinSentenceRunes {
					continue
				}
				pieces = append(pieces, Piece{
					Content:     sent,
					Level:       types.LevelDetail,
					ParentIndex: parentIdx,
				})
			}
		}
	}

	return pieces
}

// buildSummaries accumulates sentences across paragraphs into summary
// groups: flush at SummaryFlushSentences, flush a group of at least
// ParagraphFlushSentences at a paragraph boundary, and flush any
// remainder at end of document regardless of size.
func (s *Splitter) buildSummaries(paragraphs []string) []string {
	var summaries []string
	var group []string

	for _, para := range paragraphs {
		for _, sent := range splitSentences(para) {
			group = append(group, sent)
			if len(group) >= s.cfg.SummaryFlushSentences {
				summaries = append(summaries, strings.Join(group, " "))
				group = nil
			}
		}
		if len(group) >= s.cfg.ParagraphFlushSentences {
			summaries = append(summaries, strings.Join(group, " "))
			group = nil
		}
	}
	if len(group) > 0 {
		summaries = append(summaries, strings.Join(group, " "))
	}

	return summaries
}

func normalize(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = multiNewline.ReplaceAllString(body, "\n\n")
	body = multiSpace.ReplaceAllString(body, " ")
	return strings.TrimSpace(body)
}

func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func splitSentences(text string) []string {
	matches := sentencePattern.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if strings.Trim(m, ".!? \t\n") == "" {
			continue
		}
		sentences = append(sentences, m)
	}
	return sentences
}
