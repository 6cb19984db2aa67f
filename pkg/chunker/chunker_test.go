package chunker_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/equitylens/strata/pkg/chunker"
	"github.com/equitylens/strata/pkg/domain/types"
)

func summaries(pieces []chunker.Piece) []chunker.Piece {
	var out []chunker.Piece
	for _, p := range pieces {
		if p.Level == types.LevelSummary {
			out = append(out, p)
		}
	}
	return out
}

func details(pieces []chunker.Piece) []chunker.Piece {
	var out []chunker.Piece
	for _, p := range pieces {
		if p.Level == types.LevelDetail {
			out = append(out, p)
		}
	}
	return out
}

func TestSplitEmptyBody(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	gt.Array(t, s.Split("")).Length(0)
	gt.Array(t, s.Split("   \n\n  ")).Length(0)
	gt.Array(t, s.Split("\n\n\n\n")).Length(0)
	gt.Array(t, s.Split(" . ")).Length(0)
}

func TestSplitThreeSentenceDocument(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	pieces := s.Split("HBM revenue grew. Margins improved. Guidance raised for Q4.")
	gt.Array(t, pieces).Length(4)

	sums := summaries(pieces)
	gt.Array(t, sums).Length(1)
	gt.Value(t, sums[0].Content).Equal("HBM revenue grew. Margins improved. Guidance raised for Q4.")
	gt.Value(t, sums[0].ParentIndex).Equal(-1)

	dets := details(pieces)
	gt.Array(t, dets).Length(3)
	gt.Value(t, dets[0].Content).Equal("HBM revenue grew.")
	gt.Value(t, dets[1].Content).Equal("Margins improved.")
	gt.Value(t, dets[2].Content).Equal("Guidance raised for Q4.")
	for _, d := range dets {
		gt.Value(t, d.ParentIndex).Equal(0)
	}
}

func TestSplitSummariesComeFirst(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	body := "First topic begins here. It continues with detail. It concludes firmly.\n\n" +
		"Second topic opens now. More detail follows here. A final statement closes."
	pieces := s.Split(body)

	gt.Array(t, summaries(pieces)).Length(2)
	gt.Array(t, details(pieces)).Length(6)

	// Fixed emission order: all summaries, then details grouped by parent
	gt.Value(t, pieces[0].Level).Equal(types.LevelSummary)
	gt.Value(t, pieces[1].Level).Equal(types.LevelSummary)
	for i := 2; i < len(pieces); i++ {
		gt.Value(t, pieces[i].Level).Equal(types.LevelDetail)
	}
	gt.Value(t, pieces[2].ParentIndex).Equal(0)
	gt.Value(t, pieces[5].ParentIndex).Equal(1)
}

func TestSplitParagraphBoundaryFlush(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	// Two sentences then a paragraph break: the group flushes early
	// even though it never reached three sentences.
	body := "Semiconductor demand recovered. Inventory levels normalized.\n\n" +
		"Capex plans were left unchanged. Management remains cautious."
	pieces := s.Split(body)

	sums := summaries(pieces)
	gt.Array(t, sums).Length(2)
	gt.Value(t, sums[0].Content).Equal("Semiconductor demand recovered. Inventory levels normalized.")
	gt.Value(t, sums[1].Content).Equal("Capex plans were left unchanged. Management remains cautious.")
}

func TestSplitSingleSentenceCarriesOverParagraph(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	// A lone sentence at a paragraph boundary is below the paragraph
	// flush threshold and joins the next paragraph's group.
	body := "Revenue outlook was revised upward.\n\n" +
		"Operating margin expanded again. Cash position remains strong."
	pieces := s.Split(body)

	sums := summaries(pieces)
	gt.Array(t, sums).Length(1)
	gt.Value(t, sums[0].Content).
		Equal("Revenue outlook was revised upward. Operating margin expanded again. Cash position remains strong.")
}

func TestSplitRemainderFlushedAtAnySize(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	pieces := s.Split("A single closing remark stands alone.")
	sums := summaries(pieces)
	gt.Array(t, sums).Length(1)
	gt.Value(t, sums[0].Content).Equal("A single closing remark stands alone.")
	gt.Array(t, details(pieces)).Length(1)
}

func TestSplitShortSentenceExcludedFromDetails(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	t.Run("nine runes dropped", func(t *testing.T) {
		pieces := s.Split("Abcd efgh")
		gt.Array(t, summaries(pieces)).Length(1)
		gt.Array(t, details(pieces)).Length(0)
	})

	t.Run("ten runes kept", func(t *testing.T) {
		pieces := s.Split("Abcde fghi")
		gt.Array(t, summaries(pieces)).Length(1)
		gt.Array(t, details(pieces)).Length(1)
	})

	t.Run("threshold counts runes not bytes", func(t *testing.T) {
		// 11 Hangul syllables: 33 bytes, 11 runes, so it must be kept
		pieces := s.Split("반도체메모리수요가늘다")
		gt.Array(t, details(pieces)).Length(1)

		// 9 runes: dropped despite being 27 bytes
		pieces = s.Split("반도체수요가늘었다")
		gt.Array(t, details(pieces)).Length(0)
	})
}

func TestSplitNormalization(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())

	body := "Spaced    out     words here.\n\n\n\n\nNext paragraph sentence follows. Another one for the group."
	pieces := s.Split(body)

	sums := summaries(pieces)
	gt.Array(t, sums).Length(2)
	gt.Value(t, sums[0].Content).Equal("Spaced out words here.")
}

func TestSplitDeterminism(t *testing.T) {
	s := chunker.New(chunker.DefaultConfig())
	body := "Earnings beat expectations. Outlook remains uncertain. Buybacks continue apace.\n\n" +
		"New fab construction started. Yields are improving steadily."

	first := s.Split(body)
	second := s.Split(body)

	gt.Array(t, second).Length(len(first))
	for i := range first {
		gt.Value(t, second[i]).Equal(first[i])
	}
}

func TestSplitCustomThresholds(t *testing.T) {
	s := chunker.New(chunker.Config{
		SummaryFlushSentences:   2,
		ParagraphFlushSentences: 1,
		MinSentenceRunes:        5,
	})

	pieces := s.Split("One two three. Four five six. Seven eight.")
	sums := summaries(pieces)
	gt.Array(t, sums).Length(2)
	gt.Value(t, sums[0].Content).Equal("One two three. Four five six.")
	gt.Value(t, sums[1].Content).Equal("Seven eight.")
}

func TestConfigDefaults(t *testing.T) {
	// Zero config behaves exactly like the default config
	s := chunker.New(chunker.Config{})
	d := chunker.New(chunker.DefaultConfig())

	body := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu."
	gt.Value(t, s.Split(body)).Equal(d.Split(body))
}
