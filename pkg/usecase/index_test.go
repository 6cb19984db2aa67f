package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/equitylens/strata/pkg/domain/interfaces"
	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/repository/memory"
	"github.com/equitylens/strata/pkg/service/source"
	"github.com/equitylens/strata/pkg/usecase"
)

// fakeEmbedder returns deterministic vectors keyed by text. Texts in
// failTexts fail per-text embedding; failAll fails every call.
type fakeEmbedder struct {
	vectors   map[string][]float32
	failTexts map[string]bool
	failAll   bool
}

var _ interfaces.EmbeddingClient = &fakeEmbedder{}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{1, 0, 0}
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.failAll {
		return nil, errors.New("embedding provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if f.failTexts[t] {
			return nil, errors.New("embedding failed")
		}
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedLenient(ctx context.Context, texts []string) ([][]float32, error) {
	if f.failAll {
		return nil, errors.New("embedding provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if f.failTexts[t] {
			continue
		}
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func newTestUseCases(embedder *fakeEmbedder, sources *source.StaticStore) (*usecase.UseCases, interfaces.Repository) {
	repo := memory.New()
	return usecase.New(repo, embedder, sources), repo
}

const testBody = "Samsung reported record revenue. Memory prices rose sharply. Server demand stays strong."

func putTestSource(sources *source.StaticStore, sourceID string, kind types.SourceKind, body string) {
	sources.Put(&model.Source{
		ID:              sourceID,
		Namespace:       types.NamespaceReport,
		Kind:            kind,
		Body:            body,
		AuthorityWeight: kind.AuthorityWeight(nil),
	})
}

func TestReindex(t *testing.T) {
	t.Run("builds two-level hierarchy", func(t *testing.T) {
		sources := source.NewStaticStore()
		putTestSource(sources, "doc-1", types.SourceKindEarningsCall, testBody)
		uc, repo := newTestUseCases(&fakeEmbedder{}, sources)

		result, err := uc.Reindex(context.Background(), types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()

		gt.Value(t, result.SummaryCount).Equal(1)
		gt.Value(t, result.DetailCount).Equal(3)
		gt.Value(t, result.Total).Equal(4)
		gt.Value(t, result.Degraded).Equal(0)
		gt.Array(t, result.ChunkIDs).Length(4)

		chunks, err := repo.Chunk().ListBySource(context.Background(), types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(4)

		summary := chunks[0]
		gt.Value(t, summary.Level).Equal(types.LevelSummary)
		gt.Value(t, summary.ParentID).Equal(model.ChunkID(""))
		gt.Value(t, summary.Order).Equal(0)

		for i, c := range chunks[1:] {
			gt.Value(t, c.Level).Equal(types.LevelDetail)
			gt.Value(t, c.ParentID).Equal(summary.ID)
			gt.Value(t, c.Order).Equal(i + 1)
		}
	})

	t.Run("snapshots authority weight from source kind", func(t *testing.T) {
		sources := source.NewStaticStore()
		putTestSource(sources, "doc-ir", types.SourceKindIRMaterial, testBody)
		uc, repo := newTestUseCases(&fakeEmbedder{}, sources)

		_, err := uc.Reindex(context.Background(), types.NamespaceReport, "doc-ir")
		gt.NoError(t, err).Required()

		chunks, err := repo.Chunk().ListBySource(context.Background(), types.NamespaceReport, "doc-ir")
		gt.NoError(t, err).Required()
		for _, c := range chunks {
			gt.Value(t, c.AuthorityWeight).Equal(0.9)
		}
	})

	t.Run("reindex replaces previous chunks", func(t *testing.T) {
		sources := source.NewStaticStore()
		putTestSource(sources, "doc-1", types.SourceKindEarningsCall, testBody)
		uc, repo := newTestUseCases(&fakeEmbedder{}, sources)
		ctx := context.Background()

		first, err := uc.Reindex(ctx, types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()
		second, err := uc.Reindex(ctx, types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()

		chunks, err := repo.Chunk().ListBySource(ctx, types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(second.Total)

		oldIDs := make(map[model.ChunkID]bool)
		for _, id := range first.ChunkIDs {
			oldIDs[id] = true
		}
		for _, c := range chunks {
			gt.Bool(t, oldIDs[c.ID]).False()
		}
	})

	t.Run("degrades failed embeddings to empty vectors", func(t *testing.T) {
		sources := source.NewStaticStore()
		putTestSource(sources, "doc-1", types.SourceKindEarningsCall, testBody)
		embedder := &fakeEmbedder{
			failTexts: map[string]bool{"Memory prices rose sharply.": true},
		}
		uc, repo := newTestUseCases(embedder, sources)

		result, err := uc.Reindex(context.Background(), types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Degraded).Equal(1)
		gt.Value(t, result.Total).Equal(4)

		chunks, err := repo.Chunk().ListBySource(context.Background(), types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()

		degraded := 0
		for _, c := range chunks {
			if len(c.Embedding) == 0 {
				degraded++
				gt.Value(t, c.Content).Equal("Memory prices rose sharply.")
			}
		}
		gt.Value(t, degraded).Equal(1)
	})

	t.Run("empty body clears the index", func(t *testing.T) {
		sources := source.NewStaticStore()
		putTestSource(sources, "doc-1", types.SourceKindEarningsCall, testBody)
		uc, repo := newTestUseCases(&fakeEmbedder{}, sources)
		ctx := context.Background()

		_, err := uc.Reindex(ctx, types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()

		putTestSource(sources, "doc-1", types.SourceKindEarningsCall, "   \n\n  ")
		result, err := uc.Reindex(ctx, types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Total).Equal(0)

		chunks, err := repo.Chunk().ListBySource(ctx, types.NamespaceReport, "doc-1")
		gt.NoError(t, err).Required()
		gt.Array(t, chunks).Length(0)
	})

	t.Run("unknown source fails", func(t *testing.T) {
		uc, _ := newTestUseCases(&fakeEmbedder{}, source.NewStaticStore())

		_, err := uc.Reindex(context.Background(), types.NamespaceReport, "no-such-doc")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, source.ErrNotFound)).True()
	})

	t.Run("invalid namespace fails before any store access", func(t *testing.T) {
		uc, _ := newTestUseCases(&fakeEmbedder{}, source.NewStaticStore())

		_, err := uc.Reindex(context.Background(), "bogus", "doc-1")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidNamespace)).True()
	})

	t.Run("empty source ID fails", func(t *testing.T) {
		uc, _ := newTestUseCases(&fakeEmbedder{}, source.NewStaticStore())

		_, err := uc.Reindex(context.Background(), types.NamespaceReport, "")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrEmptySourceID)).True()
	})
}
