package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/utils/logging"
)

// Reindex rebuilds the chunk index for one source: fetch the body,
// split it into the two-level hierarchy, embed every piece, then
// replace all previously stored chunks of the source in one
// delete-then-insert pass. Runs for the same source are serialized;
// different sources reindex concurrently.
func (uc *UseCases) Reindex(ctx context.Context, namespace types.Namespace, sourceID string) (*model.IndexResult, error) {
	if !namespace.IsValid() {
		return nil, goerr.Wrap(ErrInvalidNamespace, "cannot reindex", goerr.V("namespace", namespace))
	}
	if sourceID == "" {
		return nil, goerr.Wrap(ErrEmptySourceID, "cannot reindex")
	}

	src, err := uc.sources.Get(ctx, namespace, sourceID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch source",
			goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
	}

	lock := uc.reindexLocks.get(string(namespace) + "/" + sourceID)
	lock.Lock()
	defer lock.Unlock()

	pieces := uc.splitter.Split(src.Body)

	result := &model.IndexResult{
		SourceID:  sourceID,
		Namespace: namespace,
	}

	if len(pieces) == 0 {
		if err := uc.repo.Chunk().DeleteBySource(ctx, namespace, sourceID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete stale chunks",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}
		logging.From(ctx).Info("reindexed empty source",
			"namespace", namespace, "source_id", sourceID)
		return result, nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
	}

	embeddings, err := uc.embedder.EmbedLenient(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed chunks",
			goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
	}

	now := time.Now().UTC()
	chunks := make([]*model.Chunk, len(pieces))
	ids := make([]model.ChunkID, len(pieces))
	for i := range pieces {
		ids[i] = model.NewChunkID()
	}

	for i, p := range pieces {
		chunk := &model.Chunk{
			ID:              ids[i],
			SourceID:        sourceID,
			Namespace:       namespace,
			Content:         p.Content,
			Embedding:       embeddings[i],
			AuthorityWeight: src.AuthorityWeight,
			Level:           p.Level,
			Order:           i,
			CreatedAt:       now,
		}
		if p.ParentIndex >= 0 {
			chunk.ParentID = ids[p.ParentIndex]
		}
		if err := chunk.Validate(); err != nil {
			return nil, goerr.Wrap(err, "built invalid chunk",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}
		chunks[i] = chunk

		switch p.Level {
		case types.LevelSummary:
			result.SummaryCount++
		case types.LevelDetail:
			result.DetailCount++
		}
		if len(embeddings[i]) == 0 {
			result.Degraded++
		}
	}

	if err := uc.repo.Chunk().DeleteBySource(ctx, namespace, sourceID); err != nil {
		return nil, goerr.Wrap(err, "failed to delete stale chunks",
			goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
	}
	if err := uc.repo.Chunk().InsertBatch(ctx, chunks); err != nil {
		return nil, goerr.Wrap(err, "failed to insert chunks",
			goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
	}

	result.Total = len(chunks)
	result.ChunkIDs = ids

	logging.From(ctx).Info("reindexed source",
		"namespace", namespace,
		"source_id", sourceID,
		"summaries", result.SummaryCount,
		"details", result.DetailCount,
		"degraded", result.Degraded,
	)

	return result, nil
}
