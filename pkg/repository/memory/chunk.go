package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
)

type chunkRepository struct {
	mu     sync.RWMutex
	chunks map[model.ChunkID]*model.Chunk
}

func newChunkRepository() *chunkRepository {
	return &chunkRepository{
		chunks: make(map[model.ChunkID]*model.Chunk),
	}
}

func (r *chunkRepository) InsertBatch(ctx context.Context, chunks []*model.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range chunks {
		if c.ID == "" {
			return goerr.New("chunk ID is empty", goerr.V("source_id", c.SourceID))
		}
		r.chunks[c.ID] = c.Clone()
	}

	return nil
}

func (r *chunkRepository) DeleteBySource(ctx context.Context, namespace types.Namespace, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.chunks {
		if c.Namespace == namespace && c.SourceID == sourceID {
			delete(r.chunks, id)
		}
	}

	return nil
}

func (r *chunkRepository) SimilaritySearch(ctx context.Context, embedding []float32, filter *model.SearchFilter, limit int) ([]*model.ChunkMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*model.ChunkMatch
	for _, c := range r.chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if filter != nil {
			if filter.Namespace != "" && c.Namespace != filter.Namespace {
				continue
			}
			if filter.Level != "" && c.Level != filter.Level {
				continue
			}
		}

		sim := cosineSimilarity(embedding, c.Embedding)
		if filter != nil && sim < filter.MinSimilarity {
			continue
		}

		candidates = append(candidates, &model.ChunkMatch{
			Chunk:      c.Clone(),
			Similarity: sim,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if limit < len(candidates) {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (r *chunkRepository) GetChildren(ctx context.Context, parentID model.ChunkID) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var children []*model.Chunk
	for _, c := range r.chunks {
		if c.ParentID == parentID {
			children = append(children, c.Clone())
		}
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].Order < children[j].Order
	})

	return children, nil
}

func (r *chunkRepository) Get(ctx context.Context, id model.ChunkID) (*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chunks[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "chunk not found", goerr.V("chunk_id", id))
	}

	return c.Clone(), nil
}

func (r *chunkRepository) ListBySource(ctx context.Context, namespace types.Namespace, sourceID string) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Chunk
	for _, c := range r.chunks {
		if c.Namespace == namespace && c.SourceID == sourceID {
			result = append(result, c.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})

	return result, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
