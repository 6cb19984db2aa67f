package interfaces

import (
	"context"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
)

// ChunkRepository defines the persistence primitives the retrieval
// engine is built on. Implementations must provide top-K cosine
// similarity search; ranking and context reconstruction are layered on
// top by the use cases.
type ChunkRepository interface {
	// InsertBatch persists all chunks of one source in one logical batch
	InsertBatch(ctx context.Context, chunks []*model.Chunk) error

	// DeleteBySource removes every chunk of the given source
	DeleteBySource(ctx context.Context, namespace types.Namespace, sourceID string) error

	// SimilaritySearch returns up to limit chunks ordered by descending
	// cosine similarity to the query embedding. Chunks without an
	// embedding are never returned. The filter narrows by namespace,
	// level and minimum similarity.
	SimilaritySearch(ctx context.Context, embedding []float32, filter *model.SearchFilter, limit int) ([]*model.ChunkMatch, error)

	// GetChildren returns all Detail chunks of a Summary chunk, ordered
	// by Order ascending
	GetChildren(ctx context.Context, parentID model.ChunkID) ([]*model.Chunk, error)

	// Get retrieves a chunk by ID
	Get(ctx context.Context, id model.ChunkID) (*model.Chunk, error)

	// ListBySource returns all chunks of a source ordered by Order
	// ascending
	ListBySource(ctx context.Context, namespace types.Namespace, sourceID string) ([]*model.Chunk, error)
}
