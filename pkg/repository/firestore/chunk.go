package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
)

const chunksCollection = "chunks"

// chunkDoc is the Firestore document representation of model.Chunk.
// Embedding is stored as firestore.Vector32 for FindNearest vector
// search. VectorDistance is populated only by vector queries via
// DistanceResultField.
type chunkDoc struct {
	ID              model.ChunkID      `firestore:"ID"`
	SourceID        string             `firestore:"SourceID"`
	Namespace       string             `firestore:"Namespace"`
	Content         string             `firestore:"Content"`
	Embedding       firestore.Vector32 `firestore:"Embedding,omitempty"`
	AuthorityWeight float64            `firestore:"AuthorityWeight"`
	Level           string             `firestore:"Level"`
	Order           int                `firestore:"Order"`
	ParentID        model.ChunkID      `firestore:"ParentID"`
	CreatedAt       time.Time          `firestore:"CreatedAt"`

	VectorDistance float64 `firestore:"vector_distance,omitempty"`
}

func toChunkDoc(c *model.Chunk) *chunkDoc {
	doc := &chunkDoc{
		ID:              c.ID,
		SourceID:        c.SourceID,
		Namespace:       string(c.Namespace),
		Content:         c.Content,
		AuthorityWeight: c.AuthorityWeight,
		Level:           string(c.Level),
		Order:           c.Order,
		ParentID:        c.ParentID,
		CreatedAt:       c.CreatedAt,
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(c.Embedding)
	}
	return doc
}

func fromChunkDoc(d *chunkDoc) *model.Chunk {
	c := &model.Chunk{
		ID:              d.ID,
		SourceID:        d.SourceID,
		Namespace:       types.Namespace(d.Namespace),
		Content:         d.Content,
		AuthorityWeight: d.AuthorityWeight,
		Level:           types.ChunkLevel(d.Level),
		Order:           d.Order,
		ParentID:        d.ParentID,
		CreatedAt:       d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		c.Embedding = []float32(d.Embedding)
	}
	return c
}

type chunkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newChunkRepository(client *firestore.Client) *chunkRepository {
	return &chunkRepository{client: client}
}

func (r *chunkRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + chunksCollection)
}

// InsertBatch persists all chunks via a BulkWriter, which handles the
// 500-document batch limit internally
func (r *chunkRepository) InsertBatch(ctx context.Context, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	var jobs []*firestore.BulkWriterJob
	for _, c := range chunks {
		if c.ID == "" {
			return goerr.New("chunk ID is empty", goerr.V("source_id", c.SourceID))
		}
		docRef := r.collection().Doc(string(c.ID))
		job, err := bulkWriter.Set(docRef, toChunkDoc(c))
		if err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer",
				goerr.V("chunk_id", c.ID))
		}
		jobs = append(jobs, job)
	}

	bulkWriter.Flush()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return wrapStoreErr(err, "failed to write chunk",
				goerr.V("chunk_id", chunks[i].ID))
		}
	}

	return nil
}

func (r *chunkRepository) DeleteBySource(ctx context.Context, namespace types.Namespace, sourceID string) error {
	iter := r.collection().
		Where("Namespace", "==", string(namespace)).
		Where("SourceID", "==", sourceID).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return wrapStoreErr(err, "failed to iterate chunks for deletion",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}
		refs = append(refs, doc.Ref)
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	var jobs []*firestore.BulkWriterJob
	for _, ref := range refs {
		job, err := bulkWriter.Delete(ref)
		if err != nil {
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer")
		}
		jobs = append(jobs, job)
	}

	bulkWriter.Flush()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return wrapStoreErr(err, "failed to delete chunk",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}
	}

	return nil
}

// SimilaritySearch runs a FindNearest vector query. Cosine distance is
// converted to similarity as 1 - distance; the minimum-similarity cut
// is applied client side since Firestore only supports a distance
// threshold per query.
func (r *chunkRepository) SimilaritySearch(ctx context.Context, embedding []float32, filter *model.SearchFilter, limit int) ([]*model.ChunkMatch, error) {
	if len(embedding) == 0 {
		return []*model.ChunkMatch{}, nil
	}

	query := r.collection().Query
	minSimilarity := 0.0
	if filter != nil {
		if filter.Namespace != "" {
			query = query.Where("Namespace", "==", string(filter.Namespace))
		}
		if filter.Level != "" {
			query = query.Where("Level", "==", string(filter.Level))
		}
		minSimilarity = filter.MinSimilarity
	}

	vq := query.FindNearest("Embedding", firestore.Vector32(embedding), limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{
			DistanceResultField: "vector_distance",
		})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	matches := make([]*model.ChunkMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate chunk vector search results")
		}

		var d chunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk from vector search")
		}

		similarity := 1.0 - d.VectorDistance
		if similarity < minSimilarity {
			continue
		}

		matches = append(matches, &model.ChunkMatch{
			Chunk:      fromChunkDoc(&d),
			Similarity: similarity,
		})
	}

	return matches, nil
}

func (r *chunkRepository) GetChildren(ctx context.Context, parentID model.ChunkID) ([]*model.Chunk, error) {
	iter := r.collection().
		Where("ParentID", "==", string(parentID)).
		OrderBy("Order", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	children := make([]*model.Chunk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate child chunks",
				goerr.V("parent_id", parentID))
		}

		var d chunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk",
				goerr.V("parent_id", parentID))
		}

		children = append(children, fromChunkDoc(&d))
	}

	return children, nil
}

func (r *chunkRepository) Get(ctx context.Context, id model.ChunkID) (*model.Chunk, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "chunk not found", goerr.V("chunk_id", id))
		}
		return nil, wrapStoreErr(err, "failed to get chunk", goerr.V("chunk_id", id))
	}

	var d chunkDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal chunk", goerr.V("chunk_id", id))
	}

	return fromChunkDoc(&d), nil
}

func (r *chunkRepository) ListBySource(ctx context.Context, namespace types.Namespace, sourceID string) ([]*model.Chunk, error) {
	iter := r.collection().
		Where("Namespace", "==", string(namespace)).
		Where("SourceID", "==", sourceID).
		OrderBy("Order", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	chunks := make([]*model.Chunk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate chunks",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}

		var d chunkDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal chunk",
				goerr.V("namespace", namespace), goerr.V("source_id", sourceID))
		}

		chunks = append(chunks, fromChunkDoc(&d))
	}

	return chunks, nil
}
