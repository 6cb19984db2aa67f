package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector
// (text-embedding-004 via Gemini API)
const EmbeddingDimension = 768

// ChunkID is a UUID-based identifier for Chunk
type ChunkID string

// NewChunkID generates a new UUID v4 ChunkID
func NewChunkID() ChunkID {
	return ChunkID(uuid.New().String())
}

// String returns the string representation of the chunk ID
func (id ChunkID) String() string {
	return string(id)
}

// Chunk is the unit of indexing and retrieval. A Summary chunk is a
// short multi-sentence passage; a Detail chunk is a single sentence
// derived from its parent Summary.
type Chunk struct {
	ID        ChunkID
	SourceID  string
	Namespace types.Namespace
	Content   string
	Embedding []float32

	// AuthorityWeight is a snapshot of the source's weight at index
	// time. It is immutable after creation; re-indexing the source is
	// the only way to pick up a changed weight.
	AuthorityWeight float64

	Level types.ChunkLevel

	// Order is the zero-based position among chunks of the same
	// (SourceID, Namespace). Summaries come first in document order,
	// then details grouped by parent, sharing one counter.
	Order int

	// ParentID links a Detail chunk to the Summary chunk it was derived
	// from. Empty for Summary chunks.
	ParentID ChunkID

	CreatedAt time.Time
}

// Validate checks the structural invariants of a chunk
func (c *Chunk) Validate() error {
	if c.SourceID == "" {
		return goerr.New("chunk source ID is required")
	}
	if !c.Namespace.IsValid() {
		return goerr.New("invalid chunk namespace", goerr.V("namespace", c.Namespace))
	}
	if !c.Level.IsValid() {
		return goerr.New("invalid chunk level", goerr.V("level", c.Level))
	}
	if c.Level == types.LevelSummary && c.ParentID != "" {
		return goerr.New("summary chunk must not have a parent", goerr.V("id", c.ID))
	}
	if c.Level == types.LevelDetail && c.ParentID == "" {
		return goerr.New("detail chunk requires a parent", goerr.V("id", c.ID))
	}
	if c.AuthorityWeight < 0 || c.AuthorityWeight > 1 {
		return goerr.New("authority weight must be in [0,1]",
			goerr.V("id", c.ID), goerr.V("weight", c.AuthorityWeight))
	}
	if c.Order < 0 {
		return goerr.New("chunk order must not be negative", goerr.V("id", c.ID))
	}
	return nil
}

// Clone returns a deep copy of the chunk
func (c *Chunk) Clone() *Chunk {
	copied := *c
	if c.Embedding != nil {
		copied.Embedding = make([]float32, len(c.Embedding))
		copy(copied.Embedding, c.Embedding)
	}
	return &copied
}

// Source is a document to be indexed, fetched from an external source
// store. AuthorityWeight is resolved from Kind by the store.
type Source struct {
	ID              string
	Namespace       types.Namespace
	Kind            types.SourceKind
	Body            string
	AuthorityWeight float64
}
