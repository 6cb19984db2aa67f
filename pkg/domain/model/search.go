package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/types"
)

// IndexResult summarizes one reindex run of a source. Degraded counts
// chunks persisted without an embedding due to provider failures.
type IndexResult struct {
	SourceID     string          `json:"source_id"`
	Namespace    types.Namespace `json:"namespace"`
	Total        int             `json:"total"`
	SummaryCount int             `json:"summary_count"`
	DetailCount  int             `json:"detail_count"`
	ChunkIDs     []ChunkID       `json:"chunk_ids"`
	Degraded     int             `json:"degraded,omitempty"`
}

// SearchFilter narrows a similarity search. Zero values mean "no
// filter"; MinSimilarity of 0 admits every candidate with a defined
// similarity.
type SearchFilter struct {
	Namespace     types.Namespace
	Level         types.ChunkLevel
	MinSimilarity float64
}

// Validate rejects malformed filter combinations before any store access
func (f *SearchFilter) Validate() error {
	if f.Namespace != "" && !f.Namespace.IsValid() {
		return goerr.New("unknown namespace filter", goerr.V("namespace", f.Namespace))
	}
	if f.Level != "" && !f.Level.IsValid() {
		return goerr.New("unknown level filter", goerr.V("level", f.Level))
	}
	if f.MinSimilarity < 0 || f.MinSimilarity > 1 {
		return goerr.New("min similarity must be in [0,1]",
			goerr.V("min_similarity", f.MinSimilarity))
	}
	return nil
}

// ChunkMatch is a chunk returned by the store's similarity search
// together with its cosine similarity to the query vector.
type ChunkMatch struct {
	Chunk      *Chunk
	Similarity float64
}

// ScoredChunk is a fully scored search result.
// WeightedScore = Similarity * AuthorityWeight + KeywordBonus.
type ScoredChunk struct {
	Chunk         *Chunk
	Similarity    float64
	KeywordBonus  float64
	WeightedScore float64

	// ParentContent carries the parent Summary's text when the caller
	// requested inline parent context. Empty otherwise.
	ParentContent string
}

// ChunkGroup is a context-reconstructed result: a Summary chunk with
// the scored matches that led to it and, optionally, its full set of
// Detail siblings.
type ChunkGroup struct {
	Parent   *Chunk
	Matches  []*ScoredChunk
	Siblings []*Chunk
	MaxScore float64
}

// RankComparison contrasts a weighted run against one with all
// authority weights forced to 1.0. A diagnostic, not a query path.
type RankComparison struct {
	Query                        string
	Weighted                     []*ScoredChunk
	Unweighted                   []*ScoredChunk
	HighAuthorityRanksWeighted   []int
	HighAuthorityRanksUnweighted []int
}
