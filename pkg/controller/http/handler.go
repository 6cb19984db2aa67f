package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/repository/firestore"
	"github.com/equitylens/strata/pkg/service/source"
	"github.com/equitylens/strata/pkg/usecase"
	"github.com/equitylens/strata/pkg/utils/errutil"
)

type searchRequest struct {
	Query         string  `json:"query"`
	Limit         int     `json:"limit,omitempty"`
	Namespace     string  `json:"namespace,omitempty"`
	Level         string  `json:"level,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"`

	// nil means the default bonus weight; an explicit 0 disables the bonus
	KeywordBonusWeight *float64 `json:"keyword_bonus_weight,omitempty"`
}

func (req *searchRequest) toInput() *usecase.SearchInput {
	input := &usecase.SearchInput{
		Query:              req.Query,
		Limit:              req.Limit,
		Namespace:          types.Namespace(req.Namespace),
		Level:              types.ChunkLevel(req.Level),
		MinSimilarity:      req.MinSimilarity,
		KeywordBonusWeight: usecase.DefaultKeywordBonusWeight,
	}
	if req.KeywordBonusWeight != nil {
		input.KeywordBonusWeight = *req.KeywordBonusWeight
	}
	return input
}

type chunkResponse struct {
	ID              string  `json:"id"`
	SourceID        string  `json:"source_id"`
	Namespace       string  `json:"namespace"`
	Content         string  `json:"content"`
	AuthorityWeight float64 `json:"authority_weight"`
	Level           string  `json:"level"`
	Order           int     `json:"order"`
	ParentID        string  `json:"parent_id,omitempty"`
}

type scoredChunkResponse struct {
	chunkResponse
	Similarity    float64 `json:"similarity"`
	KeywordBonus  float64 `json:"keyword_bonus"`
	WeightedScore float64 `json:"weighted_score"`
	ParentContent string  `json:"parent_content,omitempty"`
}

func toChunkResponse(c *model.Chunk) chunkResponse {
	return chunkResponse{
		ID:              string(c.ID),
		SourceID:        c.SourceID,
		Namespace:       string(c.Namespace),
		Content:         c.Content,
		AuthorityWeight: c.AuthorityWeight,
		Level:           string(c.Level),
		Order:           c.Order,
		ParentID:        string(c.ParentID),
	}
}

func toScoredChunkResponse(sc *model.ScoredChunk) scoredChunkResponse {
	return scoredChunkResponse{
		chunkResponse: toChunkResponse(sc.Chunk),
		Similarity:    sc.Similarity,
		KeywordBonus:  sc.KeywordBonus,
		WeightedScore: sc.WeightedScore,
		ParentContent: sc.ParentContent,
	}
}

func toScoredChunkResponses(scored []*model.ScoredChunk) []scoredChunkResponse {
	out := make([]scoredChunkResponse, len(scored))
	for i, sc := range scored {
		out[i] = toScoredChunkResponse(sc)
	}
	return out
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	results, err := s.uc.Search(ctx, req.toInput())
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	writeJSON(w, r, map[string]any{
		"results": toScoredChunkResponses(results),
	})
}

func (s *Server) searchContextHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		searchRequest
		// nil means siblings are included
		IncludeSiblings *bool `json:"include_siblings,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	includeSiblings := true
	if req.IncludeSiblings != nil {
		includeSiblings = *req.IncludeSiblings
	}

	groups, err := s.uc.SearchWithContext(ctx, req.toInput(), includeSiblings)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	type groupResponse struct {
		Parent   chunkResponse         `json:"parent"`
		Matches  []scoredChunkResponse `json:"matches"`
		Siblings []chunkResponse       `json:"siblings"`
		MaxScore float64               `json:"max_score"`
	}

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		gr := groupResponse{
			Parent:   toChunkResponse(g.Parent),
			Matches:  toScoredChunkResponses(g.Matches),
			Siblings: make([]chunkResponse, len(g.Siblings)),
			MaxScore: g.MaxScore,
		}
		for j, sib := range g.Siblings {
			gr.Siblings[j] = toChunkResponse(sib)
		}
		out[i] = gr
	}

	writeJSON(w, r, map[string]any{
		"groups": out,
	})
}

func (s *Server) searchCompareHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	cmp, err := s.uc.CompareRanking(ctx, req.toInput())
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	writeJSON(w, r, map[string]any{
		"query":      cmp.Query,
		"weighted":   toScoredChunkResponses(cmp.Weighted),
		"unweighted": toScoredChunkResponses(cmp.Unweighted),
		"high_authority_ranks": map[string]any{
			"weighted":   cmp.HighAuthorityRanksWeighted,
			"unweighted": cmp.HighAuthorityRanksUnweighted,
		},
	})
}

func (s *Server) reindexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	namespace, err := types.ParseNamespace(chi.URLParam(r, "namespace"))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}
	sourceID := chi.URLParam(r, "sourceID")

	result, err := s.uc.Reindex(ctx, namespace, sourceID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	writeJSON(w, r, result)
}

// statusFor maps use case errors to HTTP status codes: validation
// failures are the client's fault, a missing source is 404, a transient
// store outage is 503 so clients retry, anything else is a server-side
// failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyQuery),
		errors.Is(err, usecase.ErrInvalidNamespace),
		errors.Is(err, usecase.ErrEmptySourceID),
		errors.Is(err, usecase.ErrInvalidLimit),
		errors.Is(err, usecase.ErrInvalidBonus),
		errors.Is(err, usecase.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, firestore.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck // header already committed
}
