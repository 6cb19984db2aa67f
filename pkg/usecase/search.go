package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/equitylens/strata/pkg/domain/model"
	"github.com/equitylens/strata/pkg/domain/types"
	"github.com/equitylens/strata/pkg/utils/logging"
)

const (
	// DefaultSearchLimit is applied when a search input has no limit
	DefaultSearchLimit = 10

	// DefaultKeywordBonusWeight is the standard maximum keyword bonus.
	// Small relative to the similarity term so lexical overlap breaks
	// ties without overriding semantics.
	DefaultKeywordBonusWeight = 0.1

	// HighAuthorityThreshold classifies a chunk as primary-source
	// material in rank comparisons
	HighAuthorityThreshold = 0.85

	// candidateOversample widens the vector search beyond the requested
	// limit so authority weighting has candidates to promote
	candidateOversample = 4

	// contextOversample widens a context search so enough distinct
	// parents surface among the raw matches
	contextOversample = 5

	// contextMinSimilarity floors candidate similarity in context
	// searches, keeping barely related parents out of reconstruction
	contextMinSimilarity = 0.1
)

// SearchInput describes one weighted search. KeywordBonusWeight is used
// as given; callers wanting the standard bonus pass
// DefaultKeywordBonusWeight, zero disables the bonus entirely.
type SearchInput struct {
	Query              string
	Limit              int
	Namespace          types.Namespace
	Level              types.ChunkLevel
	MinSimilarity      float64
	KeywordBonusWeight float64
}

func (in *SearchInput) validate() error {
	if strings.TrimSpace(in.Query) == "" {
		return goerr.Wrap(ErrEmptyQuery, "cannot search")
	}
	if in.Limit < 0 {
		return goerr.Wrap(ErrInvalidLimit, "cannot search", goerr.V("limit", in.Limit))
	}
	if in.KeywordBonusWeight < 0 || in.KeywordBonusWeight > 1 {
		return goerr.Wrap(ErrInvalidBonus, "cannot search",
			goerr.V("keyword_bonus_weight", in.KeywordBonusWeight))
	}
	if err := in.filter().Validate(); err != nil {
		return goerr.Wrap(ErrInvalidFilter, err.Error())
	}
	return nil
}

func (in *SearchInput) filter() *model.SearchFilter {
	return &model.SearchFilter{
		Namespace:     in.Namespace,
		Level:         in.Level,
		MinSimilarity: in.MinSimilarity,
	}
}

func (in *SearchInput) limitOrDefault() int {
	if in.Limit == 0 {
		return DefaultSearchLimit
	}
	return in.Limit
}

// Search runs an authority-weighted similarity search. Each result is
// scored as similarity * authority_weight + keyword_bonus. A query
// embedding failure degrades to an empty result set rather than an
// error, since the store is healthy and retrying is up to the caller.
func (uc *UseCases) Search(ctx context.Context, input *SearchInput) ([]*model.ScoredChunk, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	embedding, ok := uc.embedQuery(ctx, input.Query)
	if !ok {
		return []*model.ScoredChunk{}, nil
	}

	return uc.searchScored(ctx, embedding, input)
}

func (uc *UseCases) embedQuery(ctx context.Context, query string) ([]float32, bool) {
	vectors, err := uc.embedder.Embed(ctx, []string{query})
	if err != nil {
		logging.From(ctx).Warn("failed to embed query, returning no results",
			"error", err.Error())
		return nil, false
	}
	return vectors[0], true
}

func (uc *UseCases) searchScored(ctx context.Context, embedding []float32, input *SearchInput) ([]*model.ScoredChunk, error) {
	limit := input.limitOrDefault()

	matches, err := uc.repo.Chunk().SimilaritySearch(ctx, embedding, input.filter(), limit*candidateOversample)
	if err != nil {
		return nil, goerr.Wrap(err, "similarity search failed", goerr.V("query", input.Query))
	}

	parentContents := make(map[model.ChunkID]string)
	scored := make([]*model.ScoredChunk, 0, len(matches))
	for _, m := range matches {
		bonus := keywordBonus(input.Query, m.Chunk.Content, input.KeywordBonusWeight)
		sc := &model.ScoredChunk{
			Chunk:         m.Chunk,
			Similarity:    m.Similarity,
			KeywordBonus:  bonus,
			WeightedScore: m.Similarity*m.Chunk.AuthorityWeight + bonus,
		}
		if m.Chunk.ParentID != "" {
			sc.ParentContent = uc.parentContent(ctx, m.Chunk.ParentID, parentContents)
		}
		scored = append(scored, sc)
	}

	sortScored(scored)

	if limit < len(scored) {
		scored = scored[:limit]
	}

	logging.From(ctx).Info("weighted search completed",
		"query", input.Query, "results", len(scored))

	return scored, nil
}

// searchSimilarityOnly ranks by raw similarity, ignoring authority
// weights and keyword bonus. Used as the comparison baseline.
func (uc *UseCases) searchSimilarityOnly(ctx context.Context, embedding []float32, input *SearchInput) ([]*model.ScoredChunk, error) {
	limit := input.limitOrDefault()

	matches, err := uc.repo.Chunk().SimilaritySearch(ctx, embedding, input.filter(), limit)
	if err != nil {
		return nil, goerr.Wrap(err, "similarity search failed", goerr.V("query", input.Query))
	}

	scored := make([]*model.ScoredChunk, 0, len(matches))
	for _, m := range matches {
		scored = append(scored, &model.ScoredChunk{
			Chunk:         m.Chunk,
			Similarity:    m.Similarity,
			WeightedScore: m.Similarity,
		})
	}

	sortScored(scored)

	return scored, nil
}

func (uc *UseCases) parentContent(ctx context.Context, parentID model.ChunkID, cache map[model.ChunkID]string) string {
	if content, ok := cache[parentID]; ok {
		return content
	}

	parent, err := uc.repo.Chunk().Get(ctx, parentID)
	if err != nil {
		logging.From(ctx).Warn("failed to resolve parent content",
			"parent_id", parentID, "error", err.Error())
		cache[parentID] = ""
		return ""
	}

	cache[parentID] = parent.Content
	return parent.Content
}

// sortScored orders by weighted score desc, breaking ties by similarity
// desc and then chunk order asc so results are deterministic.
func sortScored(scored []*model.ScoredChunk) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].WeightedScore != scored[j].WeightedScore {
			return scored[i].WeightedScore > scored[j].WeightedScore
		}
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Chunk.Order < scored[j].Chunk.Order
	})
}

// keywordBonus rewards lexical overlap between query and content. An
// exact phrase match earns the full weight; otherwise the bonus scales
// with the fraction of query words present in the content.
func keywordBonus(query, content string, weight float64) float64 {
	if weight <= 0 {
		return 0
	}

	queryLower := strings.ToLower(query)
	contentLower := strings.ToLower(content)

	if strings.Contains(contentLower, queryLower) {
		return weight
	}

	queryWords := strings.Fields(queryLower)
	if len(queryWords) == 0 {
		return 0
	}

	contentWords := make(map[string]struct{})
	for _, w := range strings.Fields(contentLower) {
		contentWords[w] = struct{}{}
	}

	matched := 0
	seen := make(map[string]struct{})
	for _, w := range queryWords {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := contentWords[w]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(seen)) * weight
}

// SearchWithContext searches and reconstructs results around their
// Summary parents: raw matches are grouped by effective parent, each
// group scored by its best match, and optionally expanded with the
// parent's full set of Detail siblings.
func (uc *UseCases) SearchWithContext(ctx context.Context, input *SearchInput, includeSiblings bool) ([]*model.ChunkGroup, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	limit := input.limitOrDefault()

	inner := *input
	inner.Limit = limit * contextOversample
	if inner.MinSimilarity < contextMinSimilarity {
		inner.MinSimilarity = contextMinSimilarity
	}

	embedding, ok := uc.embedQuery(ctx, input.Query)
	if !ok {
		return []*model.ChunkGroup{}, nil
	}

	results, err := uc.searchScored(ctx, embedding, &inner)
	if err != nil {
		return nil, err
	}

	groups := make(map[model.ChunkID]*model.ChunkGroup)
	var ordered []*model.ChunkGroup

	for _, r := range results {
		parentID := r.Chunk.ID
		if r.Chunk.Level == types.LevelDetail {
			parentID = r.Chunk.ParentID
		}

		group, ok := groups[parentID]
		if !ok {
			parent := r.Chunk
			if r.Chunk.Level == types.LevelDetail {
				parent, err = uc.repo.Chunk().Get(ctx, parentID)
				if err != nil {
					logging.From(ctx).Warn("skipping match with unresolvable parent",
						"chunk_id", r.Chunk.ID, "parent_id", parentID, "error", err.Error())
					continue
				}
			}
			group = &model.ChunkGroup{Parent: parent}
			groups[parentID] = group
			ordered = append(ordered, group)
		}

		group.Matches = append(group.Matches, r)
		if r.WeightedScore > group.MaxScore {
			group.MaxScore = r.WeightedScore
		}
	}

	if includeSiblings {
		for _, group := range ordered {
			matched := make(map[model.ChunkID]struct{}, len(group.Matches))
			for _, m := range group.Matches {
				matched[m.Chunk.ID] = struct{}{}
			}

			children, err := uc.repo.Chunk().GetChildren(ctx, group.Parent.ID)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to expand siblings",
					goerr.V("parent_id", group.Parent.ID))
			}
			for _, child := range children {
				if _, ok := matched[child.ID]; ok {
					continue
				}
				group.Siblings = append(group.Siblings, child)
			}
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].MaxScore != ordered[j].MaxScore {
			return ordered[i].MaxScore > ordered[j].MaxScore
		}
		return ordered[i].Parent.Order < ordered[j].Parent.Order
	})

	if limit < len(ordered) {
		ordered = ordered[:limit]
	}

	return ordered, nil
}

// CompareRanking runs the same query with and without authority
// weighting and reports where high-authority chunks land in each
// ranking. A diagnostic for tuning weights, not a query path.
func (uc *UseCases) CompareRanking(ctx context.Context, input *SearchInput) (*model.RankComparison, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	cmp := &model.RankComparison{
		Query:                        input.Query,
		Weighted:                     []*model.ScoredChunk{},
		Unweighted:                   []*model.ScoredChunk{},
		HighAuthorityRanksWeighted:   []int{},
		HighAuthorityRanksUnweighted: []int{},
	}

	embedding, ok := uc.embedQuery(ctx, input.Query)
	if !ok {
		return cmp, nil
	}

	weighted, err := uc.searchScored(ctx, embedding, input)
	if err != nil {
		return nil, err
	}
	unweighted, err := uc.searchSimilarityOnly(ctx, embedding, input)
	if err != nil {
		return nil, err
	}

	cmp.Weighted = weighted
	cmp.Unweighted = unweighted
	cmp.HighAuthorityRanksWeighted = highAuthorityRanks(weighted)
	cmp.HighAuthorityRanksUnweighted = highAuthorityRanks(unweighted)

	return cmp, nil
}

func highAuthorityRanks(results []*model.ScoredChunk) []int {
	ranks := []int{}
	for i, r := range results {
		if r.Chunk.AuthorityWeight >= HighAuthorityThreshold {
			ranks = append(ranks, i)
		}
	}
	return ranks
}
