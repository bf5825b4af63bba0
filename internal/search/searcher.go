// Package search ranks documents against a query by embedding similarity,
// degrading to keyword matching when the semantic signal is missing or thin.
package search

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"blogsearch/internal/domain"
	"blogsearch/internal/similarity"
)

// DefaultLimit is used when a caller passes a non-positive result limit.
const DefaultLimit = 10

// Searcher ranks published documents for a query.
type Searcher struct {
	store    domain.Store
	embedder domain.Embedder
	log      *zap.Logger
}

// New creates a Searcher over the given store and embedder.
func New(store domain.Store, embedder domain.Embedder, log *zap.Logger) *Searcher {
	return &Searcher{store: store, embedder: embedder, log: log}
}

// Search ranks all published documents against the query. A blank query
// returns no results.
func (s *Searcher) Search(ctx context.Context, query string, limit int, minSimilarity float64) ([]domain.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	docs, err := s.store.Published(ctx)
	if err != nil {
		return nil, err
	}
	return s.Rank(ctx, query, docs, limit, minSimilarity), nil
}

// Related ranks the published corpus against the document's own title and
// body, excluding the document itself. A document without a stored embedding
// has no semantic neighborhood and yields no results.
func (s *Searcher) Related(ctx context.Context, doc domain.Document, limit int, minSimilarity float64) ([]domain.Result, error) {
	if !doc.Embedding.Present {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	docs, err := s.store.Published(ctx)
	if err != nil {
		return nil, err
	}
	ranked := s.Rank(ctx, doc.Title+"\n\n"+doc.Content, docs, limit+1, minSimilarity)
	results := make([]domain.Result, 0, limit)
	for _, r := range ranked {
		if r.Document.ID == doc.ID {
			continue
		}
		results = append(results, r)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// Rank orders candidates by cosine similarity between the query embedding
// and each candidate's stored vector, keeping scores at or above
// minSimilarity. Candidates without a usable vector are skipped. When the
// semantic pass yields fewer than limit results — including when the query
// embedding itself is unavailable — keyword matches fill the remainder,
// unscored. Rank never fails: absence of semantic signal degrades to
// keyword search.
func (s *Searcher) Rank(ctx context.Context, query string, candidates []domain.Document, limit int, minSimilarity float64) []domain.Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("semantic search fallback: query embedding unavailable",
			zap.String("query", query),
			zap.Error(err))
		return s.keywordSearch(query, candidates, limit)
	}

	var ranked []domain.Result
	for _, doc := range candidates {
		if !doc.Searchable() {
			continue
		}
		score := similarity.Cosine(queryVec, doc.Embedding.Values)
		if score >= minSimilarity {
			ranked = append(ranked, domain.Result{Document: doc, Score: domain.SomeScore(score)})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Value > ranked[j].Score.Value
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == limit {
		return ranked
	}

	for _, fb := range s.keywordSearch(query, candidates, 2*limit) {
		if len(ranked) == limit {
			break
		}
		if containsDocument(ranked, fb.Document.ID) {
			continue
		}
		ranked = append(ranked, fb)
	}
	return ranked
}

// keywordSearch is the unscored fallback: a case-insensitive substring match
// over title, tags, and body.
func (s *Searcher) keywordSearch(query string, candidates []domain.Document, limit int) []domain.Result {
	pattern := strings.ToLower(strings.TrimSpace(query))
	if pattern == "" {
		return nil
	}
	var results []domain.Result
	for _, doc := range candidates {
		if !doc.Published() {
			continue
		}
		if strings.Contains(strings.ToLower(doc.Title), pattern) ||
			strings.Contains(strings.ToLower(doc.Tags), pattern) ||
			strings.Contains(strings.ToLower(doc.Content), pattern) {
			results = append(results, domain.Result{Document: doc})
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

func containsDocument(results []domain.Result, id int64) bool {
	for _, r := range results {
		if r.Document.ID == id {
			return true
		}
	}
	return false
}
