package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogsearch/internal/domain"
)

// fakeStore serves a fixed document slice; only the read paths the searcher
// uses are implemented.
type fakeStore struct {
	docs []domain.Document
	err  error
}

func (f *fakeStore) Published(ctx context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func (f *fakeStore) PublishedByIDs(ctx context.Context, ids []int64) ([]domain.Document, error) {
	return nil, nil
}

func (f *fakeStore) PublishedMissingEmbedding(ctx context.Context) ([]domain.Document, error) {
	return nil, nil
}

func (f *fakeStore) Create(ctx context.Context, doc *domain.Document) error { return nil }

func (f *fakeStore) ByID(ctx context.Context, id int64) (domain.Document, error) {
	return domain.Document{}, domain.ErrNotFound
}

func (f *fakeStore) All(ctx context.Context) ([]domain.Document, error) { return f.docs, nil }

func (f *fakeStore) UpdateEmbedding(ctx context.Context, id int64, values []float64) error {
	return nil
}

// fakeEmbedder returns a canned vector, overridable per test.
type fakeEmbedder struct {
	vec   []float64
	err   error
	Fn    func(text string) ([]float64, error)
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.Fn != nil {
		return f.Fn(text)
	}
	return f.vec, f.err
}

func publishedDoc(id int64, title, content, tags string, vec []float64) domain.Document {
	now := time.Now().UTC()
	return domain.Document{
		ID:          id,
		Title:       title,
		Content:     content,
		Tags:        tags,
		Embedding:   domain.NewEmbedding(vec),
		PublishedAt: &now,
	}
}

func dockerCorpus() []domain.Document {
	return []domain.Document{
		publishedDoc(1, "Docker Basics", "Docker uses containers to isolate processes.", "docker", []float64{1, 0}),
	}
}

func TestSearchSemanticMatch(t *testing.T) {
	s := New(&fakeStore{docs: dockerCorpus()}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	results, err := s.Search(context.Background(), "What is Docker?", 5, 0.3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Document.ID)
	require.True(t, results[0].Score.Valid)
	assert.InDelta(t, 1.0, results[0].Score.Value, 1e-9)
}

func TestSearchEmbedderFailureFallsBackToKeyword(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("provider unavailable")}
	s := New(&fakeStore{docs: dockerCorpus()}, emb, zap.NewNop())

	results, err := s.Search(context.Background(), "Docker", 5, 0.3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Document.ID)
	assert.False(t, results[0].Score.Valid, "keyword fallback results are unscored")
}

func TestSearchUnreachableThresholdFallsBackToKeyword(t *testing.T) {
	s := New(&fakeStore{docs: dockerCorpus()}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	results, err := s.Search(context.Background(), "docker", 5, 1.1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Score.Valid)
}

func TestSearchNoMatchAtAllReturnsEmpty(t *testing.T) {
	s := New(&fakeStore{docs: dockerCorpus()}, &fakeEmbedder{vec: []float64{0, 1}}, zap.NewNop())

	results, err := s.Search(context.Background(), "unmatched-nonsense-token", 5, 0.9)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchBlankQuery(t *testing.T) {
	emb := &fakeEmbedder{vec: []float64{1, 0}}
	s := New(&fakeStore{docs: dockerCorpus()}, emb, zap.NewNop())

	results, err := s.Search(context.Background(), "   ", 5, 0.3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, emb.calls)
}

func TestSearchStoreError(t *testing.T) {
	s := New(&fakeStore{err: errors.New("disk gone")}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	_, err := s.Search(context.Background(), "docker", 5, 0.3)
	assert.Error(t, err)
}

func TestRankOrdersDescendingAndFillsWithKeyword(t *testing.T) {
	docs := []domain.Document{
		publishedDoc(1, "Close", "about docker", "", []float64{0.9, 0.1}),
		publishedDoc(2, "Closer", "about docker", "", []float64{1, 0}),
		publishedDoc(3, "Docker keyword only", "docker docker docker", "", nil),
	}
	s := New(&fakeStore{docs: docs}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	results := s.Rank(context.Background(), "docker", docs, 3, 0.3)
	require.Len(t, results, 3)
	assert.Equal(t, int64(2), results[0].Document.ID)
	assert.Equal(t, int64(1), results[1].Document.ID)
	assert.True(t, results[0].Score.Value > results[1].Score.Value)
	// semantic shortfall filled by the keyword pool, unscored, after all
	// scored results
	assert.Equal(t, int64(3), results[2].Document.ID)
	assert.False(t, results[2].Score.Valid)
}

func TestRankKeywordFillSkipsDuplicates(t *testing.T) {
	docs := []domain.Document{
		publishedDoc(1, "Docker Basics", "docker", "", []float64{1, 0}),
		publishedDoc(2, "Docker Advanced", "docker", "", nil),
	}
	s := New(&fakeStore{docs: docs}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	results := s.Rank(context.Background(), "docker", docs, 5, 0.3)
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Document.ID)
	assert.Equal(t, int64(2), results[1].Document.ID)
}

func TestRankSkipsDocumentsWithoutUsableVector(t *testing.T) {
	docs := []domain.Document{
		publishedDoc(1, "No vector", "nothing in common", "", nil),
		publishedDoc(2, "Has vector", "nothing in common", "", []float64{1, 0}),
	}
	s := New(&fakeStore{docs: docs}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	results := s.Rank(context.Background(), "zzz", docs, 5, 0.3)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].Document.ID)
}

func TestRankIdempotent(t *testing.T) {
	docs := []domain.Document{
		publishedDoc(1, "A", "docker", "", []float64{1, 0}),
		publishedDoc(2, "B", "docker", "", []float64{0.5, 0.5}),
		publishedDoc(3, "C", "docker", "", nil),
	}
	s := New(&fakeStore{docs: docs}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	first := s.Rank(context.Background(), "docker", docs, 3, 0.3)
	second := s.Rank(context.Background(), "docker", docs, 3, 0.3)
	assert.Equal(t, first, second)
}

func TestRelatedExcludesSelf(t *testing.T) {
	docs := []domain.Document{
		publishedDoc(1, "Docker Basics", "containers", "", []float64{1, 0}),
		publishedDoc(2, "Docker Compose", "containers", "", []float64{0.9, 0.1}),
		publishedDoc(3, "Unrelated", "gardening", "", []float64{0, 1}),
	}
	s := New(&fakeStore{docs: docs}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	results, err := s.Related(context.Background(), docs[0], 5, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].Document.ID)
}

func TestRelatedWithoutEmbeddingIsEmpty(t *testing.T) {
	docs := dockerCorpus()
	s := New(&fakeStore{docs: docs}, &fakeEmbedder{vec: []float64{1, 0}}, zap.NewNop())

	source := publishedDoc(9, "New Draft", "containers", "", nil)
	results, err := s.Related(context.Background(), source, 5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
