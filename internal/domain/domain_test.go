package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentPublished(t *testing.T) {
	now := time.Now()
	assert.False(t, Document{}.Published())
	assert.True(t, Document{PublishedAt: &now}.Published())
}

func TestDocumentSearchable(t *testing.T) {
	now := time.Now()
	emb := NewEmbedding([]float64{1, 2})

	assert.False(t, Document{}.Searchable())
	assert.False(t, Document{PublishedAt: &now}.Searchable())
	assert.False(t, Document{Embedding: emb}.Searchable())
	assert.True(t, Document{PublishedAt: &now, Embedding: emb}.Searchable())
}

func TestDocumentTagList(t *testing.T) {
	doc := Document{Tags: "go, docker , ,testing"}
	assert.Equal(t, []string{"go", "docker", "testing"}, doc.TagList())
	assert.Empty(t, Document{}.TagList())
}

func TestDocumentEmbeddingText(t *testing.T) {
	doc := Document{Title: "T", Content: "C", Tags: "a, b"}
	assert.Equal(t, "T\n\nC\n\nTags: a, b", doc.EmbeddingText())
}

func TestNewEmbedding(t *testing.T) {
	assert.False(t, NewEmbedding(nil).Present)
	assert.False(t, NewEmbedding([]float64{}).Present)

	e := NewEmbedding([]float64{0.5})
	assert.True(t, e.Present)
	assert.Equal(t, []float64{0.5}, e.Values)
}

func TestScoreJSON(t *testing.T) {
	data, err := json.Marshal(SomeScore(0.75))
	require.NoError(t, err)
	assert.Equal(t, "0.75", string(data))

	data, err = json.Marshal(Score{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var s Score
	require.NoError(t, json.Unmarshal([]byte("null"), &s))
	assert.False(t, s.Valid)

	require.NoError(t, json.Unmarshal([]byte("0.25"), &s))
	assert.True(t, s.Valid)
	assert.Equal(t, 0.25, s.Value)
}

func TestAnswerJSONShape(t *testing.T) {
	answer := "because"
	data, err := json.Marshal(Answer{
		Success: true,
		Answer:  &answer,
		Sources: []Source{{DocumentID: 3, Title: "T", Similarity: SomeScore(0.9), Excerpt: "e..."}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"answer": "because",
		"sources": [{"document_id": 3, "document_title": "T", "similarity": 0.9, "excerpt": "e..."}]
	}`, string(data))

	data, err = json.Marshal(Answer{Success: false, Error: "No articles found", Sources: []Source{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "answer": null, "error": "No articles found", "sources": []}`, string(data))
}
