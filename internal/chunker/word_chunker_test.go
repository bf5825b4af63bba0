package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsearch/internal/domain"
)

func TestChunkShortDocumentYieldsOneChunk(t *testing.T) {
	doc := domain.Document{
		ID:      1,
		Title:   "Docker Basics",
		Content: "Docker uses containers to isolate processes.",
	}
	chunks := NewWordChunker(1000, 200).Chunk(doc)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Docker Basics Docker uses containers to isolate processes.", chunks[0].Text)
	assert.Equal(t, int64(1), chunks[0].DocumentID)
	assert.Equal(t, "Docker Basics", chunks[0].DocumentTitle)
}

func TestChunkLongDocumentOverlaps(t *testing.T) {
	words := make([]string, 400)
	for i := range words {
		words[i] = fmt.Sprintf("word%03d", i)
	}
	doc := domain.Document{ID: 7, Title: "Long", Content: strings.Join(words, " ")}

	chunks := NewWordChunker(1000, 200).Chunk(doc)
	require.GreaterOrEqual(t, len(chunks), 2)

	// every chunk after the first starts with the last 20 words (200/10) of
	// its predecessor
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		require.GreaterOrEqual(t, len(prev), 20)
		overlap := strings.Join(prev[len(prev)-20:], " ")
		assert.True(t, strings.HasPrefix(chunks[i].Text, overlap),
			"chunk %d does not start with its predecessor's tail", i)
	}
}

func TestChunkRespectsBudget(t *testing.T) {
	words := make([]string, 500)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	doc := domain.Document{Title: "Budget", Content: strings.Join(words, " ")}

	for _, ch := range NewWordChunker(300, 100).Chunk(doc) {
		assert.LessOrEqual(t, len(ch.Text), 300, "chunk exceeds budget")
	}
}

func TestChunkFinalPartialChunkEmitted(t *testing.T) {
	words := make([]string, 130)
	for i := range words {
		words[i] = fmt.Sprintf("word%03d", i) // 7 chars + joining space
	}
	doc := domain.Document{Title: "", Content: strings.Join(words, " ")}

	chunks := NewWordChunker(1000, 200).Chunk(doc)
	require.Len(t, chunks, 2)

	all := strings.Fields(chunks[len(chunks)-1].Text)
	assert.Equal(t, "word129", all[len(all)-1])
}

func TestChunkEmptyDocument(t *testing.T) {
	chunks := NewWordChunker(1000, 200).Chunk(domain.Document{})
	assert.Empty(t, chunks)
}

func TestChunkDefaults(t *testing.T) {
	c := NewWordChunker(0, -1)
	assert.Equal(t, 1000, c.chunkSize)
	assert.Equal(t, 200, c.overlapChars)
}
