// Package chunker splits documents into overlapping text windows for
// retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"

	"blogsearch/internal/domain"
)

// WordChunker accumulates whitespace-separated words into chunks bounded by
// a character budget. Each chunk after the first is seeded with the tail
// words of its predecessor so context survives chunk boundaries.
type WordChunker struct {
	chunkSize    int
	overlapChars int
}

// NewWordChunker creates a word chunker with the given character budget and
// overlap budget. Non-positive values fall back to the defaults (1000/200).
func NewWordChunker(chunkSize, overlapChars int) *WordChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlapChars < 0 {
		overlapChars = 200
	}
	return &WordChunker{chunkSize: chunkSize, overlapChars: overlapChars}
}

// Chunk splits the document's title and body into chunks. The overlap is
// approximated as overlapChars/10 words (~10 characters per word); chunk
// boundary expectations elsewhere depend on this approximation.
func (c *WordChunker) Chunk(doc domain.Document) []domain.Chunk {
	words := strings.Fields(doc.Title + "\n\n" + doc.Content)
	overlapWords := c.overlapChars / 10

	var chunks []domain.Chunk
	var current []string
	length := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word) + 1 // +1 for the joining space
		if length+wordLen > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, newChunk(doc, current))
			keep := overlapWords
			if keep > len(current) {
				keep = len(current)
			}
			current = append([]string(nil), current[len(current)-keep:]...)
			length = utf8.RuneCountInString(strings.Join(current, " "))
		}
		current = append(current, word)
		length += wordLen
	}
	if len(current) > 0 {
		chunks = append(chunks, newChunk(doc, current))
	}
	return chunks
}

func newChunk(doc domain.Document, words []string) domain.Chunk {
	return domain.Chunk{
		DocumentID:    doc.ID,
		DocumentTitle: doc.Title,
		Text:          strings.Join(words, " "),
	}
}
