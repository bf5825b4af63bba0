package domain

import "context"

// Embedder converts free text into a fixed-length numeric vector.
// A blank input fails without a provider call.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// GenerateOptions bound the sampling behavior of a Generator call.
type GenerateOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Chunker splits a document into overlapping text windows.
type Chunker interface {
	Chunk(doc Document) []Chunk
}

// Store persists documents and their embedding vectors.
type Store interface {
	Create(ctx context.Context, doc *Document) error
	ByID(ctx context.Context, id int64) (Document, error)
	All(ctx context.Context) ([]Document, error)
	Published(ctx context.Context) ([]Document, error)
	PublishedByIDs(ctx context.Context, ids []int64) ([]Document, error)
	PublishedMissingEmbedding(ctx context.Context) ([]Document, error)
	UpdateEmbedding(ctx context.Context, id int64, values []float64) error
}
