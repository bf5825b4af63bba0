package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Document is a blog article held in the document store.
type Document struct {
	ID          int64
	Title       string
	Content     string
	Tags        string // comma-separated
	Embedding   Embedding
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Published reports whether the document is visible to readers.
func (d Document) Published() bool { return d.PublishedAt != nil }

// Searchable reports whether the document is eligible for semantic ranking:
// it must be published and carry a stored embedding vector.
func (d Document) Searchable() bool { return d.Published() && d.Embedding.Present }

// TagList splits the comma-separated tag field into trimmed, non-empty tags.
func (d Document) TagList() []string {
	parts := strings.Split(d.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// EmbeddingText is the canonical text a document's vector is computed from.
func (d Document) EmbeddingText() string {
	return d.Title + "\n\n" + d.Content + "\n\nTags: " + d.Tags
}

// Embedding is an explicit present-or-absent embedding vector. Two vectors
// are comparable only if both are present and of equal length.
type Embedding struct {
	Values  []float64
	Present bool
}

// NewEmbedding wraps a vector; an empty or nil vector is Absent.
func NewEmbedding(values []float64) Embedding {
	if len(values) == 0 {
		return Embedding{}
	}
	return Embedding{Values: values, Present: true}
}

// Score is the similarity attached to a ranked result. Keyword-fallback
// results carry no score and marshal as JSON null.
type Score struct {
	Value float64
	Valid bool
}

// SomeScore wraps a similarity value in a valid Score.
func SomeScore(v float64) Score { return Score{Value: v, Valid: true} }

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score{}
		return nil
	}
	if err := json.Unmarshal(data, &s.Value); err != nil {
		return err
	}
	s.Valid = true
	return nil
}

// Result is a ranked search hit. Results order descending by score, with
// unscored keyword matches after all scored ones.
type Result struct {
	Document Document
	Score    Score
}

// Chunk is an ephemeral text window cut from a document for retrieval.
// Chunks are produced fresh on every query and never persisted.
type Chunk struct {
	DocumentID    int64
	DocumentTitle string
	Text          string
}

// RankedChunk pairs a chunk with its similarity to the question.
type RankedChunk struct {
	Chunk
	Similarity float64
}

// Answer is the question-answering response envelope. Answer is nil when
// Success is false.
type Answer struct {
	Success bool     `json:"success"`
	Answer  *string  `json:"answer"`
	Error   string   `json:"error,omitempty"`
	Sources []Source `json:"sources"`
}

// Source attributes part of an answer to a document.
type Source struct {
	DocumentID int64  `json:"document_id"`
	Title      string `json:"document_title"`
	Similarity Score  `json:"similarity"`
	Excerpt    string `json:"excerpt"`
}
