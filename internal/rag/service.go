// Package rag implements retrieval-augmented question answering over the
// published article corpus: chunk the in-scope documents, rank the chunks
// against the question, and condition the generative model on the winners.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"blogsearch/internal/domain"
	"blogsearch/internal/similarity"
)

const (
	failedAnswer = "Failed to generate answer from AI."
	emptyAnswer  = "I couldn't generate an answer."
)

// Options bound the question-answering pipeline.
type Options struct {
	TopChunks       int
	Temperature     float64
	MaxOutputTokens int
}

// Service is the question-answering orchestrator.
type Service struct {
	store     domain.Store
	embedder  domain.Embedder
	generator domain.Generator
	chunker   domain.Chunker
	log       *zap.Logger
	opts      Options
}

// New creates a Service. Zero option fields fall back to top 5 chunks,
// temperature 0.3, and 1024 output tokens.
func New(store domain.Store, embedder domain.Embedder, generator domain.Generator, chunker domain.Chunker, log *zap.Logger, opts Options) *Service {
	if opts.TopChunks <= 0 {
		opts.TopChunks = 5
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.3
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 1024
	}
	return &Service{
		store:     store,
		embedder:  embedder,
		generator: generator,
		chunker:   chunker,
		log:       log,
		opts:      opts,
	}
}

// Ask answers a question from the published corpus, optionally narrowed to
// specific document ids. It never returns a Go error: failures are reported
// inside the answer envelope with a human-readable message.
func (s *Service) Ask(ctx context.Context, question string, ids []int64) domain.Answer {
	docs, err := s.scope(ctx, ids)
	if err != nil {
		s.log.Error("loading article scope failed", zap.Error(err))
		return errorAnswer("Failed to generate answer: " + err.Error())
	}
	if len(docs) == 0 {
		return errorAnswer("No articles found")
	}

	chunks := s.retrieveRelevantChunks(ctx, question, docs)
	if len(chunks) == 0 {
		return errorAnswer("No relevant content found")
	}

	answer := s.generateAnswer(ctx, question, chunks)
	return successAnswer(answer, chunks)
}

func (s *Service) scope(ctx context.Context, ids []int64) ([]domain.Document, error) {
	if len(ids) > 0 {
		return s.store.PublishedByIDs(ctx, ids)
	}
	return s.store.Published(ctx)
}

// retrieveRelevantChunks chunks every in-scope document, embeds the question
// and then each chunk strictly sequentially, and keeps the top chunks by
// similarity. A chunk whose embedding fails is skipped; a question whose
// embedding fails leaves nothing to rank.
func (s *Service) retrieveRelevantChunks(ctx context.Context, question string, docs []domain.Document) []domain.RankedChunk {
	questionVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		s.log.Warn("question embedding unavailable", zap.Error(err))
		return nil
	}

	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.chunker.Chunk(doc)...)
	}
	s.log.Info("chunked question scope",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)))

	var scored []domain.RankedChunk
	for _, ch := range chunks {
		vec, err := s.embedder.Embed(ctx, ch.Text)
		if err != nil {
			s.log.Warn("skipping chunk: embedding failed",
				zap.Int64("document_id", ch.DocumentID),
				zap.Error(err))
			continue
		}
		scored = append(scored, domain.RankedChunk{
			Chunk:      ch,
			Similarity: similarity.Cosine(questionVec, vec),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > s.opts.TopChunks {
		scored = scored[:s.opts.TopChunks]
	}
	return scored
}

// generateAnswer calls the generative model once. Provider failure yields a
// fixed failure string rather than an error; the retrieved sources are still
// worth returning.
func (s *Service) generateAnswer(ctx context.Context, question string, chunks []domain.RankedChunk) string {
	prompt := buildPrompt(question, chunks)
	text, err := s.generator.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature:     s.opts.Temperature,
		MaxOutputTokens: s.opts.MaxOutputTokens,
	})
	if err != nil {
		s.log.Error("answer generation failed", zap.Error(err))
		return failedAnswer
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyAnswer
	}
	return text
}

func buildPrompt(question string, chunks []domain.RankedChunk) string {
	blocks := make([]string, len(chunks))
	for i, ch := range chunks {
		blocks[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, ch.DocumentTitle, ch.Text)
	}
	contextBlock := strings.Join(blocks, "\n\n---\n\n")

	return fmt.Sprintf(`You are a helpful programming assistant. Answer the question based ONLY on the provided context from programming articles.

Context (from retrieved articles):

%s

Question: %s

Instructions:
1. Answer the question using information from the context above
2. If the context doesn't contain enough information, say "Based on the provided articles, I don't have enough information to answer this question fully."
3. Cite which source(s) you used (e.g., "According to Source 1...")
4. Be concise but thorough
5. Use code examples from the context if relevant
6. DO NOT make up information not in the context

Answer:`, contextBlock, question)
}

func successAnswer(answer string, chunks []domain.RankedChunk) domain.Answer {
	sources := make([]domain.Source, 0, len(chunks))
	for _, ch := range chunks {
		sources = append(sources, domain.Source{
			DocumentID: ch.DocumentID,
			Title:      ch.DocumentTitle,
			Similarity: domain.SomeScore(ch.Similarity),
			Excerpt:    excerpt(ch.Text, 200),
		})
	}
	return domain.Answer{Success: true, Answer: &answer, Sources: sources}
}

func errorAnswer(message string) domain.Answer {
	return domain.Answer{Success: false, Error: message, Sources: []domain.Source{}}
}

func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
