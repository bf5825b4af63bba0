// Package writer drafts new blog articles with the generative model.
package writer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogsearch/internal/domain"
)

// Writer generates article bodies for a title and optional description/tags.
type Writer struct {
	generator domain.Generator
}

// New creates a Writer over the given generator.
func New(generator domain.Generator) *Writer {
	return &Writer{generator: generator}
}

// GenerateArticle asks the model for a markdown article and returns it as an
// unsaved document. The caller decides publication and persistence.
func (w *Writer) GenerateArticle(ctx context.Context, title, description, tags string) (domain.Document, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Document{}, errors.New("writer: title is required")
	}
	text, err := w.generator.Generate(ctx, buildArticlePrompt(title, description, tags), domain.GenerateOptions{
		Temperature:     0.7,
		MaxOutputTokens: 2048,
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("writer: generate article: %w", err)
	}
	content := strings.TrimSpace(text)
	if content == "" {
		return domain.Document{}, errors.New("writer: model returned an empty article")
	}
	return domain.Document{Title: title, Content: content, Tags: tags}, nil
}

func buildArticlePrompt(title, description, tags string) string {
	var b strings.Builder
	b.WriteString("Write a comprehensive, well-structured programming blog article with the following details:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	if description != "" {
		fmt.Fprintf(&b, "\nDescription/Context: %s", description)
	}
	if tags != "" {
		fmt.Fprintf(&b, "\nTags/Topics: %s", tags)
	}
	b.WriteString(`

Requirements:
- Write in markdown format
- Include clear sections with headers (##, ###)
- Provide code examples where relevant using proper markdown code blocks
- Make it educational, engaging, and practical
- Target intermediate-level programmers
- Length: 800-1200 words
- Include an introduction and conclusion
- Use real-world examples and best practices
- Be technically accurate and up-to-date

Write the article now:`)
	return b.String()
}
