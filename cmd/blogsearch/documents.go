package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blogsearch/internal/domain"
)

func newImportCmd() *cobra.Command {
	var draft bool
	cmd := &cobra.Command{
		Use:   "import <file.txt> [file.txt ...]",
		Short: "Import articles from text files with optional Title:/Tags: header lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			for i, path := range args {
				doc, err := readArticleFile(path, i+1)
				if err != nil {
					return err
				}
				if !draft {
					now := time.Now().UTC()
					doc.PublishedAt = &now
				}
				if err := a.store.Create(ctx, &doc); err != nil {
					return err
				}
				fmt.Printf("Created #%d: %s\n", doc.ID, doc.Title)
				if doc.Published() {
					embedDocument(ctx, a, doc)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&draft, "draft", false, "import without publishing (skips embedding)")
	return cmd
}

// readArticleFile parses the loader format: optional "Title:" and "Tags:"
// header lines anywhere in the file, stripped from the body.
func readArticleFile(path string, ordinal int) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	var doc domain.Document
	var body []string
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "Title:"):
			doc.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		case strings.HasPrefix(line, "Tags:"):
			doc.Tags = strings.TrimSpace(strings.TrimPrefix(line, "Tags:"))
		default:
			body = append(body, line)
		}
	}
	doc.Content = strings.TrimSpace(strings.Join(body, "\n"))
	if doc.Title == "" {
		doc.Title = fmt.Sprintf("Article %d (%s)", ordinal, filepath.Base(path))
	}
	return doc, nil
}

func newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Compute embeddings for published articles that are missing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			docs, err := a.store.PublishedMissingEmbedding(ctx)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Println("All published articles already have embeddings.")
				return nil
			}
			done := 0
			for _, doc := range docs {
				if embedDocument(ctx, a, doc) {
					done++
				}
			}
			fmt.Printf("Embedded %d of %d article(s).\n", done, len(docs))
			return nil
		},
	}
}

// embedDocument computes and persists one document's vector. Failure is
// logged, not fatal: the article stays reachable through keyword fallback
// until the next backfill.
func embedDocument(ctx context.Context, a *app, doc domain.Document) bool {
	values, err := a.gemini.Embed(ctx, doc.EmbeddingText())
	if err != nil {
		a.log.Warn("embedding generation failed",
			zap.Int64("document_id", doc.ID),
			zap.String("title", doc.Title),
			zap.Error(err))
		return false
	}
	if err := a.store.UpdateEmbedding(ctx, doc.ID, values); err != nil {
		a.log.Warn("embedding write failed",
			zap.Int64("document_id", doc.ID),
			zap.Error(err))
		return false
	}
	fmt.Printf("Embedded #%d: %s (%d dims)\n", doc.ID, doc.Title, len(values))
	return true
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			docs, err := a.store.All(cmd.Context())
			if err != nil {
				return err
			}
			for _, doc := range docs {
				state := "draft"
				if doc.Published() {
					state = "published"
				}
				vec := " "
				if doc.Embedding.Present {
					vec = "*"
				}
				fmt.Printf("%4d %s %-9s %s", doc.ID, vec, state, doc.Title)
				if doc.Tags != "" {
					fmt.Printf("  [%s]", doc.Tags)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var title, description, tags string
	var draft bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new article with the language model and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			doc, err := a.writer.GenerateArticle(ctx, title, description, tags)
			if err != nil {
				return err
			}
			if !draft {
				now := time.Now().UTC()
				doc.PublishedAt = &now
			}
			if err := a.store.Create(ctx, &doc); err != nil {
				return err
			}
			fmt.Printf("Created #%d: %s (%d chars)\n", doc.ID, doc.Title, len(doc.Content))
			if doc.Published() {
				embedDocument(ctx, a, doc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "article title (required)")
	cmd.Flags().StringVar(&description, "description", "", "what the article should cover")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().BoolVar(&draft, "draft", false, "store without publishing (skips embedding)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
