package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"blogsearch/internal/domain"
	"blogsearch/internal/tui"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var minSimilarity float64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank published articles against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Search.Limit
			}
			if !cmd.Flags().Changed("min-similarity") {
				minSimilarity = a.cfg.Search.MinSimilarity
			}
			results, err := a.searcher.Search(cmd.Context(), strings.Join(args, " "), limit, minSimilarity)
			if err != nil {
				return err
			}
			return printResults(results, asJSON)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (defaults to config)")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "similarity threshold (defaults to config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

func newRelatedCmd() *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "related <article-id>",
		Short: "Find articles related to an existing article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid article id %q", args[0])
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := a.store.ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Search.RelatedLimit
			}
			results, err := a.searcher.Related(cmd.Context(), doc, limit, a.cfg.Search.RelatedMinSimilarity)
			if err != nil {
				return err
			}
			return printResults(results, asJSON)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (defaults to config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

func newAskCmd() *cobra.Command {
	var ids []int64
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the published articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			answer := a.rag.Ask(cmd.Context(), strings.Join(args, " "), ids)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(answer)
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "restrict to these article ids")
	return cmd
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive search and question answering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			m := tui.New(a.searcher, a.rag, tui.Config{
				Limit:         a.cfg.Search.Limit,
				MinSimilarity: a.cfg.Search.MinSimilarity,
			})
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type resultJSON struct {
	DocumentID int64        `json:"document_id"`
	Title      string       `json:"title"`
	Tags       []string     `json:"tags"`
	Score      domain.Score `json:"score"`
}

func printResults(results []domain.Result, asJSON bool) error {
	if asJSON {
		out := make([]resultJSON, 0, len(results))
		for _, r := range results {
			out = append(out, resultJSON{
				DocumentID: r.Document.ID,
				Title:      r.Document.Title,
				Tags:       r.Document.TagList(),
				Score:      r.Score,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, r := range results {
		score := "   -  "
		if r.Score.Valid {
			score = fmt.Sprintf("%.4f", r.Score.Value)
		}
		fmt.Printf("%4d  %s  %s\n", r.Document.ID, score, r.Document.Title)
	}
	return nil
}
