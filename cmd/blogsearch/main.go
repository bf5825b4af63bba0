// Command blogsearch manages a blog article corpus with semantic search and
// retrieval-augmented question answering.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blogsearch/internal/chunker"
	"blogsearch/internal/config"
	"blogsearch/internal/gemini"
	"blogsearch/internal/rag"
	"blogsearch/internal/search"
	"blogsearch/internal/store/sqlite"
	"blogsearch/internal/writer"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "blogsearch",
		Short:         "Semantic search and question answering over a blog article corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config (defaults to ./blogsearch.yaml, then ~/.config/blogsearch/config.yaml)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newImportCmd(),
		newEmbedCmd(),
		newListCmd(),
		newGenerateCmd(),
		newSearchCmd(),
		newRelatedCmd(),
		newAskCmd(),
		newTUICmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the assembled components for one command invocation.
type app struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	store    *sqlite.Store
	gemini   *gemini.Client
	chunker  *chunker.WordChunker
	searcher *search.Searcher
	rag      *rag.Service
	writer   *writer.Writer
}

// newApp loads config and assembles the component graph. A missing API key
// is not fatal here: embedding calls will fail and search degrades to
// keyword matching, per the ranking contract.
func newApp() (*app, error) {
	_ = godotenv.Load()

	var cfg *config.AppConfig
	var err error
	if flagConfig == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(flagConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}

	client := gemini.NewClient(gemini.Config{
		BaseURL:       cfg.Gemini.BaseURL,
		APIKey:        os.Getenv(cfg.Gemini.APIKeyEnv),
		EmbedModel:    cfg.Gemini.EmbedModel,
		GenerateModel: cfg.Gemini.GenerateModel,
		Timeout:       time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
	})

	ch := chunker.NewWordChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		gemini:   client,
		chunker:  ch,
		searcher: search.New(store, client, log),
		rag: rag.New(store, client, client, ch, log, rag.Options{
			TopChunks:       cfg.RAG.TopChunks,
			Temperature:     cfg.RAG.Temperature,
			MaxOutputTokens: cfg.RAG.MaxOutputTokens,
		}),
		writer: writer.New(client),
	}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = a.store.Close()
}

func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
