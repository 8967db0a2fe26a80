package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docvault-io/docvault/internal/config"
	"github.com/docvault-io/docvault/internal/database"
	"github.com/docvault-io/docvault/internal/openai"
	"github.com/docvault-io/docvault/internal/repository"
	"github.com/docvault-io/docvault/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	openaiapi "github.com/sashabaranov/go-openai"
)

// app bundles the wired services a command needs. Commands build it once
// at the start of RunE and close it when done.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool

	chunks    *repository.ChunkRepository
	documents *service.DocumentService
	retrieval *service.RetrievalService
	answers   *service.AnswerService
	ingest    *service.IngestService
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// newApp loads configuration, connects to the database, and wires the
// service graph. Commands that only read the catalog work without an
// OpenAI key; retrieval and ingestion require one.
func newApp(ctx context.Context, extractor service.PageExtractor) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	chunkRepo := repository.NewChunkRepository(pool)

	a := &app{
		cfg:       cfg,
		pool:      pool,
		chunks:    chunkRepo,
		documents: service.NewDocumentService(chunkRepo),
	}

	if !cfg.HasOpenAI() {
		return a, nil
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaiapi.EmbeddingModel(cfg.OpenAIEmbeddingModel),
		ChatModel:           cfg.OpenAIChatModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		CacheSize:           cfg.EmbeddingCacheSize,
	})

	a.retrieval = service.NewRetrievalServiceWithConfig(client, chunkRepo, service.RetrievalConfig{
		TopK:                cfg.TopK,
		MinScore:            cfg.MinScore,
		RelaxFactor:         cfg.RelaxFactor,
		OverfetchMultiplier: cfg.OverfetchMultiplier,
		OverfetchFloor:      cfg.OverfetchFloor,
	})

	answerCfg := service.DefaultAnswerConfig()
	answerCfg.MaxContextChars = cfg.MaxContextChars
	a.answers = service.NewAnswerServiceWithConfig(a.retrieval, client, answerCfg)

	ingestCfg := service.DefaultIngestConfig()
	ingestCfg.Chunk = service.ChunkConfig{ChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	ingestCfg.MaxDocuments = cfg.MaxDocuments
	a.ingest = service.NewIngestServiceWithConfig(extractor, client, chunkRepo, ingestCfg)

	return a, nil
}

// requireOpenAI guards commands that cannot run without an API key.
func (a *app) requireOpenAI() error {
	if !a.cfg.HasOpenAI() {
		return fmt.Errorf("DOCVAULT_OPENAI_API_KEY is not set; this command needs OpenAI access")
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
