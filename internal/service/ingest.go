package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/google/uuid"
)

// PageText is the per-page output of the extraction collaborator.
// Pages with no extractable text are omitted; numbering is 1-based.
type PageText struct {
	Page int
	Text string
}

// PageExtractor defines the interface for pulling page text out of a
// document file.
type PageExtractor interface {
	ExtractPages(path string) ([]PageText, error)
}

// ChunkStoreRepository defines the index operations the ingestion
// pipeline needs.
type ChunkStoreRepository interface {
	Upsert(ctx context.Context, chunks []*domain.StoredChunk) error
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
	ListDocuments(ctx context.Context) ([]string, error)
}

// IngestConfig controls chunking, batching, and capacity for ingestion.
type IngestConfig struct {
	Chunk        ChunkConfig
	MaxDocuments int
	// EmbedBatchSize chunks are embedded back to back, then the pipeline
	// pauses for BatchPause to stay under upstream rate limits.
	EmbedBatchSize int
	BatchPause     time.Duration
	StoreBatchSize int
	// MaxAttempts bounds per-chunk embedding retries; waits between
	// attempts grow exponentially.
	MaxAttempts int
}

// DefaultIngestConfig provides the default ingestion tuning.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Chunk:          DefaultChunkConfig(),
		MaxDocuments:   5,
		EmbedBatchSize: 10,
		BatchPause:     time.Second,
		StoreBatchSize: 50,
		MaxAttempts:    3,
	}
}

// IngestResult reports what a successful ingestion produced.
type IngestResult struct {
	DocumentID string
	Pages      int
	Chunks     int
}

// IngestService turns a document file into embedded chunks in the index.
// Unlike retrieval, ingestion failures propagate: a partially ingested
// document is deleted rather than left behind.
type IngestService struct {
	extractor PageExtractor
	embedding EmbeddingClient
	repo      ChunkStoreRepository
	cfg       IngestConfig

	// sleep is swappable in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewIngestService creates an IngestService with default tuning.
func NewIngestService(extractor PageExtractor, embedding EmbeddingClient, repo ChunkStoreRepository) *IngestService {
	return NewIngestServiceWithConfig(extractor, embedding, repo, DefaultIngestConfig())
}

func NewIngestServiceWithConfig(extractor PageExtractor, embedding EmbeddingClient, repo ChunkStoreRepository, cfg IngestConfig) *IngestService {
	def := DefaultIngestConfig()
	if cfg.MaxDocuments <= 0 {
		cfg.MaxDocuments = def.MaxDocuments
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = def.EmbedBatchSize
	}
	if cfg.StoreBatchSize <= 0 {
		cfg.StoreBatchSize = def.StoreBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	return &IngestService{
		extractor: extractor,
		embedding: embedding,
		repo:      repo,
		cfg:       cfg,
		sleep:     time.Sleep,
	}
}

// DocumentIDFromPath derives the document identifier from a file path.
func DocumentIDFromPath(path string) string {
	return filepath.Base(path)
}

// Ingest extracts, chunks, embeds, and stores one document.
func (s *IngestService) Ingest(ctx context.Context, path string) (*IngestResult, error) {
	documentID := DocumentIDFromPath(path)
	if documentID == "" || documentID == "." {
		return nil, domain.ErrEmptyDocumentID
	}

	existing, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "listing documents failed", err)
	}
	for _, id := range existing {
		if id == documentID {
			return nil, domain.ErrDocumentAlreadyExists
		}
	}
	if len(existing) >= s.cfg.MaxDocuments {
		return nil, domain.ErrDocumentLimitReached
	}

	pages, err := s.extractor.ExtractPages(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "text extraction failed", err)
	}

	chunks := buildChunks(documentID, pages, s.cfg.Chunk)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocumentText
	}

	stored, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(stored); start += s.cfg.StoreBatchSize {
		end := start + s.cfg.StoreBatchSize
		if end > len(stored) {
			end = len(stored)
		}
		if err := s.repo.Upsert(ctx, stored[start:end]); err != nil {
			s.cleanup(ctx, documentID)
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "storing chunks failed", err)
		}
	}

	log.Printf("ingest: stored %d chunks for document %q", len(stored), documentID)
	return &IngestResult{
		DocumentID: documentID,
		Pages:      len(pages),
		Chunks:     len(chunks),
	}, nil
}

// buildChunks normalizes and chunks each page, assigning per-page
// sequence indices so natural reading order survives storage.
func buildChunks(documentID string, pages []PageText, cfg ChunkConfig) []*domain.Chunk {
	var chunks []*domain.Chunk
	for _, page := range pages {
		normalized := NormalizeText(page.Text)
		if normalized == "" {
			continue
		}
		for i, text := range ChunkText(normalized, cfg) {
			chunks = append(chunks, &domain.Chunk{
				DocumentID:    documentID,
				Page:          page.Page,
				SequenceIndex: i,
				Text:          text,
				CharCount:     utf8.RuneCountInString(text),
			})
		}
	}
	return chunks
}

func (s *IngestService) embedChunks(ctx context.Context, chunks []*domain.Chunk) ([]*domain.StoredChunk, error) {
	createdAt := time.Now().UTC()
	stored := make([]*domain.StoredChunk, 0, len(chunks))

	for i, chunk := range chunks {
		embedding, err := s.embedWithRetry(ctx, chunk.Text)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
				fmt.Sprintf("embedding chunk %d/%d failed", i+1, len(chunks)), err)
		}
		stored = append(stored, &domain.StoredChunk{
			ID:        uuid.NewString(),
			Chunk:     *chunk,
			Embedding: embedding,
			CreatedAt: createdAt,
		})

		if (i+1)%s.cfg.EmbedBatchSize == 0 && i+1 < len(chunks) && s.cfg.BatchPause > 0 {
			s.sleep(s.cfg.BatchPause)
		}
	}
	return stored, nil
}

// embedWithRetry retries transient embedding failures with exponential
// backoff before giving up.
func (s *IngestService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			s.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
		embedding, err := s.embedding.GenerateEmbedding(ctx, text)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		log.Printf("ingest: embedding attempt %d/%d failed: %v", attempt+1, s.cfg.MaxAttempts, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (s *IngestService) cleanup(ctx context.Context, documentID string) {
	if _, err := s.repo.DeleteByDocument(ctx, documentID); err != nil {
		log.Printf("ingest: cleanup of partial document %q failed: %v", documentID, err)
	}
}
