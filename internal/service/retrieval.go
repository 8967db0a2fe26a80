package service

import (
	"context"
	"log"
	"strings"

	"github.com/docvault-io/docvault/internal/domain"
)

// EmbeddingClient defines the interface for generating query embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearchRepository defines the index operations the retriever needs.
type ChunkSearchRepository interface {
	Search(ctx context.Context, embedding []float32, documentID string, limit int) ([]domain.SearchHit, error)
	ChunksByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Chunk, error)
}

// RetrievalConfig controls candidate fetching and score filtering.
type RetrievalConfig struct {
	TopK int
	// MinScore is the primary similarity threshold; candidates below it are
	// dropped unless the relaxed pass kicks in.
	MinScore float64
	// RelaxFactor scales MinScore down when the primary threshold filters
	// out every candidate.
	RelaxFactor float64
	// OverfetchMultiplier and OverfetchFloor size the candidate request so
	// post-filtering still has options: max(topK*multiplier, floor).
	OverfetchMultiplier int
	OverfetchFloor      int
}

// DefaultRetrievalConfig provides the default retrieval tuning.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:                5,
		MinScore:            0.7,
		RelaxFactor:         0.7,
		OverfetchMultiplier: 3,
		OverfetchFloor:      20,
	}
}

// RetrievalService answers similarity queries against the chunk index.
// Upstream failures never propagate: a query that cannot be served returns
// an empty result set.
type RetrievalService struct {
	embedding EmbeddingClient
	repo      ChunkSearchRepository
	cfg       RetrievalConfig
}

// NewRetrievalService creates a RetrievalService with default tuning.
func NewRetrievalService(embedding EmbeddingClient, repo ChunkSearchRepository) *RetrievalService {
	return NewRetrievalServiceWithConfig(embedding, repo, DefaultRetrievalConfig())
}

func NewRetrievalServiceWithConfig(embedding EmbeddingClient, repo ChunkSearchRepository, cfg RetrievalConfig) *RetrievalService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultRetrievalConfig().TopK
	}
	if cfg.RelaxFactor <= 0 || cfg.RelaxFactor > 1 {
		cfg.RelaxFactor = DefaultRetrievalConfig().RelaxFactor
	}
	if cfg.OverfetchMultiplier <= 0 {
		cfg.OverfetchMultiplier = DefaultRetrievalConfig().OverfetchMultiplier
	}
	if cfg.OverfetchFloor <= 0 {
		cfg.OverfetchFloor = DefaultRetrievalConfig().OverfetchFloor
	}
	return &RetrievalService{
		embedding: embedding,
		repo:      repo,
		cfg:       cfg,
	}
}

// Retrieve returns up to topK chunk texts relevant to the query, most
// similar first. A blank query with a document filter switches to dump
// mode: the document's chunks in natural reading order, no similarity
// ranking. If topK <= 0 the configured default applies.
func (s *RetrievalService) Retrieve(ctx context.Context, query, documentID string, topK int) []string {
	results := s.RetrieveScored(ctx, query, documentID, topK)
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return texts
}

// RetrieveScored is the variant of Retrieve that keeps similarity scores
// attached. Dump-mode results carry a zero score since no ranking happened.
func (s *RetrievalService) RetrieveScored(ctx context.Context, query, documentID string, topK int) []domain.RetrievalResult {
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	if strings.TrimSpace(query) == "" {
		if documentID == "" {
			return []domain.RetrievalResult{}
		}
		return s.dumpDocument(ctx, documentID, topK)
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, strings.TrimSpace(query))
	if err != nil {
		log.Printf("retrieval: embedding query failed: %v", err)
		return []domain.RetrievalResult{}
	}

	limit := topK * s.cfg.OverfetchMultiplier
	if limit < s.cfg.OverfetchFloor {
		limit = s.cfg.OverfetchFloor
	}

	hits, err := s.repo.Search(ctx, embedding, documentID, limit)
	if err != nil {
		log.Printf("retrieval: vector search failed: %v", err)
		return []domain.RetrievalResult{}
	}
	if len(hits) == 0 {
		return []domain.RetrievalResult{}
	}

	filtered := filterByScore(hits, s.cfg.MinScore)
	if len(filtered) == 0 {
		relaxed := s.cfg.MinScore * s.cfg.RelaxFactor
		log.Printf("retrieval: no candidates at score >= %.2f, relaxing to %.2f", s.cfg.MinScore, relaxed)
		filtered = filterByScore(hits, relaxed)
	}

	if len(filtered) > topK {
		filtered = filtered[:topK]
	}

	results := make([]domain.RetrievalResult, 0, len(filtered))
	for _, h := range filtered {
		if strings.TrimSpace(h.Text) == "" {
			continue
		}
		results = append(results, domain.RetrievalResult{Text: h.Text, Score: h.Score})
	}
	return results
}

func (s *RetrievalService) dumpDocument(ctx context.Context, documentID string, limit int) []domain.RetrievalResult {
	chunks, err := s.repo.ChunksByDocument(ctx, documentID, limit)
	if err != nil {
		log.Printf("retrieval: dump of document %q failed: %v", documentID, err)
		return []domain.RetrievalResult{}
	}

	results := make([]domain.RetrievalResult, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		results = append(results, domain.RetrievalResult{Text: c.Text})
	}
	return results
}

// filterByScore keeps hits at or above the threshold, preserving the
// index's descending-score order.
func filterByScore(hits []domain.SearchHit, minScore float64) []domain.SearchHit {
	out := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.Score >= minScore {
			out = append(out, h)
		}
	}
	return out
}
