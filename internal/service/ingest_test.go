package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestIngestService(extractor *MockPageExtractor, embedding *MockEmbeddingClient, repo *MockChunkStoreRepository, cfg IngestConfig) *IngestService {
	svc := NewIngestServiceWithConfig(extractor, embedding, repo, cfg)
	svc.sleep = func(time.Duration) {}
	return svc
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()
	vector := []float32{0.1, 0.2}

	t.Run("stores chunks for a new document", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{"other.pdf"}, nil)
		extractor.On("ExtractPages", "/tmp/report.pdf").Return([]PageText{
			{Page: 1, Text: "First page content here."},
			{Page: 2, Text: "Second page content here."},
		}, nil)
		embedding.On("GenerateEmbedding", ctx, mock.AnythingOfType("string")).Return(vector, nil)

		var stored []*domain.StoredChunk
		repo.On("Upsert", ctx, mock.AnythingOfType("[]*domain.StoredChunk")).
			Run(func(args mock.Arguments) {
				stored = append(stored, args.Get(1).([]*domain.StoredChunk)...)
			}).Return(nil)

		svc := newTestIngestService(extractor, embedding, repo, DefaultIngestConfig())
		result, err := svc.Ingest(ctx, "/tmp/report.pdf")

		require.NoError(t, err)
		assert.Equal(t, "report.pdf", result.DocumentID)
		assert.Equal(t, 2, result.Pages)
		assert.Equal(t, 2, result.Chunks)

		require.Len(t, stored, 2)
		assert.Equal(t, "report.pdf", stored[0].DocumentID)
		assert.Equal(t, 1, stored[0].Page)
		assert.Equal(t, 0, stored[0].SequenceIndex)
		assert.NotEmpty(t, stored[0].ID)
		assert.Equal(t, vector, stored[0].Embedding)
		assert.Equal(t, 2, stored[1].Page)
	})

	t.Run("rejects a duplicate document", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{"report.pdf"}, nil)

		svc := newTestIngestService(extractor, embedding, repo, DefaultIngestConfig())
		_, err := svc.Ingest(ctx, "/tmp/report.pdf")

		assert.ErrorIs(t, err, domain.ErrDocumentAlreadyExists)
		extractor.AssertNotCalled(t, "ExtractPages", mock.Anything)
	})

	t.Run("rejects ingestion at capacity", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{"a.pdf", "b.pdf"}, nil)

		cfg := DefaultIngestConfig()
		cfg.MaxDocuments = 2
		svc := newTestIngestService(extractor, embedding, repo, cfg)
		_, err := svc.Ingest(ctx, "/tmp/report.pdf")

		assert.ErrorIs(t, err, domain.ErrDocumentLimitReached)
	})

	t.Run("rejects a document with no extractable text", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{}, nil)
		extractor.On("ExtractPages", "/tmp/scan.pdf").Return([]PageText{
			{Page: 1, Text: "   \x00\x07  "},
		}, nil)

		svc := newTestIngestService(extractor, embedding, repo, DefaultIngestConfig())
		_, err := svc.Ingest(ctx, "/tmp/scan.pdf")

		assert.ErrorIs(t, err, domain.ErrEmptyDocumentText)
	})

	t.Run("wraps extraction failure", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{}, nil)
		extractor.On("ExtractPages", "/tmp/broken.pdf").Return(nil, errors.New("malformed xref"))

		svc := newTestIngestService(extractor, embedding, repo, DefaultIngestConfig())
		_, err := svc.Ingest(ctx, "/tmp/broken.pdf")

		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeUpstream, domainErr.Code)
	})

	t.Run("cleans up partial document when storing fails", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{}, nil)
		extractor.On("ExtractPages", "/tmp/report.pdf").Return([]PageText{
			{Page: 1, Text: "Some page content."},
		}, nil)
		embedding.On("GenerateEmbedding", ctx, mock.AnythingOfType("string")).Return(vector, nil)
		repo.On("Upsert", ctx, mock.Anything).Return(errors.New("disk full"))
		repo.On("DeleteByDocument", ctx, "report.pdf").Return(int64(0), nil)

		svc := newTestIngestService(extractor, embedding, repo, DefaultIngestConfig())
		_, err := svc.Ingest(ctx, "/tmp/report.pdf")

		require.Error(t, err)
		repo.AssertCalled(t, "DeleteByDocument", ctx, "report.pdf")
	})

	t.Run("stores in batches of the configured size", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		// Three paragraphs that chunk into three pieces.
		page := strings.Repeat("para one. ", 15) + "\n\n" + strings.Repeat("para two. ", 15) + "\n\n" + strings.Repeat("para three. ", 15)
		repo.On("ListDocuments", ctx).Return([]string{}, nil)
		extractor.On("ExtractPages", "/tmp/report.pdf").Return([]PageText{{Page: 1, Text: page}}, nil)
		embedding.On("GenerateEmbedding", ctx, mock.AnythingOfType("string")).Return(vector, nil)

		var batchSizes []int
		repo.On("Upsert", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				batchSizes = append(batchSizes, len(args.Get(1).([]*domain.StoredChunk)))
			}).Return(nil)

		cfg := DefaultIngestConfig()
		cfg.Chunk = ChunkConfig{ChunkSize: 160, Overlap: 20}
		cfg.StoreBatchSize = 2
		svc := newTestIngestService(extractor, embedding, repo, cfg)

		result, err := svc.Ingest(ctx, "/tmp/report.pdf")
		require.NoError(t, err)
		require.Greater(t, result.Chunks, 2)

		for _, size := range batchSizes {
			assert.LessOrEqual(t, size, 2)
		}
	})
}

func TestIngestService_EmbedRetry(t *testing.T) {
	ctx := context.Background()
	vector := []float32{0.1}

	t.Run("retries transient failures with backoff", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{}, nil)
		extractor.On("ExtractPages", "/tmp/report.pdf").Return([]PageText{{Page: 1, Text: "Some page content."}}, nil)
		embedding.On("GenerateEmbedding", ctx, mock.AnythingOfType("string")).Return(nil, errors.New("rate limited")).Twice()
		embedding.On("GenerateEmbedding", ctx, mock.AnythingOfType("string")).Return(vector, nil).Once()
		repo.On("Upsert", ctx, mock.Anything).Return(nil)

		var waits []time.Duration
		svc := NewIngestServiceWithConfig(extractor, embedding, repo, DefaultIngestConfig())
		svc.sleep = func(d time.Duration) { waits = append(waits, d) }

		_, err := svc.Ingest(ctx, "/tmp/report.pdf")

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, waits)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		extractor := new(MockPageExtractor)
		embedding := new(MockEmbeddingClient)
		repo := new(MockChunkStoreRepository)

		repo.On("ListDocuments", ctx).Return([]string{}, nil)
		extractor.On("ExtractPages", "/tmp/report.pdf").Return([]PageText{{Page: 1, Text: "Some page content."}}, nil)
		embedding.On("GenerateEmbedding", ctx, mock.AnythingOfType("string")).Return(nil, errors.New("rate limited"))

		svc := newTestIngestService(extractor, embedding, repo, DefaultIngestConfig())
		_, err := svc.Ingest(ctx, "/tmp/report.pdf")

		require.Error(t, err)
		embedding.AssertNumberOfCalls(t, "GenerateEmbedding", 3)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestDocumentIDFromPath(t *testing.T) {
	assert.Equal(t, "report.pdf", DocumentIDFromPath("/data/in/report.pdf"))
	assert.Equal(t, "report.pdf", DocumentIDFromPath("report.pdf"))
}
