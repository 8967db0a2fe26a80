package service

import (
	"context"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockChunkSearchRepository is a mock implementation of ChunkSearchRepository
type MockChunkSearchRepository struct {
	mock.Mock
}

func (m *MockChunkSearchRepository) Search(ctx context.Context, embedding []float32, documentID string, limit int) ([]domain.SearchHit, error) {
	args := m.Called(ctx, embedding, documentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchHit), args.Error(1)
}

func (m *MockChunkSearchRepository) ChunksByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Chunk, error) {
	args := m.Called(ctx, documentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

// MockChunkStoreRepository is a mock implementation of ChunkStoreRepository
type MockChunkStoreRepository struct {
	mock.Mock
}

func (m *MockChunkStoreRepository) Upsert(ctx context.Context, chunks []*domain.StoredChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkStoreRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChunkStoreRepository) ListDocuments(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) DocumentInfo(ctx context.Context, documentID string) (*domain.DocumentInfo, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentInfo), args.Error(1)
}

func (m *MockDocumentRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) Stats(ctx context.Context) (*domain.UsageStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageStats), args.Error(1)
}

// MockChatClient is a mock implementation of ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) CompleteChat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockPageExtractor is a mock implementation of PageExtractor
type MockPageExtractor struct {
	mock.Mock
}

func (m *MockPageExtractor) ExtractPages(path string) ([]PageText, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PageText), args.Error(1)
}

// MockRetriever is a mock implementation of Retriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query, documentID string, topK int) []string {
	args := m.Called(ctx, query, documentID, topK)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
