package service

import (
	"context"
	"strings"

	"github.com/docvault-io/docvault/internal/domain"
)

// DocumentRepository defines the catalog operations the document service
// needs on top of the chunk store.
type DocumentRepository interface {
	ListDocuments(ctx context.Context) ([]string, error)
	DocumentInfo(ctx context.Context, documentID string) (*domain.DocumentInfo, error)
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)
	Stats(ctx context.Context) (*domain.UsageStats, error)
}

// DocumentService exposes catalog operations over ingested documents.
type DocumentService struct {
	repo DocumentRepository
}

func NewDocumentService(repo DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

// List returns the identifiers of all ingested documents.
func (s *DocumentService) List(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to list documents", err)
	}
	return ids, nil
}

// Info returns per-document statistics, or ErrDocumentNotFound if the
// document has no stored chunks.
func (s *DocumentService) Info(ctx context.Context, documentID string) (*domain.DocumentInfo, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, domain.ErrEmptyDocumentID
	}

	info, err := s.repo.DocumentInfo(ctx, documentID)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to load document info", err)
	}
	if info == nil || info.Chunks == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return info, nil
}

// Delete removes a document and all of its chunks, returning how many
// chunks were removed. Deleting an unknown document is ErrDocumentNotFound.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (int64, error) {
	if strings.TrimSpace(documentID) == "" {
		return 0, domain.ErrEmptyDocumentID
	}

	removed, err := s.repo.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to delete document", err)
	}
	if removed == 0 {
		return 0, domain.ErrDocumentNotFound
	}
	return removed, nil
}

// Stats returns aggregate usage over the whole store.
func (s *DocumentService) Stats(ctx context.Context) (*domain.UsageStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to load usage stats", err)
	}
	return stats, nil
}
