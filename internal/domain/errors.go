package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeCapacity      = "CAPACITY_EXCEEDED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion     = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyDocumentID   = NewDomainError(ErrCodeValidation, "document id cannot be empty")
	ErrEmptyDocumentText = NewDomainError(ErrCodeValidation, "document contains no extractable text")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Conflict and capacity errors
var (
	ErrDocumentAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "document already ingested")
	ErrDocumentLimitReached  = NewDomainError(ErrCodeCapacity, "document limit reached, delete one before ingesting another")
)

// Upstream errors
var (
	ErrEmbeddingFailed  = NewDomainError(ErrCodeUpstream, "embedding provider failure")
	ErrCompletionFailed = NewDomainError(ErrCodeUpstream, "completion provider failure")
)
