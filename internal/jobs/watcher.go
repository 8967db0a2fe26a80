package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/docvault-io/docvault/internal/service"
	"github.com/docvault-io/docvault/internal/telemetry"
)

const (
	// MaxAttempts is the maximum number of ingestion attempts per file
	MaxAttempts = 3
)

// Ingester defines the interface for ingesting a document file
type Ingester interface {
	Ingest(ctx context.Context, path string) (*service.IngestResult, error)
}

// DirectoryWatcher scans a drop directory for PDF files and ingests any
// it has not seen yet. It implements the JobProcessor interface so the
// generic Worker can drive it.
type DirectoryWatcher struct {
	dir      string
	ingester Ingester

	// attempts tracks failures per file; done marks files that need no
	// further work. Only the worker goroutine touches these.
	attempts map[string]int
	done     map[string]bool
}

// NewDirectoryWatcher creates a new DirectoryWatcher instance
func NewDirectoryWatcher(dir string, ingester Ingester) *DirectoryWatcher {
	return &DirectoryWatcher{
		dir:      dir,
		ingester: ingester,
		attempts: make(map[string]int),
		done:     make(map[string]bool),
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *DirectoryWatcher) ProcessJobs(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		path := filepath.Join(w.dir, entry.Name())
		if w.done[path] || w.attempts[path] >= MaxAttempts {
			continue
		}

		w.processFile(ctx, path)
	}

	return nil
}

func (w *DirectoryWatcher) processFile(ctx context.Context, path string) {
	result, err := w.ingester.Ingest(ctx, path)
	if err == nil {
		log.Printf("watcher: ingested %q (%d pages, %d chunks)", result.DocumentID, result.Pages, result.Chunks)
		w.done[path] = true
		return
	}

	// An already-ingested file needs no retries; it was picked up in a
	// previous run or ingested manually.
	if errors.Is(err, domain.ErrDocumentAlreadyExists) {
		w.done[path] = true
		return
	}

	// At capacity, every file would fail; leave attempts untouched so
	// ingestion resumes once a document is deleted.
	if errors.Is(err, domain.ErrDocumentLimitReached) {
		log.Printf("watcher: skipping %q: %v", path, err)
		return
	}

	w.attempts[path]++
	log.Printf("watcher: ingesting %q failed (attempt %d/%d): %v", path, w.attempts[path], MaxAttempts, err)
	if w.attempts[path] >= MaxAttempts {
		log.Printf("watcher: giving up on %q after %d attempts", path, MaxAttempts)
		telemetry.CaptureError(err, "watch.ingest")
	}
}
