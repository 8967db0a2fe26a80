package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/docvault-io/docvault/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIngester is a mock implementation of Ingester
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, path string) (*service.IngestResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestDirectoryWatcher_ProcessJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests each pdf once", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "report.pdf")
		writeFile(t, dir, "notes.txt")

		ingester := new(MockIngester)
		ingester.On("Ingest", ctx, path).
			Return(&service.IngestResult{DocumentID: "report.pdf", Pages: 1, Chunks: 2}, nil).Once()

		watcher := NewDirectoryWatcher(dir, ingester)

		require.NoError(t, watcher.ProcessJobs(ctx))
		require.NoError(t, watcher.ProcessJobs(ctx))

		ingester.AssertNumberOfCalls(t, "Ingest", 1)
		ingester.AssertNotCalled(t, "Ingest", ctx, filepath.Join(dir, "notes.txt"))
	})

	t.Run("already ingested files are not retried", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "report.pdf")

		ingester := new(MockIngester)
		ingester.On("Ingest", ctx, path).Return(nil, domain.ErrDocumentAlreadyExists).Once()

		watcher := NewDirectoryWatcher(dir, ingester)

		require.NoError(t, watcher.ProcessJobs(ctx))
		require.NoError(t, watcher.ProcessJobs(ctx))

		ingester.AssertNumberOfCalls(t, "Ingest", 1)
	})

	t.Run("failures are retried up to the attempt limit", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "broken.pdf")

		ingester := new(MockIngester)
		ingester.On("Ingest", ctx, path).Return(nil, errors.New("malformed xref"))

		watcher := NewDirectoryWatcher(dir, ingester)

		for i := 0; i < MaxAttempts+2; i++ {
			require.NoError(t, watcher.ProcessJobs(ctx))
		}

		ingester.AssertNumberOfCalls(t, "Ingest", MaxAttempts)
	})

	t.Run("capacity errors do not consume attempts", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "overflow.pdf")

		ingester := new(MockIngester)
		ingester.On("Ingest", ctx, path).Return(nil, domain.ErrDocumentLimitReached)

		watcher := NewDirectoryWatcher(dir, ingester)

		for i := 0; i < MaxAttempts+2; i++ {
			require.NoError(t, watcher.ProcessJobs(ctx))
		}

		// Still being picked up: the file ingests once capacity frees up.
		ingester.AssertNumberOfCalls(t, "Ingest", MaxAttempts+2)
	})

	t.Run("missing directory surfaces an error", func(t *testing.T) {
		watcher := NewDirectoryWatcher("/nonexistent/drop", new(MockIngester))
		assert.Error(t, watcher.ProcessJobs(ctx))
	})
}
