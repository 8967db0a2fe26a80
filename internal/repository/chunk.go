package repository

import (
	"context"
	"errors"
	"time"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgUndefinedTable is the SQLSTATE for a missing relation. Read paths
// treat it as an empty index rather than an error, so queries issued
// before the first migration behave like queries against no documents.
const pgUndefinedTable = "42P01"

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// ChunkRepository persists embedded chunks and serves similarity search
// over them.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Upsert inserts chunks, replacing any row stored under the same id.
func (r *ChunkRepository) Upsert(ctx context.Context, chunks []*domain.StoredChunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, page, chunk_index, content, char_count, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
				document_id = EXCLUDED.document_id,
				page = EXCLUDED.page,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				char_count = EXCLUDED.char_count,
				embedding = EXCLUDED.embedding,
				created_at = EXCLUDED.created_at`,
			c.ID, c.DocumentID, c.Page, c.SequenceIndex, c.Text, c.CharCount,
			pgvector.NewVector(c.Embedding), createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Search returns the closest chunks to the query embedding by cosine
// similarity, best first. An empty documentID searches all documents.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, documentID string, limit int) ([]domain.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}

	vec := pgvector.NewVector(embedding)

	query := `
		SELECT document_id, page, content, 1 - (embedding <=> $1) AS score
		FROM document_chunks`
	args := []interface{}{vec}

	if documentID != "" {
		query += " WHERE document_id = $2 ORDER BY embedding <=> $1 LIMIT $3"
		args = append(args, documentID, limit)
	} else {
		query += " ORDER BY embedding <=> $1 LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		if isUndefinedTable(err) {
			return []domain.SearchHit{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	hits := make([]domain.SearchHit, 0, limit)
	for rows.Next() {
		var h domain.SearchHit
		if err := rows.Scan(&h.DocumentID, &h.Page, &h.Text, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ChunksByDocument returns a document's chunks in natural reading order.
func (r *ChunkRepository) ChunksByDocument(ctx context.Context, documentID string, limit int) ([]*domain.Chunk, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT document_id, page, chunk_index, content, char_count
		 FROM document_chunks
		 WHERE document_id = $1
		 ORDER BY page, chunk_index
		 LIMIT $2`,
		documentID, limit,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return []*domain.Chunk{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.DocumentID, &c.Page, &c.SequenceIndex, &c.Text, &c.CharCount); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// ListDocuments returns the distinct document ids present in the index.
func (r *ChunkRepository) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT document_id FROM document_chunks ORDER BY document_id`)
	if err != nil {
		if isUndefinedTable(err) {
			return []string{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteByDocument removes all chunks of a document and reports how many
// rows went away.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DocumentInfo aggregates stored-chunk statistics for one document. A
// document with no chunks yields zero counts, not an error.
func (r *ChunkRepository) DocumentInfo(ctx context.Context, documentID string) (*domain.DocumentInfo, error) {
	info := &domain.DocumentInfo{DocumentID: documentID}
	var createdAt *time.Time

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT page), COALESCE(SUM(char_count), 0), MIN(created_at)
		 FROM document_chunks
		 WHERE document_id = $1`,
		documentID,
	).Scan(&info.Chunks, &info.Pages, &info.Characters, &createdAt)
	if err != nil {
		if isUndefinedTable(err) {
			return info, nil
		}
		return nil, err
	}
	if createdAt != nil {
		info.CreatedAt = *createdAt
	}
	return info, nil
}

// Stats aggregates usage over the whole index.
func (r *ChunkRepository) Stats(ctx context.Context) (*domain.UsageStats, error) {
	stats := &domain.UsageStats{}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT document_id), COUNT(*), COALESCE(SUM(char_count), 0)
		 FROM document_chunks`,
	).Scan(&stats.Documents, &stats.Chunks, &stats.Characters)
	if err != nil {
		if isUndefinedTable(err) {
			return stats, nil
		}
		return nil, err
	}

	if stats.Documents > 0 {
		stats.ChunksPerDocAvg = float64(stats.Chunks) / float64(stats.Documents)
	}
	return stats, nil
}
