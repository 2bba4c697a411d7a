package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

const pgSchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS rag_chunks (
	seq BIGSERIAL,
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	content TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	embedding vector NOT NULL,
	source_doc TEXT,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_rag_chunks_document_id ON rag_chunks(document_id);
`

// PGVectorStore implements ports.VectorStore on PostgreSQL with the
// pgvector extension. Similarity is 1 - cosine distance.
type PGVectorStore struct {
	db *sql.DB
}

// NewPGVectorStore connects to databaseURL and creates the chunk table.
func NewPGVectorStore(ctx context.Context, databaseURL string) (*PGVectorStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(pingCtx, pgSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	logger.Debugf("pgvector store ready")
	return &PGVectorStore{db: db}, nil
}

// Store upserts chunks in a single transaction.
func (s *PGVectorStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := upsertPG(ctx, tx, chunks); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Replace deletes a document's chunks and stores chunks in one transaction.
func (s *PGVectorStore) Replace(ctx context.Context, documentID string, chunks []entities.Chunk) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rag_chunks WHERE document_id = $1`, documentID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("removing old chunks: %w", err)
	}
	if err := upsertPG(ctx, tx, chunks); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func upsertPG(ctx context.Context, tx *sql.Tx, chunks []entities.Chunk) error {
	const q = `
		INSERT INTO rag_chunks (id, document_id, content, chunk_index, embedding, source_doc, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			content = EXCLUDED.content,
			chunk_index = EXCLUDED.chunk_index,
			embedding = EXCLUDED.embedding,
			source_doc = EXCLUDED.source_doc,
			metadata = EXCLUDED.metadata
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		md, err := json.Marshal(ch.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.Content, ch.Index, pgvector.NewVector(ch.Embedding), sourceOf(*ch), string(md),
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", ch.ID, err)
		}
	}
	return nil
}

// Search returns the k nearest chunks by cosine distance.
func (s *PGVectorStore) Search(ctx context.Context, embedding []float32, k int) ([]entities.QueryResult, error) {
	const q = `
		SELECT id, document_id, content, chunk_index, embedding, source_doc, metadata, embedding <=> $1 AS distance
		FROM rag_chunks
		ORDER BY distance, seq
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, q, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []entities.QueryResult
	for rows.Next() {
		var (
			ch        entities.Chunk
			emb       pgvector.Vector
			sourceDoc sql.NullString
			md        []byte
			distance  float64
		)
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Content, &ch.Index, &emb, &sourceDoc, &md, &distance); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		if err := json.Unmarshal(md, &ch.Metadata); err != nil {
			logger.Warnf("chunk %s has unreadable metadata: %v", ch.ID, err)
		}
		out = append(out, entities.QueryResult{Chunk: ch, Score: 1 - distance, SourceDoc: sourceDoc.String})
	}
	return out, rows.Err()
}

// Delete removes all chunks for a document.
func (s *PGVectorStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rag_chunks WHERE document_id = $1`, documentID)
	return err
}

// Clear removes all data from the store.
func (s *PGVectorStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE rag_chunks`)
	return err
}

// ListMetadata returns every chunk's metadata in insertion order.
func (s *PGVectorStore) ListMetadata(ctx context.Context) ([]entities.ChunkMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metadata FROM rag_chunks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.ChunkMetadata
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var md entities.ChunkMetadata
		if err := json.Unmarshal(raw, &md); err != nil {
			continue
		}
		out = append(out, md)
	}
	return out, rows.Err()
}

// Count returns the number of stored chunks.
func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rag_chunks`).Scan(&n)
	return n, err
}

// Close closes the connection pool.
func (s *PGVectorStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
