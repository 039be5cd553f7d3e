package vectorstore

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the knowledge base at dbPath.
func NewSQLiteStore(dbPath string) (ports.VectorStorePort, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &sqliteStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		data_type TEXT NOT NULL,
		chunk_index INTEGER NOT NULL CHECK (chunk_index >= 0),
		text TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		embedding BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteStore) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertChunks(ctx, tx, chunks); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceSource swaps every chunk of source for chunks in one transaction.
// On failure the previous chunks are kept.
func (s *sqliteStore) ReplaceSource(ctx context.Context, source string, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.Source != source {
			return fmt.Errorf("chunk %s belongs to %q, not %q", c.ID, c.Source, source)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source); err != nil {
		return fmt.Errorf("delete source %s: %w", source, err)
	}

	if err := upsertChunks(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace of %s: %w", source, err)
	}
	return nil
}

func upsertChunks(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO chunks (id, source, data_type, chunk_index, text, metadata, embedding)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		source = excluded.source,
		data_type = excluded.data_type,
		chunk_index = excluded.chunk_index,
		text = excluded.text,
		metadata = excluded.metadata,
		embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata of chunk %s: %w", c.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, c.ID, c.Source, c.DataType, c.Index, c.Text, string(metadata), encodeEmbedding(c.Embedding)); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *sqliteStore) DeleteSource(ctx context.Context, source string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source = ?`, source)
	if err != nil {
		return fmt.Errorf("delete source %s: %w", source, err)
	}
	return nil
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Query scans every chunk and ranks it by cosine similarity to embedding.
func (s *sqliteStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	return s.rank(ctx, embedding, k, `
	SELECT id, source, data_type, chunk_index, text, metadata, embedding
	FROM chunks
	`)
}

// QuerySource ranks only the chunks of source.
func (s *sqliteStore) QuerySource(ctx context.Context, source string, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	return s.rank(ctx, embedding, k, `
	SELECT id, source, data_type, chunk_index, text, metadata, embedding
	FROM chunks
	WHERE source = ?
	`, source)
}

func (s *sqliteStore) rank(ctx context.Context, embedding []float32, k int, query string, args ...any) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scored []domain.ScoredChunk
	for rows.Next() {
		var c domain.Chunk
		var metadata string
		var blob []byte

		if err := rows.Scan(&c.ID, &c.Source, &c.DataType, &c.Index, &c.Text, &metadata, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of chunk %s: %w", c.ID, err)
		}
		c.Embedding = decodeEmbedding(blob)

		scored = append(scored, domain.ScoredChunk{Chunk: c, Score: cosine(embedding, c.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}

	return scored, nil
}

func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v
}

// cosine returns 0 for vectors of different length or zero norm.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
