package ports

import (
	"TUI_channel_research/internal/core/domain"
	"context"
)

type EmbedderPort interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStorePort interface {
	Upsert(ctx context.Context, chunks []domain.Chunk) error
	DeleteSource(ctx context.Context, source string) error
	// ReplaceSource deletes the chunks of source and stores chunks atomically.
	ReplaceSource(ctx context.Context, source string, chunks []domain.Chunk) error
	Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error)
	QuerySource(ctx context.Context, source string, embedding []float32, k int) ([]domain.ScoredChunk, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// DocumentReaderPort extracts the plain text of a local document.
type DocumentReaderPort interface {
	ReadText(ctx context.Context, path string) (string, error)
}

type WebSearchPort interface {
	Search(ctx context.Context, query string, limit int) ([]domain.WebResult, error)
}
