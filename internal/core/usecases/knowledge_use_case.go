package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

type KnowledgeOptions struct {
	ChunkSize    int
	ChunkOverlap int
}

type knowledgeUseCase struct {
	youtube  ports.YoutubePort
	embedder ports.EmbedderPort
	store    ports.VectorStorePort
	reader   ports.DocumentReaderPort
	log      ports.LoggerPort
	opts     KnowledgeOptions
}

type KnowledgeUseCase interface {
	IngestVideo(ctx context.Context, videoURL string) domain.IngestResult
	IngestPDF(ctx context.Context, path string) domain.IngestResult
	Search(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)
	SearchSource(ctx context.Context, source, question string, k int) ([]domain.ScoredChunk, error)
}

func NewKnowledgeUseCase(
	youtube ports.YoutubePort,
	embedder ports.EmbedderPort,
	store ports.VectorStorePort,
	reader ports.DocumentReaderPort,
	logger ports.LoggerPort,
	opts KnowledgeOptions,
) KnowledgeUseCase {
	return &knowledgeUseCase{
		youtube:  youtube,
		embedder: embedder,
		store:    store,
		reader:   reader,
		log:      logger,
		opts:     opts,
	}
}

// IngestVideo indexes one video. Failures are logged and reported through
// Success=false instead of an error.
func (uc *knowledgeUseCase) IngestVideo(ctx context.Context, videoURL string) domain.IngestResult {
	uc.log.Info("Init Ingest Video " + videoURL)

	result := domain.IngestResult{Source: videoURL}

	chunks, err := uc.buildChunks(ctx, videoURL)
	if err != nil {
		uc.log.Error("Failed to ingest video "+videoURL, err)
		return result
	}

	if err := uc.store.ReplaceSource(ctx, videoURL, chunks); err != nil {
		uc.log.Error("Failed to store chunks of "+videoURL, err)
		return result
	}

	result.Chunks = len(chunks)
	result.Success = true

	uc.log.Info(fmt.Sprintf("Ingest Video completed: %d chunks", len(chunks)))

	return result
}

func (uc *knowledgeUseCase) buildChunks(ctx context.Context, videoURL string) ([]domain.Chunk, error) {
	videoID, err := domain.VideoIDFromURL(videoURL)
	if err != nil {
		return nil, err
	}

	details, err := uc.youtube.GetVideoDetails(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("error while getting video details: %w", err)
	}

	pieces := domain.SplitText(details.Document(), uc.opts.ChunkSize, uc.opts.ChunkOverlap)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("video %s has no indexable text", videoID)
	}

	metadata := map[string]string{
		"video_id": details.ID,
		"title":    details.Title,
		"channel":  details.ChannelTitle,
	}
	if details.Duration > 0 {
		metadata["duration"] = details.Duration.String()
	}

	return uc.embedPieces(ctx, videoURL, domain.DataTypeYoutubeVideo, pieces, metadata)
}

// IngestPDF indexes the text of a local PDF under its absolute path.
// Like IngestVideo it reports failures through Success=false.
func (uc *knowledgeUseCase) IngestPDF(ctx context.Context, path string) domain.IngestResult {
	source := PDFSource(path)
	uc.log.Info("Init Ingest PDF " + source)

	result := domain.IngestResult{Source: source}

	if uc.reader == nil {
		uc.log.Error("Failed to ingest PDF "+source, fmt.Errorf("no document reader configured"))
		return result
	}

	text, err := uc.reader.ReadText(ctx, source)
	if err != nil {
		uc.log.Error("Failed to read PDF "+source, err)
		return result
	}

	pieces := domain.SplitText(text, uc.opts.ChunkSize, uc.opts.ChunkOverlap)
	if len(pieces) == 0 {
		uc.log.Error("Failed to ingest PDF "+source, fmt.Errorf("pdf %s has no extractable text", source))
		return result
	}

	chunks, err := uc.embedPieces(ctx, source, domain.DataTypePDFFile, pieces, map[string]string{
		"file": filepath.Base(source),
	})
	if err != nil {
		uc.log.Error("Failed to ingest PDF "+source, err)
		return result
	}

	if err := uc.store.ReplaceSource(ctx, source, chunks); err != nil {
		uc.log.Error("Failed to store chunks of "+source, err)
		return result
	}

	result.Chunks = len(chunks)
	result.Success = true

	uc.log.Info(fmt.Sprintf("Ingest PDF completed: %d chunks", len(chunks)))

	return result
}

// PDFSource is the knowledge base source key of the PDF at path.
func PDFSource(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (uc *knowledgeUseCase) embedPieces(ctx context.Context, source, dataType string, pieces []string, metadata map[string]string) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		embedding, err := uc.embedder.Embed(ctx, piece)
		if err != nil {
			return nil, fmt.Errorf("error while embedding chunk %d: %w", i, err)
		}

		chunks[i] = domain.Chunk{
			ID:        domain.ChunkID(source, i),
			Source:    source,
			DataType:  dataType,
			Index:     i,
			Text:      piece,
			Metadata:  metadata,
			Embedding: embedding,
		}
	}

	return chunks, nil
}

func (uc *knowledgeUseCase) Search(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	embedding, err := uc.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := uc.store.Query(ctx, embedding, k)
	if err != nil {
		uc.log.Error("Failed to query knowledge base", err)
		return nil, fmt.Errorf("error while querying knowledge base: %w", err)
	}

	uc.log.Debug(fmt.Sprintf("Knowledge search returned %d chunks", len(results)))

	return results, nil
}

// SearchSource is Search restricted to the chunks of one source.
func (uc *knowledgeUseCase) SearchSource(ctx context.Context, source, question string, k int) ([]domain.ScoredChunk, error) {
	embedding, err := uc.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := uc.store.QuerySource(ctx, source, embedding, k)
	if err != nil {
		uc.log.Error("Failed to query knowledge base for "+source, err)
		return nil, fmt.Errorf("error while querying knowledge base: %w", err)
	}

	uc.log.Debug(fmt.Sprintf("Knowledge search of %s returned %d chunks", source, len(results)))

	return results, nil
}

func (uc *knowledgeUseCase) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	embedding, err := uc.embedder.Embed(ctx, question)
	if err != nil {
		uc.log.Error("Failed to embed question", err)
		return nil, fmt.Errorf("error while embedding question: %w", err)
	}
	return embedding, nil
}

// FormatContext renders search hits the way they are handed to an agent.
func FormatContext(results []domain.ScoredChunk) string {
	if len(results) == 0 {
		return "No relevant content found in the knowledge base."
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] source: %s (score %.3f)\n%s\n\n", i+1, r.Source, r.Score, r.Text)
	}
	return strings.TrimSpace(b.String())
}
