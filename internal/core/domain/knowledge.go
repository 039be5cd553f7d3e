package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	DataTypeYoutubeVideo = "youtube_video"
	DataTypePDFFile      = "pdf_file"
)

// Chunk is one embedded piece of an ingested source.
type Chunk struct {
	ID        string
	Source    string
	DataType  string
	Index     int
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

type ScoredChunk struct {
	Chunk
	Score float64
}

type IngestResult struct {
	Source  string `json:"source"`
	Chunks  int    `json:"chunks"`
	Success bool   `json:"success"`
}

// WebResult is a single hit from the web search fallback.
type WebResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Markdown    string `json:"markdown,omitempty"`
}

func ChunkID(source string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", source, index)))
	return hex.EncodeToString(sum[:16])
}

// SplitText cuts text into rune windows of size with overlap runes shared
// between neighbours. Whitespace-only input yields no chunks.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// Document renders video details as the text that gets indexed.
func (d VideoDetails) Document() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	if d.ChannelTitle != "" {
		fmt.Fprintf(&b, "Channel: %s\n", d.ChannelTitle)
	}
	if !d.PublishedAt.IsZero() {
		fmt.Fprintf(&b, "Published: %s\n", d.PublishedAt.Format("2006-01-02"))
	}
	if d.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", d.Duration)
	}
	if len(d.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(d.Tags, ", "))
	}
	if d.Description != "" {
		b.WriteString("\n")
		b.WriteString(d.Description)
	}
	return b.String()
}
