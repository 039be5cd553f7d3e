package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

type nopLogger struct{}

func (nopLogger) Debug(string)        {}
func (nopLogger) Info(string)         {}
func (nopLogger) Warning(string)      {}
func (nopLogger) Error(string, error) {}
func (nopLogger) Close()              {}

type fakeYoutube struct {
	channels     map[string]string
	videos       map[string][]domain.VideoRecord
	details      map[string]domain.VideoDetails
	resolveErr   error
	fetchErr     error
	fetchCalls   int
	resolveCalls int
}

func (f *fakeYoutube) ResolveChannelID(_ context.Context, handle string) (string, error) {
	f.resolveCalls++
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	id, ok := f.channels[handle]
	if !ok {
		return "", &domain.NotFoundError{Handle: handle}
	}
	return id, nil
}

func (f *fakeYoutube) FetchLatestVideos(_ context.Context, channelID string, maxResults int) (domain.VideoList, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return domain.VideoList{}, f.fetchErr
	}
	videos := f.videos[channelID]
	if len(videos) > maxResults {
		videos = videos[:maxResults]
	}
	return domain.VideoList{Videos: videos}, nil
}

func (f *fakeYoutube) GetVideoDetails(_ context.Context, videoID string) (domain.VideoDetails, error) {
	d, ok := f.details[videoID]
	if !ok {
		return domain.VideoDetails{}, fmt.Errorf("video %s not found", videoID)
	}
	return d, nil
}

// fakeEmbedder maps text to a vector of letter counts for a, b and c.
type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := make([]float32, 3)
	for _, r := range text {
		switch r {
		case 'a':
			v[0]++
		case 'b':
			v[1]++
		case 'c':
			v[2]++
		}
	}
	return v, nil
}

type memoryStore struct {
	mu        sync.Mutex
	chunks    map[string]domain.Chunk
	upsertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{chunks: map[string]domain.Chunk{}}
}

func (s *memoryStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *memoryStore) DeleteSource(_ context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.chunks {
		if c.Source == source {
			delete(s.chunks, id)
		}
	}
	return nil
}

// ReplaceSource leaves the store untouched when upsertErr is set.
func (s *memoryStore) ReplaceSource(_ context.Context, source string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for id, c := range s.chunks {
		if c.Source == source {
			delete(s.chunks, id)
		}
	}
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

func (s *memoryStore) Query(_ context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	return s.rank(embedding, k, func(domain.Chunk) bool { return true }), nil
}

func (s *memoryStore) QuerySource(_ context.Context, source string, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	return s.rank(embedding, k, func(c domain.Chunk) bool { return c.Source == source }), nil
}

func (s *memoryStore) rank(embedding []float32, k int, keep func(domain.Chunk) bool) []domain.ScoredChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ScoredChunk
	for _, c := range s.chunks {
		if !keep(c) {
			continue
		}
		var dot float64
		for i := range embedding {
			dot += float64(embedding[i] * c.Embedding[i])
		}
		out = append(out, domain.ScoredChunk{Chunk: c, Score: dot})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func (s *memoryStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks), nil
}

func (s *memoryStore) Close() error { return nil }

type fakeReader struct {
	texts map[string]string
	reads []string
}

func (f *fakeReader) ReadText(_ context.Context, path string) (string, error) {
	f.reads = append(f.reads, path)
	text, ok := f.texts[path]
	if !ok {
		return "", fmt.Errorf("open %s: no such file", path)
	}
	return text, nil
}

type fakeWeb struct {
	results []domain.WebResult
	err     error
	queries []string
}

func (f *fakeWeb) Search(_ context.Context, query string, limit int) ([]domain.WebResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

// scriptedAgent answers with a function of the prompt and its tools.
type scriptedAgent struct {
	name    string
	tools   map[string]domain.Tool
	prompts []string
	answer  func(ctx context.Context, a *scriptedAgent, prompt string) (string, error)
}

func (a *scriptedAgent) Name() string { return a.name }

func (a *scriptedAgent) ExecuteTask(ctx context.Context, prompt string) (string, error) {
	a.prompts = append(a.prompts, prompt)
	if a.answer == nil {
		return a.name + " done", nil
	}
	return a.answer(ctx, a, prompt)
}

func (a *scriptedAgent) call(ctx context.Context, tool string, args string) (string, error) {
	t, ok := a.tools[tool]
	if !ok {
		return "", errors.New("tool not registered: " + tool)
	}
	return t.Handler(ctx, []byte(args))
}

type fakeAgentFactory struct {
	scripts map[string]func(ctx context.Context, a *scriptedAgent, prompt string) (string, error)
	created map[string]*scriptedAgent
}

func (f *fakeAgentFactory) NewAgent(profile domain.AgentProfile, tools ...domain.Tool) (ports.AgentPort, error) {
	a := &scriptedAgent{name: profile.Role, tools: map[string]domain.Tool{}, answer: f.scripts[profile.Role]}
	for _, t := range tools {
		a.tools[t.Name] = t
	}
	if f.created == nil {
		f.created = map[string]*scriptedAgent{}
	}
	f.created[profile.Role] = a
	return a, nil
}
