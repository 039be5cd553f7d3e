package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallbackAnswer = "```json\n" + `{
  "first_name": "Ada",
  "last_name": null,
  "main_topics_covered": ["go", "agents"],
  "bio": "Builds things.",
  "email_address": "ada@example.com",
  "linkedin_url": null,
  "has_linked_in": false,
  "x_url": null,
  "has_twitter": null,
  "has_skool": true
}` + "\n```"

type researchFixture struct {
	yt        *fakeYoutube
	store     *memoryStore
	web       *fakeWeb
	factory   *fakeAgentFactory
	fetchArgs string
}

func newResearchFixture() *researchFixture {
	f := &researchFixture{
		yt: &fakeYoutube{
			channels: map[string]string{"@example": "UC123"},
			videos:   map[string][]domain.VideoRecord{"UC123": fiveVideos()},
			details: map[string]domain.VideoDetails{
				"vid5": {ID: "vid5", Title: "Video vid5", Description: "hey guys, it's Ada", Duration: time.Minute},
				"vid4": {ID: "vid4", Title: "Video vid4", Description: "my email is ada@example.com"},
			},
		},
		store:     newMemoryStore(),
		web:       &fakeWeb{results: []domain.WebResult{{URL: "https://example.com/ada", Title: "Ada"}}},
		fetchArgs: `{"youtube_channel_handle":"@example"}`,
	}

	f.factory = &fakeAgentFactory{scripts: map[string]func(context.Context, *scriptedAgent, string) (string, error){
		"Scrape Agent": func(ctx context.Context, a *scriptedAgent, _ string) (string, error) {
			return a.call(ctx, "fetch_latest_videos_for_channel", f.fetchArgs)
		},
		"Vector DB Processor": func(ctx context.Context, a *scriptedAgent, prompt string) (string, error) {
			var results []string
			for _, id := range []string{"vid5", "vid4"} {
				url := domain.WatchURL(id)
				if !strings.Contains(prompt, url) {
					return "", errors.New("video url missing from context: " + url)
				}
				out, err := a.call(ctx, "add_video_to_vector_db", `{"video_url":"`+url+`"}`)
				if err != nil {
					return "", err
				}
				results = append(results, out)
			}
			return strings.Join(results, "\n"), nil
		},
		"General Research Agent": func(ctx context.Context, a *scriptedAgent, _ string) (string, error) {
			if _, err := a.call(ctx, "search_knowledge_base", `{"query":"my name is"}`); err != nil {
				return "", err
			}
			return `{"first_name": "Ada"}`, nil
		},
		"Follow-up Agent": func(ctx context.Context, a *scriptedAgent, _ string) (string, error) {
			return `{"first_name": "Ada", "email_address": "ada@example.com"}`, nil
		},
		"Fallback Agent": func(ctx context.Context, a *scriptedAgent, _ string) (string, error) {
			if _, ok := a.tools["web_search"]; ok {
				if _, err := a.call(ctx, "web_search", `{"query":"Ada example channel"}`); err != nil {
					return "", err
				}
			}
			return fallbackAnswer, nil
		},
	}}

	return f
}

func (f *researchFixture) useCase(withWeb bool) ResearchUseCase {
	channel := NewChannelUseCase(f.yt, nopLogger{})
	knowledge := NewKnowledgeUseCase(f.yt, fakeEmbedder{}, f.store, nil, nopLogger{}, KnowledgeOptions{})
	opts := ResearchOptions{MaxVideos: 2, SearchResults: 3, WebResults: 1}
	if withWeb {
		return NewResearchUseCase(channel, knowledge, f.web, f.factory, nopLogger{}, opts)
	}
	return NewResearchUseCase(channel, knowledge, nil, f.factory, nopLogger{}, opts)
}

func TestResearch_RunsFullCrew(t *testing.T) {
	f := newResearchFixture()
	uc := f.useCase(true)

	var started []string
	report, err := uc.Research(context.Background(), " @example ", func(_ int, task domain.Task) {
		started = append(started, task.Name)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"scrape_youtube_channel",
		"process_videos",
		"find_initial_information",
		"follow_up",
		"fallback",
	}, started)

	assert.Equal(t, "@example", report.Handle)
	require.Equal(t, 2, report.Videos.Len())
	assert.Equal(t, []string{domain.WatchURL("vid5"), domain.WatchURL("vid4")}, report.Videos.URLs())

	require.NotNil(t, report.Creator.FirstName)
	assert.Equal(t, "Ada", *report.Creator.FirstName)
	assert.Equal(t, []string{"go", "agents"}, report.Creator.MainTopicsCovered)
	require.NotNil(t, report.Creator.HasSkool)
	assert.True(t, *report.Creator.HasSkool)
	assert.Nil(t, report.Creator.LastName)
	assert.ElementsMatch(t, []string{"last_name", "linkedin_url", "x_url", "has_twitter"}, report.Creator.Missing())

	count, err := f.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, []string{"Ada example channel"}, f.web.queries)
	assert.Len(t, report.Crew.Tasks, 5)
	assert.Equal(t, fallbackAnswer, report.Crew.Final)
}

func TestResearch_PromptsCarryInputs(t *testing.T) {
	f := newResearchFixture()
	_, err := f.useCase(true).Research(context.Background(), "@example", nil)
	require.NoError(t, err)

	scrape := f.factory.created["Scrape Agent"]
	require.Len(t, scrape.prompts, 1)
	assert.Contains(t, scrape.prompts[0], "Fetch the latest 2 videos")
	assert.Contains(t, scrape.prompts[0], "YouTube channel handle: @example")

	fallback := f.factory.created["Fallback Agent"]
	require.Len(t, fallback.prompts, 1)
	assert.Contains(t, fallback.prompts[0], "--- follow_up ---")
}

func TestResearch_FetchToolCapsMaxResults(t *testing.T) {
	f := newResearchFixture()
	f.fetchArgs = `{"youtube_channel_handle":"@example","max_results":50}`

	report, err := f.useCase(true).Research(context.Background(), "@example", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Videos.Len())

	var fetched domain.VideoList
	require.NoError(t, json.Unmarshal([]byte(report.Crew.Tasks[0].Output), &fetched))
	assert.Equal(t, 2, fetched.Len())
}

func TestResearch_UnknownHandleAborts(t *testing.T) {
	f := newResearchFixture()
	f.fetchArgs = `{"youtube_channel_handle":"@missing"}`

	var started []string
	_, err := f.useCase(true).Research(context.Background(), "@missing", func(_ int, task domain.Task) {
		started = append(started, task.Name)
	})
	require.Error(t, err)

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "@missing", nf.Handle)
	assert.Equal(t, []string{"scrape_youtube_channel"}, started)
	assert.Empty(t, f.factory.created["Vector DB Processor"].prompts)
}

func TestResearch_WithoutWebSearch(t *testing.T) {
	f := newResearchFixture()

	report, err := f.useCase(false).Research(context.Background(), "@example", nil)
	require.NoError(t, err)
	assert.NotNil(t, report.Creator.FirstName)

	assert.Empty(t, f.factory.created["Fallback Agent"].tools)
	assert.Empty(t, f.web.queries)
}

func TestResearch_WebFailureIsSoft(t *testing.T) {
	f := newResearchFixture()
	f.web.err = errors.New("rate limited")

	_, err := f.useCase(true).Research(context.Background(), "@example", nil)
	require.NoError(t, err)
	assert.Len(t, f.web.queries, 1)
}

func TestResearch_UnparseableFinalAnswer(t *testing.T) {
	f := newResearchFixture()
	f.factory.scripts["Fallback Agent"] = func(context.Context, *scriptedAgent, string) (string, error) {
		return "I could not find anything.", nil
	}

	_, err := f.useCase(true).Research(context.Background(), "@example", nil)
	assert.Error(t, err)
}

func TestResearch_EmptyHandle(t *testing.T) {
	f := newResearchFixture()
	_, err := f.useCase(true).Research(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyHandle)
	assert.Empty(t, f.factory.created)
}
