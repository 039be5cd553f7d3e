package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type ResearchOptions struct {
	MaxVideos     int
	SearchResults int
	WebResults    int
}

type researchUseCase struct {
	channel   ChannelUseCase
	knowledge KnowledgeUseCase
	web       ports.WebSearchPort
	agents    ports.AgentFactoryPort
	log       ports.LoggerPort
	opts      ResearchOptions
}

type ResearchUseCase interface {
	Research(ctx context.Context, handle string, hook TaskHook) (domain.ResearchReport, error)
}

func NewResearchUseCase(
	channel ChannelUseCase,
	knowledge KnowledgeUseCase,
	web ports.WebSearchPort,
	agents ports.AgentFactoryPort,
	logger ports.LoggerPort,
	opts ResearchOptions,
) ResearchUseCase {
	if opts.MaxVideos <= 0 {
		opts.MaxVideos = 5
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = 5
	}
	if opts.WebResults <= 0 {
		opts.WebResults = 5
	}

	return &researchUseCase{
		channel:   channel,
		knowledge: knowledge,
		web:       web,
		agents:    agents,
		log:       logger,
		opts:      opts,
	}
}

// researchRun holds what the tools of one Research call collect.
type researchRun struct {
	mu     sync.Mutex
	videos domain.VideoList
}

type fetchVideosParams struct {
	YoutubeChannelHandle string `json:"youtube_channel_handle" description:"The YouTube channel handle, for example '@channelhandle'."`
	MaxResults           int    `json:"max_results,omitempty" description:"The maximum number of videos to return."`
}

type addVideoParams struct {
	VideoURL string `json:"video_url" description:"The URL of the YouTube video to add to the vector DB."`
}

type searchParams struct {
	Query string `json:"query" description:"What to look for."`
}

func (uc *researchUseCase) fetchVideosTool(run *researchRun) domain.Tool {
	return domain.Tool{
		Name:        "fetch_latest_videos_for_channel",
		Description: "Fetches the latest videos for a specified YouTube channel handle.",
		Params:      fetchVideosParams{},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var p fetchVideosParams
			if err := json.Unmarshal(args, &p); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			maxResults := p.MaxResults
			if maxResults <= 0 || maxResults > uc.opts.MaxVideos {
				maxResults = uc.opts.MaxVideos
			}

			videos, err := uc.channel.ResolveAndFetch(ctx, p.YoutubeChannelHandle, maxResults)
			if err != nil {
				return "", err
			}

			run.mu.Lock()
			run.videos = videos
			run.mu.Unlock()

			return marshalToolResult(videos)
		},
	}
}

func (uc *researchUseCase) addVideoTool() domain.Tool {
	return domain.Tool{
		Name:        "add_video_to_vector_db",
		Description: "Adds a YouTube video to the vector database.",
		Params:      addVideoParams{},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var p addVideoParams
			if err := json.Unmarshal(args, &p); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			return marshalToolResult(uc.knowledge.IngestVideo(ctx, p.VideoURL))
		},
	}
}

func (uc *researchUseCase) knowledgeSearchTool() domain.Tool {
	return domain.Tool{
		Name:        "search_knowledge_base",
		Description: "Searches the content of the videos added to the vector database.",
		Params:      searchParams{},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var p searchParams
			if err := json.Unmarshal(args, &p); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			results, err := uc.knowledge.Search(ctx, p.Query, uc.opts.SearchResults)
			if err != nil {
				return "search failed: " + err.Error(), nil
			}
			return FormatContext(results), nil
		},
	}
}

func (uc *researchUseCase) webSearchTool() domain.Tool {
	return domain.Tool{
		Name:        "web_search",
		Description: "Searches the web and returns the matching pages.",
		Params:      searchParams{},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var p searchParams
			if err := json.Unmarshal(args, &p); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			results, err := uc.web.Search(ctx, p.Query, uc.opts.WebResults)
			if err != nil {
				uc.log.Error("Web search failed", err)
				return "search failed: " + err.Error(), nil
			}
			return marshalToolResult(results)
		},
	}
}

func marshalToolResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("error while encoding tool result: %w", err)
	}
	return string(b), nil
}

func (uc *researchUseCase) buildAgents(run *researchRun) (map[string]ports.AgentPort, error) {
	toolsByAgent := map[string][]domain.Tool{
		agentScrape:          {uc.fetchVideosTool(run)},
		agentVectorDB:        {uc.addVideoTool()},
		agentGeneralResearch: {uc.knowledgeSearchTool()},
		agentFollowUp:        {uc.knowledgeSearchTool()},
	}
	if uc.web != nil {
		toolsByAgent[agentFallback] = []domain.Tool{uc.webSearchTool()}
	}

	agents := make(map[string]ports.AgentPort, len(researchProfiles))
	for name, profile := range researchProfiles {
		agent, err := uc.agents.NewAgent(profile, toolsByAgent[name]...)
		if err != nil {
			return nil, fmt.Errorf("error while creating agent %s: %w", name, err)
		}
		agents[name] = agent
	}

	return agents, nil
}

func (uc *researchUseCase) Research(ctx context.Context, handle string, hook TaskHook) (domain.ResearchReport, error) {
	uc.log.Info("Init Research for " + handle)

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domain.ResearchReport{}, domain.ErrEmptyHandle
	}

	run := &researchRun{}

	agents, err := uc.buildAgents(run)
	if err != nil {
		return domain.ResearchReport{}, err
	}

	crew, err := NewCrew(agents, researchTasks, uc.log)
	if err != nil {
		return domain.ResearchReport{}, err
	}
	crew.OnTaskStart(hook)

	output, err := crew.Kickoff(ctx, map[string]string{
		"youtube_channel_handle": handle,
		"max_videos":             strconv.Itoa(uc.opts.MaxVideos),
	})
	if err != nil {
		uc.log.Error("Research crew failed", err)
		return domain.ResearchReport{}, fmt.Errorf("error while researching channel %s: %w", handle, err)
	}

	creator, err := domain.ParseContentCreatorInfo(output.Final)
	if err != nil {
		uc.log.Error("Failed to parse the crew answer", err)
		return domain.ResearchReport{}, err
	}

	run.mu.Lock()
	videos := run.videos
	run.mu.Unlock()

	uc.log.Info(fmt.Sprintf("Research completed, %d fields still missing", len(creator.Missing())))

	return domain.ResearchReport{
		Handle:  handle,
		Videos:  videos,
		Creator: creator,
		Crew:    output,
	}, nil
}
