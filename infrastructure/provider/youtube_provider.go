package provider

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/sosodev/duration"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxSearchResults is the largest page the search endpoint accepts.
const maxSearchResults = 50

// Credentials authenticate calls to the YouTube Data API. An API key is
// enough for search; a token is used when present.
type Credentials struct {
	APIKey string
	Token  *oauth2.Token
}

func (c Credentials) Empty() bool {
	return c.APIKey == "" && c.Token == nil
}

type Config struct {
	Credentials Credentials
	HTTPClient  ports.HTTPDoer
	// Endpoint overrides the API base URL, mostly for tests.
	Endpoint string
}

type youtubeProvider struct {
	creds      Credentials
	httpClient ports.HTTPDoer
	endpoint   string
	log        ports.LoggerPort
	service    *youtube.Service
	mu         sync.Mutex
}

func NewYoutubeProvider(cfg Config, logger ports.LoggerPort) ports.YoutubePort {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &youtubeProvider{
		creds:      cfg.Credentials,
		httpClient: httpClient,
		endpoint:   cfg.Endpoint,
		log:        logger,
	}
}

// doerTransport lets the generated client send requests through an
// injected HTTPDoer.
type doerTransport struct {
	doer ports.HTTPDoer
}

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.doer.Do(req)
}

func (s *youtubeProvider) getYoutubeService(ctx context.Context) (*youtube.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.service != nil {
		return s.service, nil
	}

	if s.creds.Empty() {
		return nil, fmt.Errorf("error while create youtube service: no api key or token configured")
	}

	var transport http.RoundTripper = doerTransport{doer: s.httpClient}
	if s.creds.Token != nil {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(s.creds.Token),
			Base:   transport,
		}
	}

	opts := []option.ClientOption{option.WithHTTPClient(&http.Client{Transport: transport})}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		s.log.Error("error while create youtube service", err)
		return nil, fmt.Errorf("error while create youtube service: %w", err)
	}

	s.service = service
	s.log.Info("Create youtube service completed")

	return service, nil
}

// callOptions sends the api key as a query parameter. The http client is
// injected, so option.WithAPIKey would not be applied.
func (s *youtubeProvider) callOptions() []googleapi.CallOption {
	if s.creds.APIKey == "" {
		return nil
	}
	return []googleapi.CallOption{googleapi.QueryParameter("key", s.creds.APIKey)}
}

func (s *youtubeProvider) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	if strings.TrimSpace(handle) == "" {
		return "", domain.ErrEmptyHandle
	}

	service, err := s.getYoutubeService(ctx)
	if err != nil {
		return "", err
	}

	call := service.Search.List([]string{"snippet"}).
		Type("channel").
		Q(handle).
		Context(ctx)

	response, err := call.Do(s.callOptions()...)
	if err != nil {
		s.log.Error("error while searching channel "+handle, err)
		return "", mapCallError("search channel", err)
	}

	if len(response.Items) == 0 {
		s.log.Warning("No youtube channel found for handle " + handle)
		return "", &domain.NotFoundError{Handle: handle}
	}

	first := response.Items[0]
	if first.Id == nil || first.Id.ChannelId == "" {
		return "", fmt.Errorf("channel search for %s returned an item without channel id", handle)
	}

	s.log.Info(fmt.Sprintf("Resolved handle %s to channel %s", handle, first.Id.ChannelId))

	return first.Id.ChannelId, nil
}

func (s *youtubeProvider) FetchLatestVideos(ctx context.Context, channelID string, maxResults int) (domain.VideoList, error) {
	if maxResults <= 0 {
		return domain.VideoList{}, domain.ErrInvalidMaxResults
	}

	service, err := s.getYoutubeService(ctx)
	if err != nil {
		return domain.VideoList{}, err
	}

	requested := maxResults
	if requested > maxSearchResults {
		requested = maxSearchResults
	}

	call := service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		MaxResults(int64(requested)).
		Order("date").
		Type("video").
		Context(ctx)

	response, err := call.Do(s.callOptions()...)
	if err != nil {
		s.log.Error("error while listing videos of channel "+channelID, err)
		return domain.VideoList{}, mapCallError("search videos", err)
	}

	videos := make([]domain.VideoRecord, 0, len(response.Items))
	for _, item := range response.Items {
		if len(videos) == maxResults {
			break
		}

		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			s.log.Warning("Skipping search item without video id")
			continue
		}

		record, err := domain.NewVideoRecord(item.Id.VideoId, item.Snippet.Title, item.Snippet.PublishedAt)
		if err != nil {
			return domain.VideoList{}, fmt.Errorf("error while converting video %s: %w", item.Id.VideoId, err)
		}

		videos = append(videos, record)
	}

	s.log.Info(fmt.Sprintf("Fetched %d videos for channel %s", len(videos), channelID))

	return domain.VideoList{Videos: videos}, nil
}

func (s *youtubeProvider) GetVideoDetails(ctx context.Context, videoID string) (domain.VideoDetails, error) {
	service, err := s.getYoutubeService(ctx)
	if err != nil {
		return domain.VideoDetails{}, err
	}

	call := service.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx)
	response, err := call.Do(s.callOptions()...)
	if err != nil {
		return domain.VideoDetails{}, mapCallError("list video", err)
	}

	if len(response.Items) == 0 || response.Items[0].Snippet == nil {
		return domain.VideoDetails{}, fmt.Errorf("video %s not found", videoID)
	}

	item := response.Items[0]

	details := domain.VideoDetails{
		ID:           item.Id,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
		Tags:         item.Snippet.Tags,
	}

	if item.Snippet.PublishedAt != "" {
		published, err := domain.ParsePublishDate(item.Snippet.PublishedAt)
		if err != nil {
			return domain.VideoDetails{}, err
		}
		details.PublishedAt = published
	}

	if item.ContentDetails != nil && item.ContentDetails.Duration != "" {
		parsed, err := duration.Parse(item.ContentDetails.Duration)
		if err != nil {
			return domain.VideoDetails{}, fmt.Errorf("error while parsing video duration: %w", err)
		}
		details.Duration = parsed.ToTimeDuration()
	}

	return details, nil
}

func mapCallError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &domain.APIError{StatusCode: gerr.Code, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return fmt.Errorf("error in call youtube api (%s): %w", op, err)
}
