package ports

import (
	"TUI_channel_research/internal/core/domain"
	"context"
	"net/http"
)

// HTTPDoer is the outbound HTTP capability. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type YoutubePort interface {
	ResolveChannelID(ctx context.Context, handle string) (string, error)
	FetchLatestVideos(ctx context.Context, channelID string, maxResults int) (domain.VideoList, error)
	GetVideoDetails(ctx context.Context, videoID string) (domain.VideoDetails, error)
}
