package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"fmt"
	"strings"
)

type channelUseCase struct {
	service ports.YoutubePort
	log     ports.LoggerPort
}

type ChannelUseCase interface {
	ResolveAndFetch(ctx context.Context, handle string, maxResults int) (domain.VideoList, error)
}

func NewChannelUseCase(service ports.YoutubePort, logger ports.LoggerPort) ChannelUseCase {
	return &channelUseCase{
		service: service,
		log:     logger,
	}
}

// ResolveAndFetch resolves the handle and lists the channel's latest videos.
// The first failure is returned as is, so callers can match
// *domain.NotFoundError and *domain.APIError.
func (uc *channelUseCase) ResolveAndFetch(ctx context.Context, handle string, maxResults int) (domain.VideoList, error) {
	uc.log.Info("Init Resolve And Fetch for " + handle)

	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domain.VideoList{}, domain.ErrEmptyHandle
	}

	if maxResults <= 0 {
		return domain.VideoList{}, domain.ErrInvalidMaxResults
	}

	channelID, err := uc.service.ResolveChannelID(ctx, handle)
	if err != nil {
		uc.log.Error("Failed to resolve channel handle", err)
		return domain.VideoList{}, fmt.Errorf("error while resolving channel %s: %w", handle, err)
	}

	videos, err := uc.service.FetchLatestVideos(ctx, channelID, maxResults)
	if err != nil {
		uc.log.Error("Failed to fetch latest videos", err)
		return domain.VideoList{}, fmt.Errorf("error while fetching videos of channel %s: %w", channelID, err)
	}

	uc.log.Info(fmt.Sprintf("Resolve And Fetch completed: %d videos", videos.Len()))

	return videos, nil
}
