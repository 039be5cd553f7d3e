package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveVideos() []domain.VideoRecord {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	videos := make([]domain.VideoRecord, 5)
	for i := range videos {
		id := fmt.Sprintf("vid%d", 5-i)
		videos[i] = domain.VideoRecord{
			ID:          id,
			Title:       "Video " + id,
			PublishDate: base.Add(-time.Duration(i) * 24 * time.Hour),
			URL:         domain.WatchURL(id),
		}
	}
	return videos
}

func TestResolveAndFetch_EndToEnd(t *testing.T) {
	yt := &fakeYoutube{
		channels: map[string]string{"@example": "UC123"},
		videos:   map[string][]domain.VideoRecord{"UC123": fiveVideos()},
	}
	uc := NewChannelUseCase(yt, nopLogger{})

	list, err := uc.ResolveAndFetch(context.Background(), "@example", 2)
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())

	assert.Equal(t, "vid5", list.Videos[0].ID)
	assert.Equal(t, "vid4", list.Videos[1].ID)
	assert.True(t, list.Videos[0].PublishDate.After(list.Videos[1].PublishDate))
}

func TestResolveAndFetch_NotFoundShortCircuits(t *testing.T) {
	yt := &fakeYoutube{}
	uc := NewChannelUseCase(yt, nopLogger{})

	list, err := uc.ResolveAndFetch(context.Background(), "@missing", 5)
	require.Error(t, err)
	assert.Zero(t, list.Len())

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "@missing", nf.Handle)
	assert.Zero(t, yt.fetchCalls, "videos must not be fetched after a failed resolution")
}

func TestResolveAndFetch_FetchAPIErrorHasNoPartialResult(t *testing.T) {
	yt := &fakeYoutube{
		channels: map[string]string{"@example": "UC123"},
		fetchErr: &domain.APIError{StatusCode: 500},
	}
	uc := NewChannelUseCase(yt, nopLogger{})

	list, err := uc.ResolveAndFetch(context.Background(), "@example", 5)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Nil(t, list.Videos)
	assert.Equal(t, 1, yt.fetchCalls)
}

func TestResolveAndFetch_ValidatesInput(t *testing.T) {
	yt := &fakeYoutube{}
	uc := NewChannelUseCase(yt, nopLogger{})

	_, err := uc.ResolveAndFetch(context.Background(), "", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyHandle)

	_, err = uc.ResolveAndFetch(context.Background(), "@example", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidMaxResults)

	assert.Zero(t, yt.resolveCalls)
}
