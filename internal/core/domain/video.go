package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]+)`)

// VideoRecord is one video as returned by the channel search, normalized.
type VideoRecord struct {
	ID          string    `json:"video_id"`
	Title       string    `json:"title"`
	PublishDate time.Time `json:"publish_date"`
	URL         string    `json:"video_url"`
}

// VideoList keeps the platform order (newest first).
type VideoList struct {
	Videos []VideoRecord `json:"videos"`
}

func (l VideoList) Len() int {
	return len(l.Videos)
}

// URLs returns the watch URL of every video, in list order.
func (l VideoList) URLs() []string {
	urls := make([]string, len(l.Videos))
	for i, v := range l.Videos {
		urls[i] = v.URL
	}
	return urls
}

// VideoDetails holds the metadata indexed into the knowledge base.
type VideoDetails struct {
	ID           string
	Title        string
	Description  string
	ChannelTitle string
	Tags         []string
	PublishedAt  time.Time
	Duration     time.Duration
}

// NewVideoRecord builds a record from the raw search fields.
func NewVideoRecord(videoID, title, publishedAt string) (VideoRecord, error) {
	publishDate, err := ParsePublishDate(publishedAt)
	if err != nil {
		return VideoRecord{}, err
	}

	return VideoRecord{
		ID:          videoID,
		Title:       title,
		PublishDate: publishDate,
		URL:         WatchURL(videoID),
	}, nil
}

func WatchURL(videoID string) string {
	return fmt.Sprintf(watchURLTemplate, videoID)
}

// ParsePublishDate parses the platform timestamp and normalizes it to UTC.
// A trailing "Z" is rewritten to an explicit "+00:00" offset first.
func ParsePublishDate(raw string) (time.Time, error) {
	value := raw
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}

	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("error while parsing publish date %q: %w", raw, err)
	}

	return parsed.UTC(), nil
}

// VideoIDFromURL extracts the video id from any watch, short or youtu.be URL.
func VideoIDFromURL(videoURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(videoURL)
	if len(m) < 2 || m[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidVideoURL, videoURL)
	}

	return m[1], nil
}
