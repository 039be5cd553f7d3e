package tui

import (
	"TUI_channel_research/internal/core/domain"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Reloads are rate limited to spare the search quota.
const reloadCooldown = time.Minute

type videosLoadedMsg struct {
	handle string
	videos domain.VideoList
}
type videosLoadErrorMsg struct {
	handle string
	err    error
}
type videoOpenedMsg struct {
	url string
	err error
}

type VideosModel struct {
	parent        *AppModel
	handle        string
	videos        domain.VideoList
	cursor        int
	err           error
	loading       bool
	lastRefresh   time.Time
	statusMessage string
}

func NewVideosModel(parent *AppModel, handle string) *VideosModel {
	return &VideosModel{
		parent:  parent,
		handle:  handle,
		loading: true,
	}
}

func (m *VideosModel) Init() tea.Cmd {
	m.loading = true
	m.err = nil
	m.videos = domain.VideoList{}
	m.statusMessage = ""
	m.parent.logger.Info("VideosModel: fetching videos for " + m.handle)

	handle, maxVideos := m.handle, m.parent.maxVideos
	return func() tea.Msg {
		videos, err := m.parent.channelUseCase.ResolveAndFetch(m.parent.appContext, handle, maxVideos)
		if err != nil {
			m.parent.logger.Error("Failed to fetch videos", err)
			return videosLoadErrorMsg{handle: handle, err: err}
		}
		m.parent.logger.Info(fmt.Sprintf("Fetched %d videos.", videos.Len()))
		return videosLoadedMsg{handle: handle, videos: videos}
	}
}

func (m *VideosModel) openVideo(url string) tea.Cmd {
	return func() tea.Msg {
		return videoOpenedMsg{url: url, err: m.parent.openURL(url)}
	}
}

func (m *VideosModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case videosLoadedMsg:
		if msg.handle != m.handle {
			return nil
		}
		m.loading = false
		m.videos = msg.videos
		m.cursor = 0
		m.lastRefresh = time.Now()
		if m.videos.Len() == 0 {
			m.statusMessage = "The channel has no videos."
		}
		return nil

	case videosLoadErrorMsg:
		if msg.handle != m.handle {
			return nil
		}
		m.loading = false
		m.err = msg.err
		return nil

	case videoOpenedMsg:
		if msg.err != nil {
			m.parent.logger.Error("Could not open the browser", msg.err)
			m.statusMessage = fmt.Sprintf("Could not open %s: %v", msg.url, msg.err)
		} else {
			m.statusMessage = "Opened " + msg.url
		}
		return nil

	case tea.KeyMsg:
		if m.loading {
			return nil
		}

		if msg.Type == tea.KeyBackspace {
			return m.parent.send(showHandleMsg{})
		}

		if msg.Type == tea.KeyCtrlR {
			if m.lastRefresh.IsZero() || time.Since(m.lastRefresh) >= reloadCooldown {
				return m.Init()
			}
			remaining := (reloadCooldown - time.Since(m.lastRefresh)).Round(time.Second)
			m.statusMessage = fmt.Sprintf("Wait %s before reloading.", remaining)
			return nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyEnter {
				return m.parent.send(showHandleMsg{})
			}
			return nil
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.videos.Len()-1 {
				m.cursor++
			}
		case "enter", "o":
			if m.videos.Len() > 0 {
				return m.openVideo(m.videos.Videos[m.cursor].URL)
			}
		case "r":
			m.parent.logger.Info("Research requested for " + m.handle)
			return m.parent.send(showResearchMsg{handle: m.handle, videos: m.videos})
		}
	}
	return nil
}

func (m *VideosModel) View() string {
	var b strings.Builder
	b.WriteString(listHeaderStyle.Render("Latest videos of " + m.handle))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("Loading videos…\n\n")
		b.WriteString(hintStyle.Render("Ctrl+C to quit."))
		return docStyle.Render(b.String())
	}

	if m.err != nil {
		b.WriteString(errorMessageStyle.Render(errorText(m.err)))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Enter or Backspace to try another handle. Ctrl+R to retry. Ctrl+C to quit."))
		return docStyle.Render(b.String())
	}

	for i, v := range m.videos.Videos {
		line := fmt.Sprintf("%s %s", v.Title, dateStyle.Render(v.PublishDate.Format("2006-01-02")))
		if m.cursor == i {
			b.WriteString(selectedListItemStyle.Render(line))
			b.WriteString("\n")
			b.WriteString(listItemStyle.Render(urlStyle.Render(v.URL)))
		} else {
			b.WriteString(listItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓ or j/k to navigate, Enter or o to open, r to research the creator."))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Backspace to change handle, Ctrl+R to reload, Ctrl+C to quit."))

	if m.statusMessage != "" {
		b.WriteString("\n\n")
		b.WriteString(statusMessageStyle.Render(m.statusMessage))
	}

	return docStyle.Render(b.String())
}

// errorText names the failure kinds the user can act on.
func errorText(err error) string {
	if nf, ok := domain.AsNotFound(err); ok {
		return fmt.Sprintf("No channel found for %s.", nf.Handle)
	}
	if apiErr, ok := domain.AsAPIError(err); ok {
		return fmt.Sprintf("YouTube API error (status %d): %v", apiErr.StatusCode, err)
	}
	return fmt.Sprintf("Error: %v", err)
}
