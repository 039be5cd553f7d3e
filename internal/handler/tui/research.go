package tui

import (
	"TUI_channel_research/internal/core/domain"
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var researchRuns atomic.Int64

// Messages carry the run that produced them; a stale run is ignored.
type researchStepMsg struct {
	run   int64
	index int
	task  domain.Task
}
type researchDoneMsg struct {
	run    int64
	report domain.ResearchReport
	err    error
}

type ResearchModel struct {
	parent  *AppModel
	handle  string
	videos  domain.VideoList
	spinner spinner.Model

	run    int64
	events <-chan tea.Msg
	cancel context.CancelFunc

	running bool
	steps   []string
	report  domain.ResearchReport
	err     error
}

func NewResearchModel(parent *AppModel, handle string, videos domain.VideoList) *ResearchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusMessageStyle

	return &ResearchModel{
		parent:  parent,
		handle:  handle,
		videos:  videos,
		spinner: s,
	}
}

// Init starts the crew in the background. Every task start and the final
// report arrive as messages on events.
func (m *ResearchModel) Init() tea.Cmd {
	m.run = researchRuns.Add(1)
	m.running = true
	m.steps = nil
	m.err = nil

	ctx, cancel := context.WithCancel(m.parent.appContext)
	m.cancel = cancel

	// Buffered past the task count so the crew never blocks once the view is left.
	events := make(chan tea.Msg, 16)
	m.events = events

	handle, run := m.handle, m.run
	go func() {
		defer close(events)
		report, err := m.parent.researchUseCase.Research(ctx, handle, func(index int, task domain.Task) {
			select {
			case events <- researchStepMsg{run: run, index: index, task: task}:
			default:
			}
		})
		events <- researchDoneMsg{run: run, report: report, err: err}
	}()

	return tea.Batch(m.spinner.Tick, listen(events))
}

func listen(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *ResearchModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case researchStepMsg:
		if msg.run != m.run {
			return nil
		}
		m.steps = append(m.steps, stepLabel(msg.index, msg.task))
		return listen(m.events)

	case researchDoneMsg:
		if msg.run != m.run {
			return nil
		}
		m.running = false
		m.cancel()
		if msg.err != nil {
			m.err = msg.err
			return nil
		}
		m.report = msg.report
		if m.report.Videos.Len() > 0 {
			m.videos = m.report.Videos
		}
		return nil

	case spinner.TickMsg:
		if !m.running {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyBackspace:
			if m.cancel != nil {
				m.cancel()
			}
			return m.parent.send(showVideosMsg{handle: m.handle})
		case tea.KeyCtrlR:
			if !m.running {
				return m.Init()
			}
		}
	}
	return nil
}

func stepLabel(index int, task domain.Task) string {
	return fmt.Sprintf("%d. %s", index+1, strings.ReplaceAll(task.Name, "_", " "))
}

func (m *ResearchModel) View() string {
	var b strings.Builder
	b.WriteString(listHeaderStyle.Render("Research of " + m.handle))
	b.WriteString("\n")

	for i, step := range m.steps {
		if m.running && i == len(m.steps)-1 {
			b.WriteString(m.spinner.View())
			b.WriteString(step)
		} else {
			b.WriteString(listItemStyle.Render(step))
		}
		b.WriteString("\n")
	}

	if m.running {
		if len(m.steps) == 0 {
			b.WriteString(m.spinner.View())
			b.WriteString("Starting the research crew…\n")
		}
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Backspace to cancel, Ctrl+C to quit."))
		return docStyle.Render(b.String())
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorMessageStyle.Render(errorText(m.err)))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Ctrl+R to retry, Backspace to go back, Ctrl+C to quit."))
		return docStyle.Render(b.String())
	}

	b.WriteString(titleStyle.Render("Content creator"))
	b.WriteString("\n")
	b.WriteString(renderCreator(m.report.Creator))
	b.WriteString("\n")

	if m.videos.Len() > 0 {
		b.WriteString(fmt.Sprintf("Based on %d videos:\n", m.videos.Len()))
		for _, url := range m.videos.URLs() {
			b.WriteString(listItemStyle.Render(urlStyle.Render(url)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render("Ctrl+R to run again, Backspace to go back, Ctrl+C to quit."))
	return docStyle.Render(b.String())
}

func renderCreator(c domain.ContentCreatorInfo) string {
	var b strings.Builder
	row := func(name string, value *string) {
		b.WriteString(fieldNameStyle.Render(name))
		if value == nil || strings.TrimSpace(*value) == "" {
			b.WriteString(missingValueStyle.Render("not found"))
		} else {
			b.WriteString(*value)
		}
		b.WriteString("\n")
	}

	row("First name", c.FirstName)
	row("Last name", c.LastName)
	row("Main topics", joinedOrNil(c.MainTopicsCovered))
	row("Bio", c.Bio)
	row("Email", c.EmailAddress)
	row("LinkedIn", c.LinkedInURL)
	row("Has LinkedIn", yesNo(c.HasLinkedIn))
	row("X", c.XURL)
	row("Has Twitter", yesNo(c.HasTwitter))
	row("Has Skool", yesNo(c.HasSkool))

	return b.String()
}

func joinedOrNil(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	s := strings.Join(values, ", ")
	return &s
}

func yesNo(v *bool) *string {
	if v == nil {
		return nil
	}
	s := "no"
	if *v {
		s = "yes"
	}
	return &s
}
