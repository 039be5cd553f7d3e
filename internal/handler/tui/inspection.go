package tui

import (
	"TUI_channel_research/internal/core/domain"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var inspectionRuns atomic.Int64

type inspectionStepMsg struct {
	run   int64
	index int
	task  domain.Task
}
type inspectionDoneMsg struct {
	run    int64
	report domain.InspectionReport
	err    error
}

// InspectionModel asks a question about the inspection PDF and shows the
// answer with the drafted contractor email.
type InspectionModel struct {
	parent  *AppModel
	input   textinput.Model
	spinner spinner.Model

	run    int64
	events <-chan tea.Msg
	cancel context.CancelFunc

	running bool
	steps   []string
	report  *domain.InspectionReport
	err     error
}

func NewInspectionModel(parent *AppModel) *InspectionModel {
	input := textinput.New()
	input.Placeholder = "Which section of the report needs a work order?"
	input.CharLimit = 300
	input.Width = 60
	input.Prompt = "> "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusMessageStyle

	return &InspectionModel{parent: parent, input: input, spinner: s}
}

func (m *InspectionModel) Init() tea.Cmd {
	m.err = nil
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *InspectionModel) start(question string) tea.Cmd {
	m.run = inspectionRuns.Add(1)
	m.running = true
	m.steps = nil
	m.report = nil
	m.err = nil
	m.input.Blur()

	ctx, cancel := context.WithCancel(m.parent.appContext)
	m.cancel = cancel

	events := make(chan tea.Msg, 16)
	m.events = events

	run := m.run
	m.parent.logger.Info("Inspection question: " + question)
	go func() {
		defer close(events)
		report, err := m.parent.inspectionUseCase.Inspect(ctx, question, func(index int, task domain.Task) {
			select {
			case events <- inspectionStepMsg{run: run, index: index, task: task}:
			default:
			}
		})
		events <- inspectionDoneMsg{run: run, report: report, err: err}
	}()

	return tea.Batch(m.spinner.Tick, listen(events))
}

func (m *InspectionModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case inspectionStepMsg:
		if msg.run != m.run {
			return nil
		}
		m.steps = append(m.steps, stepLabel(msg.index, msg.task))
		return listen(m.events)

	case inspectionDoneMsg:
		if msg.run != m.run {
			return nil
		}
		m.running = false
		m.cancel()
		if msg.err != nil {
			m.parent.logger.Error("Inspection failed", msg.err)
			m.err = msg.err
		} else {
			report := msg.report
			m.report = &report
		}
		m.input.SetValue("")
		return m.input.Focus()

	case spinner.TickMsg:
		if !m.running {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyTab {
			if m.cancel != nil {
				m.cancel()
			}
			return m.parent.send(showHandleMsg{})
		}
		if m.running {
			return nil
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				m.err = domain.ErrEmptyQuestion
				return nil
			}
			return m.start(question)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *InspectionModel) View() string {
	var b strings.Builder
	b.WriteString(listHeaderStyle.Render("Home inspection: " + filepath.Base(m.parent.inspectionUseCase.PDFPath())))
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
			b.WriteString("Reading the inspection report…\n")
		}
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Tab to cancel, Ctrl+C to quit."))
		return docStyle.Render(b.String())
	}

	if m.report != nil {
		b.WriteString(titleStyle.Render("Answer"))
		b.WriteString("\n")
		b.WriteString(m.report.Answer)
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Email to the contractor"))
		b.WriteString("\n")
		b.WriteString(m.report.Email)
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errorMessageStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString("Which section of the report would you like to generate a work order for?\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("Enter to ask, Tab to go back, Ctrl+C or Esc to quit."))
	return docStyle.Render(b.String())
}
