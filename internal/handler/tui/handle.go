package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type HandleModel struct {
	parent *AppModel
	input  textinput.Model
	err    error
}

func NewHandleModel(parent *AppModel) *HandleModel {
	input := textinput.New()
	input.Placeholder = "@channelhandle"
	input.CharLimit = 100
	input.Width = 40
	input.Prompt = "> "

	return &HandleModel{parent: parent, input: input}
}

func (m *HandleModel) Init() tea.Cmd {
	m.err = nil
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *HandleModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyTab && m.parent.inspectionUseCase != nil {
		return m.parent.send(showInspectionMsg{})
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		handle := normalizeHandle(m.input.Value())
		if handle == "" {
			m.err = fmt.Errorf("the handle must not be empty")
			return nil
		}
		m.parent.logger.Info("Handle entered: " + handle)
		return m.parent.send(showVideosMsg{handle: handle})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// normalizeHandle trims the input and adds the leading @ when it is missing.
func normalizeHandle(raw string) string {
	handle := strings.TrimSpace(raw)
	if handle == "" {
		return ""
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle
}

func (m *HandleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("YouTube Channel Research"))
	b.WriteString("\n\n")
	b.WriteString("Please enter the YouTube handle to analyze:\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorMessageStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(hintStyle.Render("Enter to confirm. Ctrl+C or Esc to quit."))
	if m.parent.inspectionUseCase != nil {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Tab to ask about the home inspection report."))
	}
	return docStyle.Render(b.String())
}
