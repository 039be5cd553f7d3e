package tui

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"TUI_channel_research/internal/core/usecases"
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
)

type currentView int

const (
	viewHandle currentView = iota
	viewVideos
	viewResearch
	viewInspection
)

type Options struct {
	MaxVideos int
	// OpenURL opens a video; defaults to the system browser.
	OpenURL func(url string) error
	// Inspection enables the home inspection view; nil hides it.
	Inspection usecases.InspectionUseCase
}

type AppModel struct {
	channelUseCase    usecases.ChannelUseCase
	researchUseCase   usecases.ResearchUseCase
	inspectionUseCase usecases.InspectionUseCase
	logger            ports.LoggerPort
	maxVideos         int
	openURL           func(url string) error

	handleModel     *HandleModel
	videosModel     *VideosModel
	researchModel   *ResearchModel
	inspectionModel *InspectionModel

	currentView currentView

	appContext context.Context
	cancelApp  context.CancelFunc

	width  int
	height int
}

func NewAppModel(
	channelUC usecases.ChannelUseCase,
	researchUC usecases.ResearchUseCase,
	log ports.LoggerPort,
	opts Options,
) *AppModel {
	appCtx, cancel := context.WithCancel(context.Background())

	if opts.OpenURL == nil {
		opts.OpenURL = browser.OpenURL
	}

	m := &AppModel{
		channelUseCase:    channelUC,
		researchUseCase:   researchUC,
		inspectionUseCase: opts.Inspection,
		logger:            log,
		maxVideos:         opts.MaxVideos,
		openURL:           opts.OpenURL,

		appContext: appCtx,
		cancelApp:  cancel,
	}

	m.handleModel = NewHandleModel(m)
	m.currentView = viewHandle
	return m
}

func (m *AppModel) Init() tea.Cmd {
	return m.handleModel.Init()
}

// Navigation messages used by the sub-models
type showHandleMsg struct{}
type showVideosMsg struct{ handle string }
type showResearchMsg struct {
	handle string
	videos domain.VideoList
}
type showInspectionMsg struct{}

func (m *AppModel) send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.logger.Info("Ctrl+C or Esc pressed, quitting")
			m.cancelApp()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case showHandleMsg:
		m.currentView = viewHandle
		m.handleModel = NewHandleModel(m)
		cmds = append(cmds, m.handleModel.Init())
		return m, tea.Batch(cmds...)

	case showVideosMsg:
		m.currentView = viewVideos
		m.videosModel = NewVideosModel(m, msg.handle)
		cmds = append(cmds, m.videosModel.Init())
		return m, tea.Batch(cmds...)

	case showResearchMsg:
		m.currentView = viewResearch
		m.researchModel = NewResearchModel(m, msg.handle, msg.videos)
		cmds = append(cmds, m.researchModel.Init())
		return m, tea.Batch(cmds...)

	case showInspectionMsg:
		if m.inspectionUseCase == nil {
			return m, nil
		}
		m.currentView = viewInspection
		m.inspectionModel = NewInspectionModel(m)
		cmds = append(cmds, m.inspectionModel.Init())
		return m, tea.Batch(cmds...)
	}

	switch m.currentView {
	case viewHandle:
		cmds = append(cmds, m.handleModel.Update(msg))
	case viewVideos:
		if m.videosModel != nil {
			cmds = append(cmds, m.videosModel.Update(msg))
		}
	case viewResearch:
		if m.researchModel != nil {
			cmds = append(cmds, m.researchModel.Update(msg))
		}
	case viewInspection:
		if m.inspectionModel != nil {
			cmds = append(cmds, m.inspectionModel.Update(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *AppModel) View() string {
	switch m.currentView {
	case viewHandle:
		return m.handleModel.View()
	case viewVideos:
		return m.videosModel.View()
	case viewResearch:
		return m.researchModel.View()
	case viewInspection:
		return m.inspectionModel.View()
	default:
		return fmt.Sprintf("unknown view %d", m.currentView)
	}
}
