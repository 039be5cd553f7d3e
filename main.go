// main.go
package main

import (
	"TUI_channel_research/infrastructure/config"
	"TUI_channel_research/infrastructure/document"
	"TUI_channel_research/infrastructure/llm"
	"TUI_channel_research/infrastructure/logger"
	"TUI_channel_research/infrastructure/provider"
	"TUI_channel_research/infrastructure/token_manager"
	"TUI_channel_research/infrastructure/vectorstore"
	"TUI_channel_research/infrastructure/websearch"
	"TUI_channel_research/internal/core/ports"
	"TUI_channel_research/internal/core/usecases"
	"TUI_channel_research/internal/handler/tui"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultConfigPath = "config.yaml"

func fail(log ports.LoggerPort, msg string, err error) {
	if log != nil {
		log.Error(msg, err)
		log.Close()
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	configPath := defaultConfigPath
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fail(nil, "Failed to load configuration", err)
	}

	// Initialize Logger
	appLogger, err := logger.NewFileLogger(cfg.LogDir, "channel_research_tui")
	if err != nil {
		fail(nil, "Failed to initialize logger", err)
	}
	defer appLogger.Close()
	appLogger.Info("Application starting...")

	if err := cfg.Validate(); err != nil {
		fail(appLogger, "Invalid configuration", err)
	}

	// Initialize Services
	tokenService := token_manager.NewTokenService(cfg.Youtube.TokenFile)
	creds, err := cfg.YoutubeCredentials(tokenService)
	if err != nil {
		fail(appLogger, "Failed to load YouTube credentials", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	youtubeProvider := provider.NewYoutubeProvider(provider.Config{
		Credentials: creds,
		HTTPClient:  httpClient,
		Endpoint:    cfg.Youtube.Endpoint,
	}, appLogger)

	ctx := context.Background()
	gemini, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:         cfg.Gemini.APIKey,
		Model:          cfg.Gemini.Model,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
	}, appLogger)
	if err != nil {
		fail(appLogger, "Failed to initialize Gemini", err)
	}
	defer gemini.Close()

	store, err := vectorstore.NewSQLiteStore(cfg.Knowledge.Path)
	if err != nil {
		fail(appLogger, "Failed to open the knowledge base", err)
	}
	defer store.Close()

	var webSearch ports.WebSearchPort
	if cfg.WebSearchEnabled() {
		webSearch = websearch.NewFirecrawlClient(websearch.Config{
			APIKey:   cfg.Firecrawl.APIKey,
			Endpoint: cfg.Firecrawl.Endpoint,
		}, appLogger)
	} else {
		appLogger.Warning("FIRECRAWL_API_KEY not set, the fallback agent runs without web search")
	}

	channelUseCase := usecases.NewChannelUseCase(youtubeProvider, appLogger)
	knowledgeUseCase := usecases.NewKnowledgeUseCase(youtubeProvider, gemini, store, document.NewPDFReader(appLogger), appLogger, usecases.KnowledgeOptions{
		ChunkSize:    cfg.Knowledge.ChunkSize,
		ChunkOverlap: cfg.Knowledge.ChunkOverlap,
	})
	researchUseCase := usecases.NewResearchUseCase(channelUseCase, knowledgeUseCase, webSearch, gemini, appLogger, usecases.ResearchOptions{
		MaxVideos:     cfg.MaxVideos,
		SearchResults: cfg.Knowledge.SearchResults,
	})

	var inspectionUseCase usecases.InspectionUseCase
	if cfg.InspectionEnabled() {
		inspectionUseCase = usecases.NewInspectionUseCase(knowledgeUseCase, gemini, appLogger, usecases.InspectionOptions{
			PDFPath:       cfg.Inspection.PDFPath,
			SenderName:    cfg.Inspection.SenderName,
			SenderCompany: cfg.Inspection.SenderCompany,
			SearchResults: cfg.Knowledge.SearchResults,
		})
	}

	// Create the initial TUI model
	initialModel := tui.NewAppModel(channelUseCase, researchUseCase, appLogger, tui.Options{
		MaxVideos:  cfg.MaxVideos,
		Inspection: inspectionUseCase,
	})

	// Start Bubble Tea program
	p := tea.NewProgram(initialModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		appLogger.Error("Error running TUI program", err)
		fmt.Fprintf(os.Stderr, "Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Application finished.")
}
