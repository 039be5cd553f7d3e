package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

type InspectionOptions struct {
	PDFPath       string
	SenderName    string
	SenderCompany string
	SearchResults int
}

type inspectionUseCase struct {
	knowledge KnowledgeUseCase
	agents    ports.AgentFactoryPort
	log       ports.LoggerPort
	opts      InspectionOptions

	// The PDF is indexed on the first question and kept afterwards.
	mu       sync.Mutex
	ingested bool
}

type InspectionUseCase interface {
	PDFPath() string
	Inspect(ctx context.Context, question string, hook TaskHook) (domain.InspectionReport, error)
}

func NewInspectionUseCase(
	knowledge KnowledgeUseCase,
	agents ports.AgentFactoryPort,
	logger ports.LoggerPort,
	opts InspectionOptions,
) InspectionUseCase {
	if opts.SearchResults <= 0 {
		opts.SearchResults = 5
	}
	if strings.TrimSpace(opts.SenderName) == "" {
		opts.SenderName = "The homeowner"
	}

	return &inspectionUseCase{
		knowledge: knowledge,
		agents:    agents,
		log:       logger,
		opts:      opts,
	}
}

func (uc *inspectionUseCase) PDFPath() string {
	return uc.opts.PDFPath
}

type searchPDFParams struct {
	Query string `json:"query" description:"What to look for in the home inspection report."`
}

func (uc *inspectionUseCase) searchPDFTool(source string) domain.Tool {
	return domain.Tool{
		Name:        "search_pdf",
		Description: "Searches the content of the home inspection PDF.",
		Params:      searchPDFParams{},
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			var p searchPDFParams
			if err := json.Unmarshal(args, &p); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			results, err := uc.knowledge.SearchSource(ctx, source, p.Query, uc.opts.SearchResults)
			if err != nil {
				return "search failed: " + err.Error(), nil
			}
			return FormatContext(results), nil
		},
	}
}

func (uc *inspectionUseCase) ensureIngested(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.ingested {
		return nil
	}

	result := uc.knowledge.IngestPDF(ctx, uc.opts.PDFPath)
	if !result.Success {
		return fmt.Errorf("error while indexing %s", result.Source)
	}

	uc.ingested = true
	return nil
}

func (uc *inspectionUseCase) buildAgents(source string) (map[string]ports.AgentPort, error) {
	toolsByAgent := map[string][]domain.Tool{
		agentPDFResearch: {uc.searchPDFTool(source)},
	}

	agents := make(map[string]ports.AgentPort, len(inspectionProfiles))
	for name, profile := range inspectionProfiles {
		agent, err := uc.agents.NewAgent(profile, toolsByAgent[name]...)
		if err != nil {
			return nil, fmt.Errorf("error while creating agent %s: %w", name, err)
		}
		agents[name] = agent
	}

	return agents, nil
}

// Inspect answers question from the inspection PDF and drafts the
// contractor email for the issues found.
func (uc *inspectionUseCase) Inspect(ctx context.Context, question string, hook TaskHook) (domain.InspectionReport, error) {
	uc.log.Info("Init Inspection of " + uc.opts.PDFPath)

	if strings.TrimSpace(uc.opts.PDFPath) == "" {
		return domain.InspectionReport{}, domain.ErrNoInspectionPDF
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.InspectionReport{}, domain.ErrEmptyQuestion
	}

	if err := uc.ensureIngested(ctx); err != nil {
		uc.log.Error("Failed to index the inspection PDF", err)
		return domain.InspectionReport{}, err
	}

	source := PDFSource(uc.opts.PDFPath)
	agents, err := uc.buildAgents(source)
	if err != nil {
		return domain.InspectionReport{}, err
	}

	crew, err := NewCrew(agents, inspectionTasks, uc.log)
	if err != nil {
		return domain.InspectionReport{}, err
	}
	crew.OnTaskStart(hook)

	output, err := crew.Kickoff(ctx, map[string]string{
		"customer_question": question,
		"sender_name":       uc.opts.SenderName,
		"sender_company":    uc.opts.SenderCompany,
	})
	if err != nil {
		uc.log.Error("Inspection crew failed", err)
		return domain.InspectionReport{}, fmt.Errorf("error while answering %q: %w", question, err)
	}

	report := domain.InspectionReport{
		PDF:      source,
		Question: question,
		Email:    output.Final,
		Crew:     output,
	}
	if len(output.Tasks) > 0 {
		report.Answer = output.Tasks[0].Output
	}

	uc.log.Info("Inspection completed")

	return report, nil
}
