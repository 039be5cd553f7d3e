package llm

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultMaxToolRounds = 15

type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	// MaxToolRounds bounds the tool calls an agent may make for one task.
	MaxToolRounds int
}

// GeminiClient creates agents backed by Gemini function calling and embeds
// text for the knowledge base.
type GeminiClient struct {
	client *genai.Client
	cfg    Config
	log    ports.LoggerPort
}

func NewGeminiClient(ctx context.Context, cfg Config, logger ports.LoggerPort) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key not set")
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, cfg: cfg, log: logger}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	em := c.client.EmbeddingModel(c.cfg.EmbeddingModel)

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	return res.Embedding.Values, nil
}

func (c *GeminiClient) NewAgent(profile domain.AgentProfile, tools ...domain.Tool) (ports.AgentPort, error) {
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(profile, len(tools) > 0))},
	}

	decls, handlers, err := declareTools(tools)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", profile.Role, err)
	}
	if len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	} else if profile.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}

	c.log.Info(fmt.Sprintf("Agent %q created with %d tools", profile.Role, len(decls)))

	return &agent{
		name:      profile.Role,
		handlers:  handlers,
		maxRounds: c.cfg.MaxToolRounds,
		log:       c.log,
		newSession: func() chatSession {
			return model.StartChat()
		},
	}, nil
}

func declareTools(tools []domain.Tool) ([]*genai.FunctionDeclaration, map[string]domain.ToolHandler, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	handlers := make(map[string]domain.ToolHandler, len(tools))

	for _, t := range tools {
		if _, dup := handlers[t.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate tool %s", t.Name)
		}

		schema, err := schemaFor(t.Params)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate schema for tool %s: %w", t.Name, err)
		}

		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
		handlers[t.Name] = t.Handler
	}

	return decls, handlers, nil
}

func systemPrompt(p domain.AgentProfile, hasTools bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\nYour personal goal is: %s", p.Role, strings.TrimSpace(p.Backstory), p.Goal)

	if hasTools {
		b.WriteString("\nUse the tools you have whenever they can help. Never invent tool results.")
	}
	if p.JSONOutput && hasTools {
		b.WriteString("\nWhen you are done, answer with a single valid JSON object and nothing else.")
	}

	return b.String()
}
