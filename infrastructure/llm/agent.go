package llm

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// chatSession is the part of *genai.ChatSession an agent uses.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type agent struct {
	name       string
	handlers   map[string]domain.ToolHandler
	maxRounds  int
	log        ports.LoggerPort
	newSession func() chatSession
}

func (a *agent) Name() string {
	return a.name
}

// ExecuteTask sends the prompt and keeps answering tool calls until the
// model replies with text. A tool handler error aborts the task.
func (a *agent) ExecuteTask(ctx context.Context, prompt string) (string, error) {
	a.log.Debug(fmt.Sprintf("Agent %q executing task: %s", a.name, prompt))

	session := a.newSession()
	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to send message to Gemini: %w", err)
	}

	for round := 0; ; round++ {
		text, calls, err := splitResponse(resp)
		if err != nil {
			return "", err
		}

		if len(calls) == 0 {
			if strings.TrimSpace(text) == "" {
				return "", errors.New("no text response from model")
			}
			return text, nil
		}

		if round >= a.maxRounds {
			return "", fmt.Errorf("agent %q exceeded %d tool rounds", a.name, a.maxRounds)
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, fc := range calls {
			reply, err := a.callTool(ctx, fc)
			if err != nil {
				return "", err
			}
			replies = append(replies, reply)
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return "", fmt.Errorf("failed to send tool response to Gemini: %w", err)
		}
	}
}

func (a *agent) callTool(ctx context.Context, fc genai.FunctionCall) (genai.FunctionResponse, error) {
	handler, ok := a.handlers[fc.Name]
	if !ok {
		a.log.Warning(fmt.Sprintf("Agent %q asked for unknown tool %q", a.name, fc.Name))
		return genai.FunctionResponse{
			Name:     fc.Name,
			Response: map[string]any{"error": fmt.Sprintf("tool %q does not exist", fc.Name)},
		}, nil
	}

	args, err := json.Marshal(fc.Args)
	if err != nil {
		return genai.FunctionResponse{}, fmt.Errorf("failed to marshal tool args: %w", err)
	}

	a.log.Info(fmt.Sprintf("Agent %q calling tool %s", a.name, fc.Name))
	result, err := handler(ctx, args)
	if err != nil {
		return genai.FunctionResponse{}, fmt.Errorf("tool %q execution failed: %w", fc.Name, err)
	}

	return genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"result": result},
	}, nil
}

func splitResponse(resp *genai.GenerateContentResponse) (string, []genai.FunctionCall, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, errors.New("empty response from model")
	}

	var text strings.Builder
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			calls = append(calls, p)
		case *genai.FunctionCall:
			calls = append(calls, *p)
		}
	}

	return text.String(), calls, nil
}
