package ports

import (
	"TUI_channel_research/internal/core/domain"
	"context"
)

type AgentPort interface {
	Name() string
	ExecuteTask(ctx context.Context, prompt string) (string, error)
}

type AgentFactoryPort interface {
	NewAgent(profile domain.AgentProfile, tools ...domain.Tool) (AgentPort, error)
}
