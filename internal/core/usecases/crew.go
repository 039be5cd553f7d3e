package usecases

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"context"
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// TaskHook is called before a task starts.
type TaskHook func(index int, task domain.Task)

// Crew runs its tasks one after another. Every task sees the outputs of the
// tasks before it as context.
type Crew struct {
	agents map[string]ports.AgentPort
	tasks  []domain.Task
	log    ports.LoggerPort
	hook   TaskHook
}

func NewCrew(agents map[string]ports.AgentPort, tasks []domain.Task, logger ports.LoggerPort) (*Crew, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("crew needs at least one task")
	}

	for _, task := range tasks {
		if _, ok := agents[task.Agent]; !ok {
			return nil, fmt.Errorf("task %q references unknown agent %q", task.Name, task.Agent)
		}
	}

	return &Crew{
		agents: agents,
		tasks:  tasks,
		log:    logger,
	}, nil
}

func (c *Crew) OnTaskStart(hook TaskHook) *Crew {
	c.hook = hook
	return c
}

func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (domain.CrewOutput, error) {
	c.log.Info(fmt.Sprintf("Crew kickoff with %d tasks", len(c.tasks)))

	var out domain.CrewOutput
	for i, task := range c.tasks {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		if c.hook != nil {
			c.hook(i, task)
		}

		prompt, err := buildTaskPrompt(task, inputs, out.Tasks)
		if err != nil {
			return out, err
		}

		agent := c.agents[task.Agent]
		c.log.Info(fmt.Sprintf("Task %q started by %s", task.Name, agent.Name()))

		result, err := agent.ExecuteTask(ctx, prompt)
		if err != nil {
			c.log.Error(fmt.Sprintf("Task %q failed", task.Name), err)
			return out, fmt.Errorf("task %q failed: %w", task.Name, err)
		}

		out.Tasks = append(out.Tasks, domain.TaskOutput{
			Task:   task.Name,
			Agent:  agent.Name(),
			Output: result,
		})
		out.Final = result

		c.log.Info(fmt.Sprintf("Task %q completed", task.Name))
	}

	return out, nil
}

func interpolate(text string, inputs map[string]string) (string, error) {
	var missing []string
	result := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := inputs[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing crew inputs: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

func buildTaskPrompt(task domain.Task, inputs map[string]string, previous []domain.TaskOutput) (string, error) {
	description, err := interpolate(task.Description, inputs)
	if err != nil {
		return "", fmt.Errorf("task %q: %w", task.Name, err)
	}

	expected, err := interpolate(task.ExpectedOutput, inputs)
	if err != nil {
		return "", fmt.Errorf("task %q: %w", task.Name, err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\nThis is the expected criteria for your final answer: ")
	b.WriteString(strings.TrimSpace(expected))
	b.WriteString("\nYou MUST return the actual complete content as the final answer, not a summary.")

	if len(previous) > 0 {
		b.WriteString("\n\nThis is the context you're working with:\n")
		for _, p := range previous {
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", p.Task, strings.TrimSpace(p.Output))
		}
	}

	return b.String(), nil
}
