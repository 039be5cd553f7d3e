package domain

import (
	"context"
	"encoding/json"
)

// AgentProfile describes who an agent is. It becomes the system prompt.
type AgentProfile struct {
	Role       string
	Goal       string
	Backstory  string
	JSONOutput bool
}

// ToolHandler receives the raw JSON arguments chosen by the model.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is something an agent may call. Params is a zero value of the
// argument struct; its json and description tags become the schema.
type Tool struct {
	Name        string
	Description string
	Params      any
	Handler     ToolHandler
}

// Task is one step of a crew.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          string
}

type TaskOutput struct {
	Task   string `json:"task"`
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

type CrewOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Final string       `json:"final"`
}

// ResearchReport is what a full channel analysis produces.
type ResearchReport struct {
	Handle  string
	Videos  VideoList
	Creator ContentCreatorInfo
	Crew    CrewOutput
}

// InspectionReport is the answer about a home inspection PDF and the
// contractor email drafted from it.
type InspectionReport struct {
	PDF      string
	Question string
	Answer   string
	Email    string
	Crew     CrewOutput
}
