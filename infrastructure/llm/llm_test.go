package llm

import (
	"TUI_channel_research/infrastructure/logger"
	"TUI_channel_research/internal/core/domain"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupParams struct {
	Username string   `json:"username" description:"The username to look up."`
	Limit    int      `json:"limit,omitempty" description:"How many results."`
	Tags     []string `json:"tags,omitempty"`
	Verified *bool    `json:"verified,omitempty"`
	internal string
	Skipped  string `json:"-"`
}

func TestSchemaFor(t *testing.T) {
	s, err := schemaFor(lookupParams{})
	require.NoError(t, err)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"username"}, s.Required)
	require.Len(t, s.Properties, 4)

	assert.Equal(t, genai.TypeString, s.Properties["username"].Type)
	assert.Equal(t, "The username to look up.", s.Properties["username"].Description)
	assert.Equal(t, genai.TypeInteger, s.Properties["limit"].Type)
	assert.Equal(t, genai.TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
	assert.True(t, s.Properties["verified"].Nullable)

	empty, err := schemaFor(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Properties)

	_, err = schemaFor("not a struct")
	assert.Error(t, err)

	_, err = schemaFor(struct {
		Fn func() `json:"fn"`
	}{})
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	p := domain.AgentProfile{Role: "Fallback Agent", Goal: "Find data", Backstory: " Careful. ", JSONOutput: true}

	withTools := systemPrompt(p, true)
	assert.True(t, strings.HasPrefix(withTools, "You are Fallback Agent. Careful.\nYour personal goal is: Find data"))
	assert.Contains(t, withTools, "single valid JSON object")

	assert.NotContains(t, systemPrompt(p, false), "single valid JSON object")
}

func TestDeclareTools_RejectsDuplicates(t *testing.T) {
	tool := domain.Tool{Name: "t", Params: lookupParams{}}
	_, _, err := declareTools([]domain.Tool{tool, tool})
	assert.Error(t, err)
}

type scriptedSession struct {
	replies []*genai.GenerateContentResponse
	sent    [][]genai.Part
	err     error
}

func (s *scriptedSession) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	s.sent = append(s.sent, parts)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func reply(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}}}
}

func newTestAgent(session chatSession, handlers map[string]domain.ToolHandler) *agent {
	return &agent{
		name:       "Tester",
		handlers:   handlers,
		maxRounds:  3,
		log:        logger.NewNopLogger(),
		newSession: func() chatSession { return session },
	}
}

func TestExecuteTask_DispatchesToolCalls(t *testing.T) {
	session := &scriptedSession{replies: []*genai.GenerateContentResponse{
		reply(genai.FunctionCall{Name: "get_email", Args: map[string]any{"username": "ada"}}),
		reply(genai.Text("The email is "), genai.Text("ada@example.com")),
	}}

	var got lookupParams
	a := newTestAgent(session, map[string]domain.ToolHandler{
		"get_email": func(_ context.Context, args json.RawMessage) (string, error) {
			if err := json.Unmarshal(args, &got); err != nil {
				return "", err
			}
			return "ada@example.com", nil
		},
	})

	out, err := a.ExecuteTask(context.Background(), "find ada")
	require.NoError(t, err)
	assert.Equal(t, "The email is ada@example.com", out)
	assert.Equal(t, "ada", got.Username)

	require.Len(t, session.sent, 2)
	assert.Equal(t, []genai.Part{genai.Text("find ada")}, session.sent[0])
	assert.Equal(t, []genai.Part{genai.FunctionResponse{
		Name:     "get_email",
		Response: map[string]any{"result": "ada@example.com"},
	}}, session.sent[1])
}

func TestExecuteTask_UnknownToolIsReported(t *testing.T) {
	session := &scriptedSession{replies: []*genai.GenerateContentResponse{
		reply(genai.FunctionCall{Name: "ghost"}),
		reply(genai.Text("done")),
	}}

	out, err := newTestAgent(session, nil).ExecuteTask(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	resp := session.sent[1][0].(genai.FunctionResponse)
	assert.Contains(t, resp.Response["error"], "does not exist")
}

func TestExecuteTask_ToolErrorAborts(t *testing.T) {
	session := &scriptedSession{replies: []*genai.GenerateContentResponse{
		reply(genai.FunctionCall{Name: "fetch"}),
	}}
	boom := errors.New("channel not found")

	_, err := newTestAgent(session, map[string]domain.ToolHandler{
		"fetch": func(context.Context, json.RawMessage) (string, error) { return "", boom },
	}).ExecuteTask(context.Background(), "go")

	assert.ErrorIs(t, err, boom)
	assert.Len(t, session.sent, 1)
}

func TestExecuteTask_BoundsToolRounds(t *testing.T) {
	call := reply(genai.FunctionCall{Name: "loop"})
	session := &scriptedSession{replies: []*genai.GenerateContentResponse{call, call, call, call, call}}

	_, err := newTestAgent(session, map[string]domain.ToolHandler{
		"loop": func(context.Context, json.RawMessage) (string, error) { return "again", nil },
	}).ExecuteTask(context.Background(), "go")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 3 tool rounds")
	assert.Len(t, session.sent, 4)
}

func TestExecuteTask_EmptyResponses(t *testing.T) {
	_, err := newTestAgent(&scriptedSession{replies: []*genai.GenerateContentResponse{{}}}, nil).
		ExecuteTask(context.Background(), "go")
	assert.Error(t, err)

	_, err = newTestAgent(&scriptedSession{replies: []*genai.GenerateContentResponse{reply(genai.Text("  "))}}, nil).
		ExecuteTask(context.Background(), "go")
	assert.Error(t, err)

	_, err = newTestAgent(&scriptedSession{err: errors.New("quota")}, nil).
		ExecuteTask(context.Background(), "go")
	assert.ErrorContains(t, err, "quota")
}

func TestGeminiClient_Live(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping test: GEMINI_API_KEY environment variable not set.")
	}

	ctx := context.Background()
	client, err := NewGeminiClient(ctx, Config{
		APIKey:         apiKey,
		Model:          "gemini-1.5-flash-latest",
		EmbeddingModel: "text-embedding-004",
	}, logger.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	emb, err := client.Embed(ctx, "hello world")
	require.NoError(t, err)
	assert.NotEmpty(t, emb)

	type getEmailParams struct {
		Username string `json:"username" description:"The username to look up."`
	}
	a, err := client.NewAgent(domain.AgentProfile{Role: "Tasker", Goal: "Find user emails", Backstory: "You look things up."},
		domain.Tool{
			Name:        "get_email_by_username",
			Description: "Gets a user's email address by their username.",
			Params:      getEmailParams{},
			Handler: func(_ context.Context, args json.RawMessage) (string, error) {
				return "The email for testuser is test.user@example.com.", nil
			},
		})
	require.NoError(t, err)

	out, err := a.ExecuteTask(ctx, "What is the email for the user 'testuser'?")
	require.NoError(t, err)
	assert.Contains(t, out, "test.user@example.com")
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}
