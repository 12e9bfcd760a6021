// Package gemini implements an executor for the Google Gemini API.
//
// Gemini names the assistant role "model" and takes the system prompt as a
// separate system instruction. Each turn starts a chat session seeded with the
// prior history and sends the new user message through it.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

const (
	DefaultModel   = "gemini-2.0-flash-exp"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// Credential environment variables, in lookup order.
var EnvCredentials = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one entry of a Gemini chat history.
type Content struct {
	Role string
	Text string
}

// ChatConfig seeds a chat session.
type ChatConfig struct {
	Model             string
	SystemInstruction string
	History           []Content
	GenerationConfig  map[string]any
}

// Response is the reply to one message.
type Response struct {
	Text            string
	TotalTokenCount int
}

// ChatSession is a stateful exchange started from a ChatConfig.
type ChatSession interface {
	SendMessage(ctx context.Context, text string) (*Response, error)
}

// Client starts chat sessions.
type Client interface {
	StartChat(cfg ChatConfig) ChatSession
}

// Executor drives the Gemini API.
type Executor struct {
	*jar.Base

	build func() (Client, error)
	sync  jar.Lazy[Client]
	async jar.Lazy[Client]
}

var _ jar.Executor = (*Executor)(nil)

// New creates a Gemini executor. The credential falls back to GEMINI_API_KEY, then GOOGLE_API_KEY.
func New(cfg jar.Config, opts ...jar.Option) *Executor {
	e := &Executor{Base: jar.NewBase(jar.BackendGemini, cfg.WithDefaults(DefaultModel), opts...)}
	e.build = func() (Client, error) {
		cfg := e.Config()
		credential := cfg.ResolveCredential(EnvCredentials...)
		if credential == "" {
			return nil, domain.Unavailable(e.Backend(), fmt.Errorf("no credential: set %s", EnvCredentials[0]))
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		return NewHTTPClient(baseURL, credential, e.HTTPClient()), nil
	}
	return e
}

// NewWithClients creates an executor around prebuilt clients, one per call path.
func NewWithClients(cfg jar.Config, syncClient, asyncClient Client, opts ...jar.Option) *Executor {
	e := &Executor{Base: jar.NewBase(jar.BackendGemini, cfg.WithDefaults(DefaultModel), opts...)}
	e.build = func() (Client, error) {
		return nil, domain.Unavailable(e.Backend(), errors.New("no client supplied"))
	}
	if syncClient != nil {
		e.sync.Set(syncClient)
	}
	if asyncClient != nil {
		e.async.Set(asyncClient)
	}
	return e
}

func (e *Executor) Execute(ctx context.Context, prompt string, md domain.Metadata) (string, error) {
	client, err := e.sync.Get(e.build)
	if err != nil {
		return "", err
	}
	return e.Turn(ctx, prompt, md, e.call(client, prompt))
}

func (e *Executor) ExecuteAsync(ctx context.Context, prompt string, md domain.Metadata) *task.Future[string] {
	client, err := e.async.Get(e.build)
	if err != nil {
		return task.Failed[string](err)
	}
	return e.TurnAsync(ctx, prompt, md, e.call(client, prompt))
}

func (e *Executor) call(client Client, prompt string) jar.TurnFunc {
	cfg := e.Config()
	return func(ctx context.Context, history []domain.Message) (string, int, error) {
		system, contents := convert(history)
		if n := len(contents); n > 0 {
			contents = contents[:n-1]
		}

		chat := client.StartChat(ChatConfig{
			Model:             cfg.Model,
			SystemInstruction: system,
			History:           contents,
			GenerationConfig:  generationConfig(cfg.Params()),
		})
		resp, err := chat.SendMessage(ctx, prompt)
		if err != nil {
			return "", 0, err
		}
		return resp.Text, resp.TotalTokenCount, nil
	}
}

// convert maps the log to Gemini roles, pulling the system message out.
func convert(history []domain.Message) (string, []Content) {
	var system string
	contents := make([]Content, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case domain.RoleSystem:
			system = m.Content
		case domain.RoleAssistant:
			contents = append(contents, Content{Role: RoleModel, Text: m.Content})
		default:
			contents = append(contents, Content{Role: RoleUser, Text: m.Content})
		}
	}
	return system, contents
}

var paramNames = map[string]string{
	"max_tokens": "maxOutputTokens",
	"top_p":      "topP",
	"top_k":      "topK",
}

func generationConfig(params map[string]any) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if renamed, ok := paramNames[k]; ok {
			k = renamed
		}
		out[k] = v
	}
	return out
}
