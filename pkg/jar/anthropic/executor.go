// Package anthropic implements an executor for the Anthropic Messages API.
//
// The Messages API takes the system prompt out-of-band, so the system message
// of the conversation is sent in the "system" field and only user and
// assistant messages are sent as messages.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/jar/internal/wire"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

const (
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultMaxTokens = 4096
	APIVersion       = "2023-06-01"

	EnvCredential = "ANTHROPIC_API_KEY"
)

// MessagesRequest is one Messages API call.
type MessagesRequest struct {
	Model    string
	System   string
	Messages []domain.Message
	Params   map[string]any
}

// MessagesResponse carries the first text block and the token usage.
type MessagesResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client creates messages.
type Client interface {
	CreateMessage(ctx context.Context, req MessagesRequest) (*MessagesResponse, error)
}

// Executor drives the Anthropic Messages API.
type Executor struct {
	*jar.Base

	build func() (Client, error)
	sync  jar.Lazy[Client]
	async jar.Lazy[Client]
}

var _ jar.Executor = (*Executor)(nil)

// New creates an Anthropic executor. The credential falls back to ANTHROPIC_API_KEY.
func New(cfg jar.Config, opts ...jar.Option) *Executor {
	e := &Executor{Base: jar.NewBase(jar.BackendAnthropic, cfg.WithDefaults(DefaultModel), opts...)}
	e.build = func() (Client, error) {
		cfg := e.Config()
		credential := cfg.ResolveCredential(EnvCredential)
		if credential == "" {
			return nil, domain.Unavailable(e.Backend(), fmt.Errorf("no credential: set %s", EnvCredential))
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
	e := &Executor{Base: jar.NewBase(jar.BackendAnthropic, cfg.WithDefaults(DefaultModel), opts...)}
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
	return e.Turn(ctx, prompt, md, e.call(client))
}

func (e *Executor) ExecuteAsync(ctx context.Context, prompt string, md domain.Metadata) *task.Future[string] {
	client, err := e.async.Get(e.build)
	if err != nil {
		return task.Failed[string](err)
	}
	return e.TurnAsync(ctx, prompt, md, e.call(client))
}

func (e *Executor) call(client Client) jar.TurnFunc {
	cfg := e.Config()
	return func(ctx context.Context, history []domain.Message) (string, int, error) {
		system, messages := split(history)

		params := cfg.Params()
		if _, ok := params["max_tokens"]; !ok {
			params["max_tokens"] = DefaultMaxTokens
		}

		resp, err := client.CreateMessage(ctx, MessagesRequest{
			Model:    cfg.Model,
			System:   system,
			Messages: messages,
			Params:   params,
		})
		if err != nil {
			return "", 0, err
		}
		return resp.Text, resp.InputTokens + resp.OutputTokens, nil
	}
}

// split separates the system message from the rest of the log.
func split(history []domain.Message) (string, []domain.Message) {
	var system string
	messages := make([]domain.Message, 0, len(history))
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			system = m.Content
			continue
		}
		messages = append(messages, m)
	}
	return system, messages
}

// NewHTTPClient returns a Client speaking the Messages REST protocol.
func NewHTTPClient(baseURL, credential string, hc *http.Client) Client {
	return &httpClient{baseURL: baseURL, credential: credential, http: hc}
}

type httpClient struct {
	baseURL    string
	credential string
	http       *http.Client
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (c *httpClient) CreateMessage(ctx context.Context, req MessagesRequest) (*MessagesResponse, error) {
	fields := map[string]any{"model": req.Model, "messages": req.Messages}
	if req.System != "" {
		fields["system"] = req.System
	}

	header := http.Header{}
	header.Set("x-api-key", c.credential)
	header.Set("anthropic-version", APIVersion)

	var parsed messagesResponse
	err := wire.Do(ctx, c.http, wire.Request{
		Backend: jar.BackendAnthropic,
		URL:     wire.Join(c.baseURL, "/v1/messages"),
		Header:  header,
		Body:    wire.Body(req.Params, fields),
	}, &parsed)
	if err != nil {
		return nil, err
	}
	if len(parsed.Content) == 0 {
		return nil, &domain.BackendError{Backend: jar.BackendAnthropic, Body: "response has no content"}
	}

	return &MessagesResponse{
		Text:         parsed.Content[0].Text,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}
