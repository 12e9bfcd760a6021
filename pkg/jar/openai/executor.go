// Package openai implements executors for the OpenAI API and for servers that
// implement its protocol (Ollama, vLLM, LM Studio, LocalAI...).
//
// Two calling conventions exist. The Responses API is used when the client
// offers it and the configured style does not force Chat Completions;
// otherwise Chat Completions is used. The check is made once per call.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

const (
	DefaultModel   = "gpt-4.1-mini"
	DefaultBaseURL = "https://api.openai.com/v1"

	// CompatibleCredential is sent to compatible servers when no credential is configured.
	CompatibleCredential = "not-needed"

	EnvCredential = "OPENAI_API_KEY"
)

// Calling conventions accepted in jar.Config.Style.
const (
	StyleAuto      = ""
	StyleResponses = "responses"
	StyleChat      = "chat"
)

// Executor drives an OpenAI-style backend.
type Executor struct {
	*jar.Base

	build func() (ChatClient, error)
	sync  jar.Lazy[ChatClient]
	async jar.Lazy[ChatClient]
}

var _ jar.Executor = (*Executor)(nil)

// New creates an executor for api.openai.com (or cfg.BaseURL).
// The credential falls back to OPENAI_API_KEY; a missing credential is reported on the first call.
func New(cfg jar.Config, opts ...jar.Option) *Executor {
	e := &Executor{Base: jar.NewBase(jar.BackendOpenAI, cfg.WithDefaults(DefaultModel), opts...)}
	e.build = func() (ChatClient, error) {
		cfg := e.Config()
		credential := cfg.ResolveCredential(EnvCredential)
		if credential == "" {
			return nil, domain.Unavailable(e.Backend(), fmt.Errorf("no credential: set %s", EnvCredential))
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		return NewHTTPClient(e.Backend(), baseURL, credential, e.HTTPClient(), cfg.Style != StyleChat), nil
	}
	return e
}

// NewCompatible creates an executor for an OpenAI-compatible server at cfg.BaseURL.
// Compatible servers are called with Chat Completions unless cfg.Style is "responses".
func NewCompatible(cfg jar.Config, opts ...jar.Option) *Executor {
	if cfg.Credential == "" {
		cfg.Credential = CompatibleCredential
	}
	e := &Executor{Base: jar.NewBase(jar.BackendOpenAICompatible, cfg, opts...)}
	e.build = func() (ChatClient, error) {
		cfg := e.Config()
		switch {
		case cfg.BaseURL == "":
			return nil, domain.Unavailable(e.Backend(), errors.New("base URL is required"))
		case cfg.Model == "":
			return nil, domain.Unavailable(e.Backend(), errors.New("model is required"))
		}
		return NewHTTPClient(e.Backend(), cfg.BaseURL, cfg.Credential, e.HTTPClient(), cfg.Style == StyleResponses), nil
	}
	return e
}

// NewWithClients creates an executor around prebuilt clients, one per call path.
func NewWithClients(cfg jar.Config, syncClient, asyncClient ChatClient, opts ...jar.Option) *Executor {
	e := &Executor{Base: jar.NewBase(jar.BackendOpenAI, cfg.WithDefaults(DefaultModel), opts...)}
	e.build = func() (ChatClient, error) {
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

// Execute runs one blocking turn.
func (e *Executor) Execute(ctx context.Context, prompt string, md domain.Metadata) (string, error) {
	client, err := e.sync.Get(e.build)
	if err != nil {
		return "", err
	}
	return e.Turn(ctx, prompt, md, e.call(client))
}

// ExecuteAsync runs one turn on the suspending path.
func (e *Executor) ExecuteAsync(ctx context.Context, prompt string, md domain.Metadata) *task.Future[string] {
	client, err := e.async.Get(e.build)
	if err != nil {
		return task.Failed[string](err)
	}
	return e.TurnAsync(ctx, prompt, md, e.call(client))
}

func (e *Executor) call(client ChatClient) jar.TurnFunc {
	cfg := e.Config()
	return func(ctx context.Context, history []domain.Message) (string, int, error) {
		if rc, ok := e.responses(client); ok {
			resp, err := rc.CreateResponse(ctx, ResponsesRequest{Model: cfg.Model, Input: history, Params: cfg.Params()})
			if err != nil {
				return "", 0, err
			}
			return resp.OutputText, resp.TotalTokens, nil
		}

		if cfg.Style == StyleResponses {
			return "", 0, &domain.BackendError{Backend: e.Backend(), Body: "client does not support the responses API"}
		}

		resp, err := client.CreateChatCompletion(ctx, ChatRequest{Model: cfg.Model, Messages: history, Params: cfg.Params()})
		if err != nil {
			return "", 0, err
		}
		return resp.Content, resp.TotalTokens, nil
	}
}

func (e *Executor) responses(client ChatClient) (ResponsesClient, bool) {
	if e.Config().Style == StyleChat {
		return nil, false
	}
	rc, ok := client.(ResponsesClient)
	return rc, ok
}
