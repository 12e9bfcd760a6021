package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar/internal/wire"
)

// ChatRequest is a Chat Completions call.
type ChatRequest struct {
	Model    string
	Messages []domain.Message
	Params   map[string]any
}

// ChatResponse carries the first choice and the reported usage, if any.
type ChatResponse struct {
	Content     string
	TotalTokens int
}

// ResponsesRequest is a Responses API call.
type ResponsesRequest struct {
	Model  string
	Input  []domain.Message
	Params map[string]any
}

// ResponsesResponse carries the aggregated output text and usage.
type ResponsesResponse struct {
	OutputText  string
	TotalTokens int
}

// ChatClient is the capability every OpenAI-style client has.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ResponsesClient is the optional capability probed on every call.
type ResponsesClient interface {
	CreateResponse(ctx context.Context, req ResponsesRequest) (*ResponsesResponse, error)
}

// NewHTTPClient returns a client speaking the OpenAI REST protocol at baseURL.
// When responses is false the client only offers Chat Completions.
func NewHTTPClient(backend, baseURL, credential string, hc *http.Client, responses bool) ChatClient {
	c := &chatHTTP{backend: backend, baseURL: baseURL, credential: credential, http: hc}
	if responses {
		return &fullHTTP{c}
	}
	return c
}

type chatHTTP struct {
	backend    string
	baseURL    string
	credential string
	http       *http.Client
}

type fullHTTP struct {
	*chatHTTP
}

func (c *chatHTTP) header() http.Header {
	h := http.Header{}
	if c.credential != "" {
		h.Set("Authorization", "Bearer "+c.credential)
	}
	return h
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *chatHTTP) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var parsed chatCompletionResponse
	err := wire.Do(ctx, c.http, wire.Request{
		Backend: c.backend,
		URL:     wire.Join(c.baseURL, "/chat/completions"),
		Header:  c.header(),
		Body:    wire.Body(req.Params, map[string]any{"model": req.Model, "messages": req.Messages}),
	}, &parsed)
	if err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, &domain.BackendError{Backend: c.backend, Body: "response has no choices"}
	}

	out := &ChatResponse{Content: parsed.Choices[0].Message.Content}
	if parsed.Usage != nil {
		out.TotalTokens = parsed.Usage.TotalTokens
	}
	return out, nil
}

type responsesResponse struct {
	OutputText *string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// text prefers the aggregated output_text field and falls back to joining output_text parts.
func (r *responsesResponse) text() string {
	if r.OutputText != nil {
		return *r.OutputText
	}
	var sb strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				sb.WriteString(part.Text)
			}
		}
	}
	return sb.String()
}

func (c *fullHTTP) CreateResponse(ctx context.Context, req ResponsesRequest) (*ResponsesResponse, error) {
	var parsed responsesResponse
	err := wire.Do(ctx, c.http, wire.Request{
		Backend: c.backend,
		URL:     wire.Join(c.baseURL, "/responses"),
		Header:  c.header(),
		Body:    wire.Body(req.Params, map[string]any{"model": req.Model, "input": req.Input}),
	}, &parsed)
	if err != nil {
		return nil, err
	}

	out := &ResponsesResponse{OutputText: parsed.text()}
	if parsed.Usage != nil {
		out.TotalTokens = parsed.Usage.TotalTokens
	}
	return out, nil
}
