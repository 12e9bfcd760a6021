package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/jar/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers both OpenAI endpoints and records the last request body.
func fakeServer(t *testing.T) (*httptest.Server, *map[string]any, *atomic.Value) {
	t.Helper()
	var last map[string]any
	path := &atomic.Value{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&last))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/responses":
			_, _ = w.Write([]byte(`{"output":[{"type":"message","content":[{"type":"output_text","text":"from responses"}]}],"usage":{"total_tokens":11}}`))
		case "/v1/chat/completions":
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"from chat"}}],"usage":{"total_tokens":5}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &last, path
}

func TestOpenAI_ResponsesByDefault(t *testing.T) {
	srv, last, path := fakeServer(t)
	ex := openai.New(jar.Config{
		Credential:   "sk-test",
		BaseURL:      srv.URL + "/v1",
		SystemPrompt: "sys",
		Temperature:  jar.Float(0.2),
	})

	reply, err := ex.Execute(context.Background(), "Hello", domain.Metadata{})
	require.NoError(t, err)

	assert.Equal(t, "from responses", reply)
	assert.Equal(t, "/v1/responses", path.Load())
	assert.Equal(t, openai.DefaultModel, (*last)["model"])
	assert.Equal(t, 0.2, (*last)["temperature"])
	assert.NotContains(t, *last, "api_key")
	assert.Len(t, (*last)["input"], 2)

	assert.Equal(t, 11, ex.TotalTokens())
	assert.Len(t, ex.History(), 3)
}

func TestOpenAI_ForcedChatStyle(t *testing.T) {
	srv, last, path := fakeServer(t)
	ex := openai.New(jar.Config{Credential: "sk-test", BaseURL: srv.URL + "/v1", Style: openai.StyleChat})

	reply, err := ex.ExecuteAsync(context.Background(), "Hello", domain.Metadata{}).Await(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "from chat", reply)
	assert.Equal(t, "/v1/chat/completions", path.Load())
	assert.Len(t, (*last)["messages"], 1)
	assert.Equal(t, 5, ex.TotalTokens())
}

func TestOpenAICompatible_UsesChat(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"local"}}]}`))
	}))
	defer srv.Close()

	ex := openai.NewCompatible(jar.Config{Model: "llama3", BaseURL: srv.URL + "/v1"})
	assert.Equal(t, jar.BackendOpenAICompatible, ex.Backend())

	reply, err := ex.Execute(context.Background(), "hi", domain.Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "local", reply)
	assert.Equal(t, "Bearer "+openai.CompatibleCredential, auth)

	// Usage is optional on compatible servers
	assert.Zero(t, ex.TotalTokens())
}

func TestOpenAICompatible_MissingBaseURL(t *testing.T) {
	ex := openai.NewCompatible(jar.Config{Model: "llama3"})

	_, err := ex.Execute(context.Background(), "hi", domain.Metadata{})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Empty(t, ex.History(), "no mutation when the client cannot be built")
}

func TestOpenAI_MissingCredentialIsDeferred(t *testing.T) {
	t.Setenv(openai.EnvCredential, "")

	// Construction never fails
	ex := openai.New(jar.Config{})

	_, err := ex.Execute(context.Background(), "hi", domain.Metadata{})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

	_, err = ex.ExecuteAsync(context.Background(), "hi", domain.Metadata{}).Await(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestOpenAI_CallFailureKeepsUserMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ex := openai.New(jar.Config{Credential: "k", BaseURL: srv.URL})

	_, err := ex.Execute(context.Background(), "hi", domain.Metadata{})
	require.ErrorIs(t, err, domain.ErrBackendCallFailed)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusTooManyRequests, be.StatusCode)

	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, ex.History())
}

type chatOnly struct {
	calls int
}

func (c *chatOnly) CreateChatCompletion(_ context.Context, req openai.ChatRequest) (*openai.ChatResponse, error) {
	c.calls++
	return &openai.ChatResponse{Content: "chat:" + req.Messages[len(req.Messages)-1].Content, TotalTokens: 2}, nil
}

type dual struct {
	chatOnly
	responses int
}

func (d *dual) CreateResponse(_ context.Context, req openai.ResponsesRequest) (*openai.ResponsesResponse, error) {
	d.responses++
	return &openai.ResponsesResponse{OutputText: "resp", TotalTokens: 4}, nil
}

func TestOpenAI_WithClients_ProbesCapability(t *testing.T) {
	ctx := context.Background()
	syncClient := &chatOnly{}
	asyncClient := &dual{}

	ex := openai.NewWithClients(jar.Config{Model: "gpt-test"}, syncClient, asyncClient)

	// 1. Sync client has no responses capability
	reply, err := ex.Execute(ctx, "one", domain.Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "chat:one", reply)
	assert.Equal(t, 1, syncClient.calls)

	// 2. Async client has it
	reply, err = ex.ExecuteAsync(ctx, "two", domain.Metadata{}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "resp", reply)
	assert.Equal(t, 1, asyncClient.responses)
	assert.Zero(t, asyncClient.calls)

	assert.Equal(t, 6, ex.TotalTokens())
	assert.Len(t, ex.History(), 4)
}

func TestOpenAI_ForcedResponsesWithoutCapability(t *testing.T) {
	ex := openai.NewWithClients(jar.Config{Style: openai.StyleResponses}, &chatOnly{}, nil)

	_, err := ex.Execute(context.Background(), "x", domain.Metadata{})
	assert.ErrorIs(t, err, domain.ErrBackendCallFailed)

	// Missing async client surfaces as unavailable
	_, err = ex.ExecuteAsync(context.Background(), "x", domain.Metadata{}).Await(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
