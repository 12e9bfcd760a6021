package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cookie-jar-solutions/honey/pkg/adapters/memory"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, factory session.Factory) (http.Handler, *memory.Store, *session.Manager) {
	t.Helper()
	store := memory.NewStore(map[string]string{
		"greet":  "Hello, {{ name }}!",
		"broken": "{% if %}",
	})
	if factory == nil {
		factory = func(context.Context, string) (jar.Executor, error) {
			return jar.NewMock(jar.Config{}, jar.MockWithTokens(3)), nil
		}
	}
	sessions := session.NewManager(factory)
	handler, err := NewHandler(store, sessions,
		WithVersion("test"),
		WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metrics"))
		})),
	)
	require.NoError(t, err)
	return handler, store, sessions
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", doc.Info.Version)
}

func TestListAndGetPrompt(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)

	w := do(t, h, "GET", "/prompts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var infos []domain.PromptInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "greet", infos[1].Name)
	assert.Equal(t, "name", infos[1].Arguments[0].Name)

	w = do(t, h, "GET", "/prompts/greet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail PromptDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Hello, {{ name }}!", detail.Template)

	w = do(t, h, "GET", "/prompts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderPrompt(t *testing.T) {
	h, _, sessions := newTestHandler(t, nil)

	w := do(t, h, "POST", "/prompts/greet/render", RenderRequest{Vars: domain.Vars{"name": "World"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp RenderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hello, World!", resp.Text)
	assert.Empty(t, sessions.List(), "rendering never starts a session")

	w = do(t, h, "POST", "/prompts/broken/render", RenderRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInvokePrompt_Session(t *testing.T) {
	h, _, sessions := newTestHandler(t, nil)

	w := do(t, h, "POST", "/prompts/greet/invoke", InvokeRequest{Vars: domain.Vars{"name": "Ada"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first InvokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.NotEmpty(t, first.SessionID)
	assert.Contains(t, first.Reply, "[MOCK RESPONSE]")
	assert.Contains(t, first.Reply, "Hello, Ada!")
	assert.Equal(t, 2, first.Messages)
	assert.Equal(t, 3, first.Tokens)

	w = do(t, h, "POST", "/prompts/greet/invoke", InvokeRequest{Vars: domain.Vars{"name": "Bob"}, SessionID: first.SessionID})
	require.Equal(t, http.StatusOK, w.Code)
	var second InvokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, 4, second.Messages)

	w = do(t, h, "GET", "/sessions/"+first.SessionID+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 4)
	assert.Equal(t, "Hello, Bob!", history[2].Content)

	w = do(t, h, "GET", "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), first.SessionID)

	w = do(t, h, "DELETE", "/sessions/"+first.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, sessions.List())

	w = do(t, h, "GET", "/sessions/"+first.SessionID+"/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvokePrompt_Errors(t *testing.T) {
	h, _, _ := newTestHandler(t, func(context.Context, string) (jar.Executor, error) {
		return jar.NewMock(jar.Config{}, jar.MockWithReply(func(string, bool) (string, error) {
			return "", &domain.BackendError{Backend: "mock", StatusCode: 500}
		})), nil
	})

	w := do(t, h, "POST", "/prompts/greet/invoke", InvokeRequest{SessionID: "s1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, h, "POST", "/prompts/missing/invoke", InvokeRequest{SessionID: "s1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	unavailable, _, _ := newTestHandler(t, func(context.Context, string) (jar.Executor, error) {
		return nil, domain.Unavailable("openai", errors.New("no key"))
	})
	w = do(t, unavailable, "POST", "/prompts/greet/invoke", InvokeRequest{SessionID: "s2"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestInvokePrompt_BadTemplateOpensNoSession(t *testing.T) {
	h, _, sessions := newTestHandler(t, nil)

	w := do(t, h, "POST", "/prompts/missing/invoke", InvokeRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/prompts/broken/invoke", InvokeRequest{SessionID: "s1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Empty(t, sessions.List())
}

func TestRequestValidation(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)

	// session_id must be a string.
	req := httptest.NewRequest("POST", "/prompts/greet/invoke", strings.NewReader(`{"session_id": 42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMiscRoutes(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", nil)
	assert.Contains(t, w.Body.String(), `"version":"test"`)

	w = do(t, h, "GET", "/metrics", nil)
	assert.Equal(t, "metrics", w.Body.String())

	w = do(t, h, "GET", "/openapi.yaml", nil)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "OPTIONS", "/prompts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents_Reload(t *testing.T) {
	h, store, _ := newTestHandler(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, store.Save(context.Background(), "greet", "Hi {{ name }}"))
	time.Sleep(100 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "data: reload")
}

func TestSubscribeEvents_Session(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?session_id=sess-1", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	w := do(t, h, "POST", "/prompts/greet/invoke", InvokeRequest{Vars: domain.Vars{"name": "SSE"}, SessionID: "sess-1"})
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"session_id":"sess-1"`)
}
