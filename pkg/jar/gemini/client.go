package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/jar/internal/wire"
)

// NewHTTPClient returns a Client calling the generateContent REST endpoint.
func NewHTTPClient(baseURL, credential string, hc *http.Client) Client {
	return &httpClient{baseURL: baseURL, credential: credential, http: hc}
}

type httpClient struct {
	baseURL    string
	credential string
	http       *http.Client
}

func (c *httpClient) StartChat(cfg ChatConfig) ChatSession {
	history := make([]Content, len(cfg.History))
	copy(history, cfg.History)
	return &httpChat{client: c, cfg: cfg, history: history}
}

// httpChat keeps the session history client side, as the REST API is stateless.
type httpChat struct {
	client *httpClient
	cfg    ChatConfig

	mu      sync.Mutex
	history []Content
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (s *httpChat) SendMessage(ctx context.Context, text string) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents := make([]content, 0, len(s.history)+1)
	for _, h := range s.history {
		contents = append(contents, content{Role: h.Role, Parts: []part{{Text: h.Text}}})
	}
	contents = append(contents, content{Role: RoleUser, Parts: []part{{Text: text}}})

	body := map[string]any{"contents": contents}
	if s.cfg.SystemInstruction != "" {
		body["systemInstruction"] = content{Parts: []part{{Text: s.cfg.SystemInstruction}}}
	}
	if len(s.cfg.GenerationConfig) > 0 {
		body["generationConfig"] = s.cfg.GenerationConfig
	}

	header := http.Header{}
	header.Set("x-goog-api-key", s.client.credential)

	var parsed generateResponse
	err := wire.Do(ctx, s.client.http, wire.Request{
		Backend: jar.BackendGemini,
		URL:     wire.Join(s.client.baseURL, "/v1beta/models/"+url.PathEscape(s.cfg.Model)+":generateContent"),
		Header:  header,
		Body:    body,
	}, &parsed)
	if err != nil {
		return nil, err
	}
	if len(parsed.Candidates) == 0 {
		return nil, &domain.BackendError{Backend: jar.BackendGemini, Body: "response has no candidates"}
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	reply := sb.String()

	s.history = append(s.history, Content{Role: RoleUser, Text: text}, Content{Role: RoleModel, Text: reply})
	return &Response{Text: reply, TotalTokenCount: parsed.UsageMetadata.TotalTokenCount}, nil
}
