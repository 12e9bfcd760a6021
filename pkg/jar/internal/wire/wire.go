// Package wire holds the JSON-over-HTTP plumbing shared by vendor executors.
package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
)

const maxBody = 2 << 20

// Request describes one POST to a vendor endpoint.
type Request struct {
	Backend string
	URL     string
	Header  http.Header
	Body    any
}

// Do posts req as JSON and decodes a 2xx response into out.
// Any failure is reported as a *domain.BackendError.
func Do(ctx context.Context, client *http.Client, req Request, out any) error {
	fail := func(status int, body string, err error) error {
		return &domain.BackendError{Backend: req.Backend, StatusCode: status, Body: body, Err: err}
	}

	encoded, err := json.Marshal(req.Body)
	if err != nil {
		return fail(0, "", fmt.Errorf("request encode: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(encoded))
	if err != nil {
		return fail(0, "", fmt.Errorf("request build: %w", err))
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return fail(0, "", fmt.Errorf("request execute: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("response read: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fail(resp.StatusCode, strings.TrimSpace(string(data)), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, "", fmt.Errorf("response decode: %w", err))
	}
	return nil
}

// Body merges params under fields. Keys in fields win.
func Body(params map[string]any, fields map[string]any) map[string]any {
	body := make(map[string]any, len(params)+len(fields))
	for k, v := range params {
		body[k] = v
	}
	for k, v := range fields {
		body[k] = v
	}
	return body
}

// Join appends path to a base URL, normalizing the slash between them.
func Join(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + strings.TrimLeft(path, "/")
}
