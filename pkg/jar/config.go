package jar

import (
	"maps"
	"os"
)

// Config is the construction record shared by every executor.
// Only Model, Credential and BaseURL configure the transport; everything else
// is forwarded to the backend as call parameters.
type Config struct {
	Model        string
	Credential   string
	BaseURL      string
	SystemPrompt string

	// Style selects the calling convention of OpenAI-style backends:
	// "responses", "chat" or empty to probe the client.
	Style string

	Temperature *float64
	MaxTokens   *int
	TopP        *float64

	// Extra holds backend-specific parameters forwarded verbatim.
	Extra map[string]any
}

// transportKeys never reach a backend request body.
var transportKeys = []string{"api_key", "credential", "base_url", "base_address", "model"}

// Params returns the call parameters: the typed sampling fields merged over Extra,
// with transport-only keys removed.
func (c Config) Params() map[string]any {
	params := make(map[string]any, len(c.Extra)+3)
	maps.Copy(params, c.Extra)
	for _, k := range transportKeys {
		delete(params, k)
	}
	if c.Temperature != nil {
		params["temperature"] = *c.Temperature
	}
	if c.MaxTokens != nil {
		params["max_tokens"] = *c.MaxTokens
	}
	if c.TopP != nil {
		params["top_p"] = *c.TopP
	}
	return params
}

// WithDefaults returns a copy of c with an empty Model replaced by model.
func (c Config) WithDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	return c
}

// ResolveCredential returns c.Credential, or the first non-empty environment variable in keys.
func (c Config) ResolveCredential(keys ...string) string {
	if c.Credential != "" {
		return c.Credential
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Float returns a pointer to v, for the optional sampling fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
