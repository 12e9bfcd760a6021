package jar

import (
	"context"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

// Backend names used in events, metrics and configuration.
const (
	BackendMock             = "mock"
	BackendOpenAI           = "openai"
	BackendOpenAICompatible = "openai-compatible"
	BackendAnthropic        = "anthropic"
	BackendGemini           = "gemini"
)

// Executor is a conversation session bound to a backend.
type Executor interface {
	// Execute appends prompt as a user message, sends the whole log to the backend,
	// appends the reply as an assistant message and returns it.
	Execute(ctx context.Context, prompt string, md domain.Metadata) (string, error)

	// ExecuteAsync performs the same turn on the suspending path.
	// The user message is appended before the returned Future starts waiting on the backend.
	ExecuteAsync(ctx context.Context, prompt string, md domain.Metadata) *task.Future[string]

	// AddSystemPrompt sets the system message, replacing an existing one in place.
	AddSystemPrompt(text string)

	// AddMessage appends a message without calling the backend.
	AddMessage(role domain.Role, text string)

	// History returns a copy of the conversation log.
	History() []domain.Message

	// ClearHistory drops the log and resets the counters.
	ClearHistory()

	MessageCount() int
	TotalTokens() int

	// Backend returns the backend name, e.g. "openai".
	Backend() string
}
