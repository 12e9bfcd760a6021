package jar

import (
	"context"
	"fmt"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

const previewRunes = 100

// Mock is an executor that never touches the network.
// Its reply echoes the first 100 characters of the prompt.
type Mock struct {
	*Base
	reply  func(prompt string, async bool) (string, error)
	tokens int
}

// MockOption customizes a Mock.
type MockOption func(*Mock)

// MockWithReply replaces the canned reply.
func MockWithReply(fn func(prompt string, async bool) (string, error)) MockOption {
	return func(m *Mock) {
		m.reply = fn
	}
}

// MockWithTokens makes every turn report n tokens of usage.
func MockWithTokens(n int) MockOption {
	return func(m *Mock) {
		m.tokens = n
	}
}

// MockWithOptions applies executor options such as WithLifecycleHooks.
func MockWithOptions(opts ...Option) MockOption {
	return func(m *Mock) {
		for _, opt := range opts {
			opt(&m.Base.opts)
		}
	}
}

// NewMock creates a Mock executor. cfg is optional.
func NewMock(cfg Config, opts ...MockOption) *Mock {
	m := &Mock{
		Base:  NewBase(BackendMock, cfg.WithDefaults("mock")),
		reply: mockReply,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute answers immediately with the canned reply.
func (m *Mock) Execute(ctx context.Context, prompt string, md domain.Metadata) (string, error) {
	return m.Turn(ctx, prompt, md, m.call(prompt, false))
}

// ExecuteAsync returns a Future that is already resolved; the mock never suspends.
func (m *Mock) ExecuteAsync(ctx context.Context, prompt string, md domain.Metadata) *task.Future[string] {
	reply, err := m.run(ctx, domain.PathAsync, prompt, md, m.call(prompt, true))
	if err != nil {
		return task.Failed[string](err)
	}
	return task.Resolved(reply)
}

func (m *Mock) call(prompt string, async bool) TurnFunc {
	return func(context.Context, []domain.Message) (string, int, error) {
		reply, err := m.reply(prompt, async)
		return reply, m.tokens, err
	}
}

func mockReply(prompt string, async bool) (string, error) {
	marker := "[MOCK RESPONSE]"
	if async {
		marker = "[ASYNC MOCK RESPONSE]"
	}
	return fmt.Sprintf("%s\nPrompt: %s...", marker, preview(prompt)), nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}
