package jar

import (
	"context"
	"net/http"
	"time"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

// Option configures an executor.
type Option func(*options)

type options struct {
	hooks      domain.LifecycleHooks
	httpClient *http.Client
}

// WithLifecycleHooks registers callbacks fired around every turn.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithHTTPClient sets the client used by vendor executors.
// The default client has no timeout; cancellation comes from the call context.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// TurnFunc performs one backend call. history is the log as of the user message of the turn.
type TurnFunc func(ctx context.Context, history []domain.Message) (reply string, tokens int, err error)

// Base implements the conversation operations of Executor and the turn sequence.
// Vendor executors embed it and supply only the backend call.
type Base struct {
	backend string
	cfg     Config
	conv    *domain.Conversation
	opts    options
}

// NewBase stores cfg and, when cfg.SystemPrompt is set, installs it as the first message.
// It performs no I/O.
func NewBase(backend string, cfg Config, opts ...Option) *Base {
	b := &Base{
		backend: backend,
		cfg:     cfg,
		conv:    domain.NewConversation(),
		opts:    options{httpClient: http.DefaultClient},
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	if cfg.SystemPrompt != "" {
		b.conv.UpsertSystem(cfg.SystemPrompt)
	}
	return b
}

func (b *Base) Backend() string { return b.backend }

// Config returns the construction record.
func (b *Base) Config() Config { return b.cfg }

// HTTPClient returns the client configured with WithHTTPClient.
func (b *Base) HTTPClient() *http.Client { return b.opts.httpClient }

func (b *Base) AddSystemPrompt(text string) { b.conv.UpsertSystem(text) }

func (b *Base) AddMessage(role domain.Role, text string) { b.conv.Append(role, text) }

func (b *Base) History() []domain.Message { return b.conv.Messages() }

func (b *Base) ClearHistory() { b.conv.Clear() }

func (b *Base) MessageCount() int { return b.conv.MessageCount() }

func (b *Base) TotalTokens() int { return b.conv.TotalTokens() }

// Turn runs one blocking turn: append the user message, call, append the reply, count tokens.
// When call fails the user message stays in the log and the error is returned as is.
func (b *Base) Turn(ctx context.Context, prompt string, md domain.Metadata, call TurnFunc) (string, error) {
	return b.run(ctx, domain.PathSync, prompt, md, call)
}

func (b *Base) run(ctx context.Context, path domain.CallPath, prompt string, md domain.Metadata, call TurnFunc) (string, error) {
	ev := b.start(ctx, path, md)
	b.conv.Append(domain.RoleUser, prompt)
	return b.finish(ctx, ev, call, b.conv.Messages())
}

// TurnAsync runs the same sequence on the suspending path. The user message is appended
// and the log captured before the returned Future waits on call.
func (b *Base) TurnAsync(ctx context.Context, prompt string, md domain.Metadata, call TurnFunc) *task.Future[string] {
	ev := b.start(ctx, domain.PathAsync, md)
	b.conv.Append(domain.RoleUser, prompt)
	history := b.conv.Messages()
	return task.Go(ctx, func(ctx context.Context) (string, error) {
		return b.finish(ctx, ev, call, history)
	})
}

func (b *Base) start(ctx context.Context, path domain.CallPath, md domain.Metadata) *domain.TurnEvent {
	ev := &domain.TurnEvent{
		Timestamp:  time.Now(),
		Backend:    b.backend,
		Model:      b.cfg.Model,
		Path:       path,
		PromptName: md.PromptName,
	}
	if b.opts.hooks.OnTurnStart != nil {
		b.opts.hooks.OnTurnStart(ctx, ev)
	}
	return ev
}

func (b *Base) finish(ctx context.Context, ev *domain.TurnEvent, call TurnFunc, history []domain.Message) (string, error) {
	reply, tokens, err := call(ctx, history)
	if err == nil {
		b.conv.Append(domain.RoleAssistant, reply)
		b.conv.AddTokens(tokens)
	}

	ev.Duration = time.Since(ev.Timestamp)
	ev.Tokens = tokens
	ev.Err = err
	if b.opts.hooks.OnTurnEnd != nil {
		b.opts.hooks.OnTurnEnd(ctx, ev)
	}

	if err != nil {
		return "", err
	}
	return reply, nil
}
