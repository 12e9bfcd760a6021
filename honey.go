package honey

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cookie-jar-solutions/honey/internal/logging"
	"github.com/cookie-jar-solutions/honey/pkg/adapters/file"
	"github.com/cookie-jar-solutions/honey/pkg/config"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/hny"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	"github.com/cookie-jar-solutions/honey/pkg/prompt"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

// Library is the high-level entry point: a template store plus the prompts bound to it.
type Library struct {
	store  ports.TemplateStore
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string

	mu      sync.Mutex
	prompts map[string]*prompt.Prompt
}

// Option defines a functional option for configuring the Library.
type Option func(*Library)

// WithStore injects a custom TemplateStore, bypassing the default directory store.
func WithStore(s ports.TemplateStore) Option {
	return func(l *Library) {
		l.store = s
	}
}

// WithLifecycleHooks registers observability hooks on every executor built by the Library.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Library) {
		l.hooks = l.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// moduleSource is implemented by stores that group prompts by file.
type moduleSource interface {
	Module(name string) ([]hny.Section, bool)
	Modules() []string
}

// New opens the prompts below dir.
// If WithStore is provided, dir can be empty and is only used as a label.
func New(dir string, opts ...Option) (*Library, error) {
	l := &Library{prompts: make(map[string]*prompt.Prompt)}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.NewNop()
	}

	if l.store == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom store is provided")
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		l.Name = filepath.Base(abs)
		l.logger = l.logger.With("library", l.Name)

		store, err := file.New(abs, file.WithLogger(l.logger))
		if err != nil {
			return nil, err
		}
		l.store = store
	} else if dir != "" {
		l.Name = filepath.Base(dir)
	}

	return l, nil
}

// Store returns the underlying TemplateStore.
func (l *Library) Store() ports.TemplateStore {
	return l.store
}

// Names lists every prompt name the store resolves.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	return l.store.List(ctx)
}

// Prompt returns the prompt bound to name. The same *prompt.Prompt is returned
// for repeated lookups, so its compiled template is shared.
func (l *Library) Prompt(name string) *prompt.Prompt {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.prompts[name]
	if !ok {
		p = prompt.Bind(l.store, name)
		l.prompts[name] = p
	}
	return p
}

// Modules lists the module names when the store groups prompts by file.
func (l *Library) Modules() []string {
	if ms, ok := l.store.(moduleSource); ok {
		return ms.Modules()
	}
	return nil
}

// Module returns one prompt file as a module.
// Prompts of the module are addressed by their bare names.
func (l *Library) Module(name string) (*prompt.Module, error) {
	ms, ok := l.store.(moduleSource)
	if !ok {
		return nil, fmt.Errorf("module %s: store has no modules: %w", name, domain.ErrTemplateNotFound)
	}
	sections, ok := ms.Module(name)
	if !ok {
		return nil, fmt.Errorf("module %s: %w", name, domain.ErrTemplateNotFound)
	}
	return prompt.NewModule(name, sections), nil
}

// Render renders the prompt without consulting any executor.
func (l *Library) Render(ctx context.Context, name string, vars domain.Vars) (string, error) {
	return l.Prompt(name).Render(ctx, vars)
}

// Call invokes the prompt on the blocking path.
func (l *Library) Call(ctx context.Context, name string, vars domain.Vars) (string, error) {
	return l.Prompt(name).Call(ctx, vars)
}

// CallAsync invokes the prompt on the suspending path.
func (l *Library) CallAsync(ctx context.Context, name string, vars domain.Vars) *task.Future[string] {
	return l.Prompt(name).CallAsync(ctx, vars)
}

// NewExecutor builds an executor for a backend with the Library's hooks attached.
func (l *Library) NewExecutor(backend string, cfg jar.Config, opts ...jar.Option) (jar.Executor, error) {
	opts = append([]jar.Option{jar.WithLifecycleHooks(l.hooks)}, opts...)
	return config.New(backend, cfg, opts...)
}

// Executor builds the executor described by a configuration profile.
func (l *Library) Executor(p config.Profile, opts ...jar.Option) (jar.Executor, error) {
	opts = append([]jar.Option{jar.WithLifecycleHooks(l.hooks)}, opts...)
	return config.Build(p, opts...)
}

// Watch returns a channel that signals after the store changes.
// Cached templates are dropped before each signal.
// Returns error if the store does not support watching.
func (l *Library) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := l.store.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current store does not support watching")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			l.reload()
			l.logger.Debug("prompts reloaded")
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

func (l *Library) reload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.prompts {
		p.Reload()
	}
}
