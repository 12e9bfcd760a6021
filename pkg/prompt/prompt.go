// Package prompt turns named templates into invocables.
//
// A Prompt renders its template with the given variables and then looks at the
// active executor for its call path. With none active the rendered text is the
// result; otherwise the text becomes a turn of that executor's conversation.
package prompt

import (
	"context"
	"fmt"
	"sync"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	"github.com/cookie-jar-solutions/honey/pkg/render"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

// Prompt is a named template callable as a function.
type Prompt struct {
	name  string
	store ports.TemplateStore

	mu  sync.Mutex
	tpl *render.Template
}

// Bind returns a Prompt whose template is resolved from store on first use.
// Resolution failures are not cached; a missing name is reported on every call.
func Bind(store ports.TemplateStore, name string) *Prompt {
	return &Prompt{name: name, store: store}
}

// New returns a Prompt over literal template text.
func New(name, text string) *Prompt {
	return &Prompt{name: name, store: literal(text)}
}

// Name returns the name the prompt was bound to.
func (p *Prompt) Name() string {
	return p.name
}

// Template returns the raw template text.
func (p *Prompt) Template(ctx context.Context) (string, error) {
	tpl, err := p.compiled(ctx)
	if err != nil {
		return "", err
	}
	return tpl.Source(), nil
}

// Reload drops the compiled template so the next call resolves it again.
func (p *Prompt) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tpl = nil
}

// Render renders the template with vars, ignoring any active executor.
func (p *Prompt) Render(ctx context.Context, vars domain.Vars) (string, error) {
	tpl, err := p.compiled(ctx)
	if err != nil {
		return "", err
	}
	return tpl.Render(vars)
}

// Call is the blocking invocation. It returns the rendered text when no executor
// is active on the sync register, and the executor's reply otherwise.
// Executor errors are returned unchanged.
func (p *Prompt) Call(ctx context.Context, vars domain.Vars) (string, error) {
	tpl, err := p.compiled(ctx)
	if err != nil {
		return "", err
	}
	text, err := tpl.Render(vars)
	if err != nil {
		return "", err
	}

	ex := jar.Active(ctx)
	if ex == nil {
		return text, nil
	}
	return ex.Execute(ctx, text, p.metadata(tpl))
}

// CallAsync is the suspending invocation. It consults the async register only:
// with no executor active the Future resolves to the rendered text.
func (p *Prompt) CallAsync(ctx context.Context, vars domain.Vars) *task.Future[string] {
	tpl, err := p.compiled(ctx)
	if err != nil {
		return task.Failed[string](err)
	}
	text, err := tpl.Render(vars)
	if err != nil {
		return task.Failed[string](err)
	}

	ex := jar.ActiveAsync(ctx)
	if ex == nil {
		return task.Resolved(text)
	}
	return ex.ExecuteAsync(ctx, text, p.metadata(tpl))
}

func (p *Prompt) metadata(tpl *render.Template) domain.Metadata {
	return domain.Metadata{PromptName: p.name, Template: tpl.Source()}
}

func (p *Prompt) compiled(ctx context.Context) (*render.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tpl != nil {
		return p.tpl, nil
	}

	text, err := p.store.Resolve(ctx, p.name)
	if err != nil {
		return nil, err
	}
	tpl, err := render.Compile(text)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", p.name, err)
	}
	p.tpl = tpl
	return tpl, nil
}

// literal is a single-template store used by New.
type literal string

func (l literal) Resolve(context.Context, string) (string, error) { return string(l), nil }

func (l literal) List(context.Context) ([]string, error) { return nil, nil }
