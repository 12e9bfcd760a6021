package prompt

import (
	"context"
	"fmt"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/hny"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	"github.com/cookie-jar-solutions/honey/pkg/task"
)

// Module is an ordered set of prompts, typically the sections of one .hny file.
type Module struct {
	name    string
	prompts []*Prompt
	index   map[string]*Prompt
}

// NewModule builds a module from parsed sections.
func NewModule(name string, sections []hny.Section) *Module {
	m := &Module{name: name, index: make(map[string]*Prompt, len(sections))}
	for _, s := range sections {
		m.add(New(s.Name, s.Body))
	}
	return m
}

// FromStore binds every name listed by store.
func FromStore(ctx context.Context, name string, store ports.TemplateStore) (*Module, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	m := &Module{name: name, index: make(map[string]*Prompt, len(names))}
	for _, n := range names {
		m.add(Bind(store, n))
	}
	return m, nil
}

func (m *Module) add(p *Prompt) {
	m.prompts = append(m.prompts, p)
	m.index[p.Name()] = p
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Get returns the prompt called name.
func (m *Module) Get(name string) (*Prompt, bool) {
	p, ok := m.index[name]
	return p, ok
}

// Names lists the prompts in definition order.
func (m *Module) Names() []string {
	names := make([]string, len(m.prompts))
	for i, p := range m.prompts {
		names[i] = p.Name()
	}
	return names
}

// Prompts returns the prompts in definition order.
func (m *Module) Prompts() []*Prompt {
	out := make([]*Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Call invokes the prompt called name on the blocking path.
func (m *Module) Call(ctx context.Context, name string, vars domain.Vars) (string, error) {
	p, ok := m.index[name]
	if !ok {
		return "", fmt.Errorf("%s.%s: %w", m.name, name, domain.ErrTemplateNotFound)
	}
	return p.Call(ctx, vars)
}

// CallAsync invokes the prompt called name on the suspending path.
func (m *Module) CallAsync(ctx context.Context, name string, vars domain.Vars) *task.Future[string] {
	p, ok := m.index[name]
	if !ok {
		return task.Failed[string](fmt.Errorf("%s.%s: %w", m.name, name, domain.ErrTemplateNotFound))
	}
	return p.CallAsync(ctx, vars)
}
