package ports

import (
	"context"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
)

// TemplateStore resolves prompt names to template text.
type TemplateStore interface {
	// Resolve returns the raw template text for name.
	// It returns an error wrapping domain.ErrTemplateNotFound when the name is unknown.
	Resolve(ctx context.Context, name string) (string, error)

	// List returns every resolvable name, sorted.
	List(ctx context.Context) ([]string, error)
}

// TemplateWriter is implemented by stores that can be modified at runtime.
type TemplateWriter interface {
	TemplateStore

	// Save creates or replaces the template stored under name.
	Save(ctx context.Context, name, text string) error

	// Delete removes name. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error
}

// Watchable defines an interface for stores that can notify about backend changes.
// This is typically used for hot-reload during prompt development.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying templates change.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Describer is implemented by stores that carry prompt documentation.
type Describer interface {
	Describe(ctx context.Context, name string) (domain.PromptInfo, error)
}
