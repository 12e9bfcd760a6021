package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/hny"
)

// Store implements ports.TemplateWriter and ports.Watchable in memory.
// Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	templates map[string]string
	watchers  []chan struct{}
}

// NewStore creates a store holding a copy of data.
func NewStore(data map[string]string) *Store {
	s := &Store{templates: make(map[string]string, len(data))}
	for k, v := range data {
		s.templates[k] = v
	}
	return s
}

// NewFromSections creates a store from parsed .hny sections.
func NewFromSections(sections []hny.Section) *Store {
	s := NewStore(nil)
	for _, sec := range sections {
		s.templates[sec.Name] = sec.Body
	}
	return s
}

// Resolve returns the template stored under name.
func (s *Store) Resolve(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, domain.ErrTemplateNotFound)
	}
	return text, nil
}

// List returns all names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.templates))
	for k := range s.templates {
		names = append(names, k)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// Save creates or replaces a template.
func (s *Store) Save(ctx context.Context, name, text string) error {
	s.mu.Lock()
	s.templates[name] = text
	s.mu.Unlock()

	s.notify()
	return nil
}

// Delete removes a template.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	_, existed := s.templates[name]
	delete(s.templates, name)
	s.mu.Unlock()

	if existed {
		s.notify()
	}
	return nil
}

// Watch signals after every Save and every Delete that removed something.
// Signals are coalesced when the receiver is slow.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.watchers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}
