// Package loam serves prompts written as markdown documents with frontmatter,
// read through a Loam repository:
//
//	---
//	name: summarize
//	description: Summarize a text
//	arguments:
//	  - name: text
//	    required: true
//	---
//	Summarize the following text: {{ text }}
//
// The prompt name is the frontmatter name, or the document path without its extension.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
)

// WatchPattern selects the documents that trigger a reload signal.
const WatchPattern = "**/*.md"

// Store adapts a Loam repository to ports.TemplateStore, ports.Describer and ports.Watchable.
type Store struct {
	Repo *loam.TypedRepository[PromptMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[PromptMetadata]) *Store {
	return &Store{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PromptMetadata](repo)), nil
}

type entry struct {
	info  domain.PromptInfo
	docID string
}

// index lists every document and keys it by prompt name.
// List carries ids and frontmatter only; bodies are read with Get.
func (s *Store) index(ctx context.Context) (map[string]entry, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	out := make(map[string]entry, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}

		// Collision Detection
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: prompt '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID

		out[name] = entry{
			info:  info(name, doc.Data),
			docID: doc.ID,
		}
	}
	return out, nil
}

// Resolve returns the markdown body of the named prompt.
func (s *Store) Resolve(ctx context.Context, name string) (string, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return "", err
	}
	e, ok := idx[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, domain.ErrTemplateNotFound)
	}

	doc, err := s.Repo.Get(ctx, e.docID)
	if err != nil {
		return "", fmt.Errorf("loam get failed for %s: %w", e.docID, err)
	}
	return strings.TrimSpace(doc.Content), nil
}

// List returns every prompt name, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Describe returns the frontmatter documentation of a prompt.
func (s *Store) Describe(ctx context.Context, name string) (domain.PromptInfo, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return domain.PromptInfo{}, err
	}
	e, ok := idx[name]
	if !ok {
		return domain.PromptInfo{}, fmt.Errorf("%q: %w", name, domain.ErrTemplateNotFound)
	}
	return e.info, nil
}

// Watch implements ports.Watchable.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func info(name string, meta PromptMetadata) domain.PromptInfo {
	pi := domain.PromptInfo{Name: name, Description: meta.Description}
	for _, a := range meta.Arguments {
		pi.Arguments = append(pi.Arguments, domain.Argument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	return pi
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
