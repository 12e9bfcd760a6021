// Package file serves prompts from a directory of .hny files.
//
// Every file is a module named after its path relative to the root, without
// the extension and with forward slashes ("support/triage" for
// support/triage.hny). Prompts are addressed as "<module>.<prompt>"; a bare
// prompt name also resolves when exactly one module defines it.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cookie-jar-solutions/honey/internal/logging"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/hny"
)

// DefaultPattern selects every .hny file below the root.
const DefaultPattern = "**/*" + hny.Ext

// ErrAmbiguous is returned when a bare prompt name is defined by more than one module.
var ErrAmbiguous = errors.New("ambiguous prompt name")

// Store implements ports.TemplateStore and ports.Watchable over a directory.
type Store struct {
	root    string
	pattern string
	logger  *slog.Logger

	mu        sync.RWMutex
	templates map[string]string
	modules   map[string][]hny.Section
	bare      map[string][]string
}

// Option configures the Store.
type Option func(*Store)

// WithPattern restricts loading to files matching a doublestar pattern relative to the root.
func WithPattern(pattern string) Option {
	return func(s *Store) {
		s.pattern = pattern
	}
}

// WithLogger configures a logger for reload events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New loads every matching file below root.
func New(root string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve prompt directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	s := &Store{
		root:    abs,
		pattern: DefaultPattern,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the absolute directory the store reads.
func (s *Store) Root() string {
	return s.root
}

// Reload re-reads every file. On error the previous contents are kept.
func (s *Store) Reload() error {
	files, err := doublestar.Glob(os.DirFS(s.root), s.pattern)
	if err != nil {
		return fmt.Errorf("failed to glob %q: %w", s.pattern, err)
	}
	sort.Strings(files)

	templates := make(map[string]string)
	modules := make(map[string][]hny.Section, len(files))
	bare := make(map[string][]string)

	for _, rel := range files {
		sections, err := hny.ParseFile(filepath.Join(s.root, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("failed to load prompts: %w", err)
		}

		module := ModuleName(rel)
		modules[module] = sections
		for _, sec := range sections {
			qualified := module + "." + sec.Name
			templates[qualified] = sec.Body
			bare[sec.Name] = append(bare[sec.Name], qualified)
		}
	}

	s.mu.Lock()
	s.templates, s.modules, s.bare = templates, modules, bare
	s.mu.Unlock()

	s.logger.Debug("Prompts loaded", "dir", s.root, "files", len(files), "prompts", len(templates))
	return nil
}

// ModuleName derives a module name from a slash-separated relative path.
func ModuleName(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// Resolve accepts qualified names and unique bare names.
func (s *Store) Resolve(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if text, ok := s.templates[name]; ok {
		return text, nil
	}

	switch matches := s.bare[name]; len(matches) {
	case 0:
		return "", fmt.Errorf("%q: %w", name, domain.ErrTemplateNotFound)
	case 1:
		return s.templates[matches[0]], nil
	default:
		return "", fmt.Errorf("%w %q: defined in %s", ErrAmbiguous, name, strings.Join(matches, ", "))
	}
}

// List returns every qualified name, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.templates))
	for k := range s.templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

// Modules returns the module names, sorted.
func (s *Store) Modules() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.modules))
	for k := range s.modules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Module returns the sections of one file in definition order.
func (s *Store) Module(name string) ([]hny.Section, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sections, ok := s.modules[name]
	if !ok {
		return nil, false
	}
	out := make([]hny.Section, len(sections))
	copy(out, sections)
	return out, true
}

// walkDirs lists the root and every directory below it.
func (s *Store) walkDirs() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			dirs = append(dirs, p)
		}
		return nil
	})
	return dirs, err
}
