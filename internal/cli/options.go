package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cookie-jar-solutions/honey"
	"github.com/cookie-jar-solutions/honey/pkg/config"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/observability"
	"gopkg.in/yaml.v3"
)

// Options are the settings shared by every command.
type Options struct {
	Dir        string
	ConfigPath string
	Profile    string

	// Overrides applied on top of the selected profile.
	Backend string
	Model   string
	System  string

	Vars     []string
	Markdown bool
	Debug    bool
}

// ParseVars turns key=value pairs into template variables.
// Values are read as YAML scalars, so "n=3" yields an int and "ok=true" a bool.
func ParseVars(pairs []string) (domain.Vars, error) {
	vars := make(domain.Vars, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q: expected key=value", pair)
		}
		vars[key] = scalar(raw)
	}
	return vars, nil
}

func scalar(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		// only scalars are converted
		return raw
	}
	return v
}

func (o Options) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return filepath.Join(o.Dir, config.DefaultFile)
}

// ResolveProfile loads the configuration file and applies the command line overrides.
func ResolveProfile(opts Options) (config.Profile, error) {
	f, err := config.Load(opts.configPath())
	if err != nil {
		return config.Profile{}, err
	}
	p, err := f.Profile(opts.Profile)
	if err != nil {
		return config.Profile{}, err
	}

	if opts.Backend != "" && opts.Backend != p.Backend {
		// a different backend does not inherit the profile's model
		p.Backend = opts.Backend
		p.Model = ""
	}
	if opts.Model != "" {
		p.Model = opts.Model
	}
	if opts.System != "" {
		p.SystemPrompt = opts.System
	}
	return p, nil
}

// OpenLibrary opens the prompt directory with debug logging attached to every executor.
func OpenLibrary(opts Options, logger *slog.Logger, extra ...honey.Option) (*honey.Library, error) {
	libOpts := append([]honey.Option{
		honey.WithLogger(logger),
		honey.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}, extra...)
	return honey.New(opts.Dir, libOpts...)
}

// NewExecutor builds the executor selected by opts.
func NewExecutor(lib *honey.Library, opts Options) (jar.Executor, error) {
	p, err := ResolveProfile(opts)
	if err != nil {
		return nil, err
	}
	return lib.Executor(p)
}
