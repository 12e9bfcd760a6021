// Package config reads executor profiles from a honey.yaml file and builds
// executors from them.
//
//	default: local
//	executors:
//	  local:
//	    backend: mock
//	  gpt:
//	    backend: openai
//	    model: gpt-4.1-mini
//	    credential_env: OPENAI_API_KEY
//	    system_prompt: You are terse.
//	    style: chat
//	    params:
//	      temperature: 0.2
//	      max_tokens: 512
//	      seed: 7
//
// Known sampling parameters (temperature, max_tokens, top_p) are typed;
// anything else under params is forwarded to the backend verbatim.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the file name looked up when no path is given.
const DefaultFile = "honey.yaml"

// ErrProfileNotFound is returned when a profile name is not defined.
var ErrProfileNotFound = errors.New("executor profile not found")

// Profile describes one executor.
type Profile struct {
	Name          string         `mapstructure:"-"`
	Backend       string         `mapstructure:"backend"`
	Model         string         `mapstructure:"model"`
	Credential    string         `mapstructure:"credential"`
	CredentialEnv string         `mapstructure:"credential_env"`
	BaseURL       string         `mapstructure:"base_url"`
	SystemPrompt  string         `mapstructure:"system_prompt"`
	Style         string         `mapstructure:"style"`
	Params        map[string]any `mapstructure:"params"`
}

// File is the parsed content of honey.yaml.
type File struct {
	Default   string             `mapstructure:"default"`
	Executors map[string]Profile `mapstructure:"executors"`
}

type sampling struct {
	Temperature *float64       `mapstructure:"temperature"`
	MaxTokens   *int           `mapstructure:"max_tokens"`
	TopP        *float64       `mapstructure:"top_p"`
	Extra       map[string]any `mapstructure:",remain"`
}

// Load reads path. A missing file yields an empty File, treated as "no profiles configured".
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML bytes. Unknown profile keys are rejected.
func Parse(data []byte) (*File, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var f File
	if err := decode(raw, &f, true); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	for name, p := range f.Executors {
		p.Name = name
		f.Executors[name] = p
	}
	return &f, nil
}

func decode(input, output any, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Names lists the profile names, sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Executors))
	for name := range f.Executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns the named profile. An empty name selects the default profile,
// and a file without profiles defaults to the mock backend.
func (f *File) Profile(name string) (Profile, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" {
		if len(f.Executors) == 1 {
			for _, p := range f.Executors {
				return p, nil
			}
		}
		if len(f.Executors) == 0 {
			return Profile{Name: jar.BackendMock, Backend: jar.BackendMock}, nil
		}
		return Profile{}, fmt.Errorf("no default profile among %v", f.Names())
	}

	p, ok := f.Executors[name]
	if !ok {
		return Profile{}, fmt.Errorf("%q: %w", name, ErrProfileNotFound)
	}
	return p, nil
}

// JarConfig converts the profile into the executor construction record.
func (p Profile) JarConfig() (jar.Config, error) {
	var s sampling
	if err := decode(p.Params, &s, false); err != nil {
		return jar.Config{}, fmt.Errorf("profile %s: invalid params: %w", p.Name, err)
	}

	credential := p.Credential
	if credential == "" && p.CredentialEnv != "" {
		credential = os.Getenv(p.CredentialEnv)
	}

	return jar.Config{
		Model:        p.Model,
		Credential:   credential,
		BaseURL:      p.BaseURL,
		SystemPrompt: p.SystemPrompt,
		Style:        p.Style,
		Temperature:  s.Temperature,
		MaxTokens:    s.MaxTokens,
		TopP:         s.TopP,
		Extra:        s.Extra,
	}, nil
}
