package config

import (
	"fmt"

	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/jar/anthropic"
	"github.com/cookie-jar-solutions/honey/pkg/jar/gemini"
	"github.com/cookie-jar-solutions/honey/pkg/jar/openai"
)

// Backends lists the backend names Build accepts.
var Backends = []string{
	jar.BackendMock,
	jar.BackendOpenAI,
	jar.BackendOpenAICompatible,
	jar.BackendAnthropic,
	jar.BackendGemini,
}

// Build creates an executor for the profile. No network call is made.
func Build(p Profile, opts ...jar.Option) (jar.Executor, error) {
	cfg, err := p.JarConfig()
	if err != nil {
		return nil, err
	}
	return New(p.Backend, cfg, opts...)
}

// New creates an executor for a backend name.
func New(backend string, cfg jar.Config, opts ...jar.Option) (jar.Executor, error) {
	switch backend {
	case jar.BackendMock, "":
		return jar.NewMock(cfg, jar.MockWithOptions(opts...)), nil
	case jar.BackendOpenAI:
		return openai.New(cfg, opts...), nil
	case jar.BackendOpenAICompatible:
		return openai.NewCompatible(cfg, opts...), nil
	case jar.BackendAnthropic:
		return anthropic.New(cfg, opts...), nil
	case jar.BackendGemini:
		return gemini.New(cfg, opts...), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", backend)
	}
}
