package domain

import (
	"context"
	"time"
)

// CallPath names which of the two dispatch paths carried a turn.
type CallPath string

const (
	PathSync  CallPath = "sync"
	PathAsync CallPath = "async"
)

// TurnEvent describes one executor turn.
// OnTurnStart receives it with only the identifying fields set;
// OnTurnEnd receives it completed.
type TurnEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Backend    string        `json:"backend"`
	Model      string        `json:"model,omitempty"`
	Path       CallPath      `json:"path"`
	PromptName string        `json:"prompt_name,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Tokens     int           `json:"tokens,omitempty"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for executor observability.
// Hooks run on the goroutine driving the turn and must not block.
type LifecycleHooks struct {
	OnTurnStart func(context.Context, *TurnEvent)
	OnTurnEnd   func(context.Context, *TurnEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurnStart: chain(h.OnTurnStart, other.OnTurnStart),
		OnTurnEnd:   chain(h.OnTurnEnd, other.OnTurnEnd),
	}
}

func chain(a, b func(context.Context, *TurnEvent)) func(context.Context, *TurnEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *TurnEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
