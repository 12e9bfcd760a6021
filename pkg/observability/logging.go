package observability

import (
	"context"
	"log/slog"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log each turn to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn_start",
				"backend", e.Backend,
				"model", e.Model,
				"path", e.Path,
				"prompt", e.PromptName,
			)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			attrs := []any{
				"backend", e.Backend,
				"path", e.Path,
				"prompt", e.PromptName,
				"duration", e.Duration,
				"tokens", e.Tokens,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "turn_failed", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "turn_end", attrs...)
		},
	}
}
