package jar

import (
	"context"

	"github.com/cookie-jar-solutions/honey/pkg/scope"
)

// SyncScope tracks the executor consulted by blocking prompt calls.
var SyncScope = scope.New[Executor]("sync")

// AsyncScope tracks the executor consulted by prompt calls on the suspending path.
var AsyncScope = scope.New[Executor]("async")

// Enter makes ex the active executor for blocking calls made with the returned context.
func Enter(ctx context.Context, ex Executor) (context.Context, *scope.Token) {
	return SyncScope.Enter(ctx, ex)
}

// Exit restores the executor that was active before the matching Enter.
func Exit(tok *scope.Token) error {
	return SyncScope.Exit(tok)
}

// Active returns the executor active for blocking calls, or nil.
func Active(ctx context.Context) Executor {
	ex, _ := SyncScope.Current(ctx)
	return ex
}

// Use runs fn with ex active for blocking calls and restores the previous executor afterwards,
// whether fn returns an error or panics.
func Use(ctx context.Context, ex Executor, fn func(context.Context) error) error {
	return SyncScope.Do(ctx, ex, fn)
}

// EnterAsync makes ex the active executor for suspending calls made with the returned context.
func EnterAsync(ctx context.Context, ex Executor) (context.Context, *scope.Token) {
	return AsyncScope.Enter(ctx, ex)
}

// ExitAsync restores the executor that was active before the matching EnterAsync.
func ExitAsync(tok *scope.Token) error {
	return AsyncScope.Exit(tok)
}

// ActiveAsync returns the executor active for suspending calls, or nil.
func ActiveAsync(ctx context.Context) Executor {
	ex, _ := AsyncScope.Current(ctx)
	return ex
}

// UseAsync is Use for the suspending path.
func UseAsync(ctx context.Context, ex Executor, fn func(context.Context) error) error {
	return AsyncScope.Do(ctx, ex, fn)
}
