/*
Package scope implements a context-carried register with nested, token-based
enter and exit.

A Stack holds "the current value" for whoever holds a context derived from an
Enter. Nothing is stored globally: two goroutines that derive their contexts
from the same parent see only the values they entered themselves, which is
what makes the register safe to use from concurrent call paths.

	ctx, tok := stack.Enter(ctx, v)
	defer stack.Exit(tok)

	cur, ok := stack.Current(ctx) // v, true

Exiting marks the frame closed, so even a context captured inside the scope
reports the outer value afterwards.
*/
package scope
