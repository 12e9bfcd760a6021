package scope

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrNilToken is returned by Exit when called without a token.
	ErrNilToken = errors.New("scope: nil token")
	// ErrAlreadyExited is returned when a token is exited twice.
	ErrAlreadyExited = errors.New("scope: token already exited")
	// ErrForeignToken is returned when a token is exited on a stack that did not issue it.
	ErrForeignToken = errors.New("scope: token belongs to another stack")
)

type stackKey struct{ name string }

type frame[T any] struct {
	value  T
	prev   *frame[T]
	exited *atomic.Bool
}

// Token identifies one Enter. It is consumed by Exit.
type Token struct {
	owner  *stackKey
	exited *atomic.Bool
}

// Stack is a named register of the current value of type T.
type Stack[T any] struct {
	key *stackKey
}

// New creates an independent stack. Values entered on one stack are never visible on another.
func New[T any](name string) *Stack[T] {
	return &Stack[T]{key: &stackKey{name: name}}
}

// Name returns the name given at construction.
func (s *Stack[T]) Name() string {
	return s.key.name
}

// Enter installs v as the current value and returns the derived context and the token
// that restores the previous value.
func (s *Stack[T]) Enter(ctx context.Context, v T) (context.Context, *Token) {
	f := &frame[T]{
		value:  v,
		prev:   s.top(ctx),
		exited: new(atomic.Bool),
	}
	return context.WithValue(ctx, s.key, f), &Token{owner: s.key, exited: f.exited}
}

// Exit closes the frame opened by the matching Enter.
func (s *Stack[T]) Exit(tok *Token) error {
	if tok == nil {
		return ErrNilToken
	}
	if tok.owner != s.key {
		return ErrForeignToken
	}
	if !tok.exited.CompareAndSwap(false, true) {
		return ErrAlreadyExited
	}
	return nil
}

// Current returns the innermost open value, or the zero value and false when nothing is entered.
func (s *Stack[T]) Current(ctx context.Context) (T, bool) {
	if f := s.open(s.top(ctx)); f != nil {
		return f.value, true
	}
	var zero T
	return zero, false
}

// Depth returns the number of open frames visible from ctx.
func (s *Stack[T]) Depth(ctx context.Context) int {
	n := 0
	for f := s.open(s.top(ctx)); f != nil; f = s.open(f.prev) {
		n++
	}
	return n
}

// Do runs fn with v entered. The frame is exited on every path out of fn,
// including a panic, which keeps propagating afterwards.
func (s *Stack[T]) Do(ctx context.Context, v T, fn func(context.Context) error) error {
	ctx, tok := s.Enter(ctx, v)
	defer s.Exit(tok) //nolint:errcheck // tok is fresh, Exit cannot fail
	return fn(ctx)
}

func (s *Stack[T]) top(ctx context.Context) *frame[T] {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(s.key).(*frame[T])
	return f
}

func (s *Stack[T]) open(f *frame[T]) *frame[T] {
	for f != nil && f.exited.Load() {
		f = f.prev
	}
	return f
}
