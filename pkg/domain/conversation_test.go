package domain_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_UpsertSystem(t *testing.T) {
	c := domain.NewConversation()

	// 1. First insertion counts as an append
	c.UpsertSystem("be terse")
	assert.Equal(t, 1, c.MessageCount())

	// 2. Replacing keeps both the length and the counter
	c.Append(domain.RoleUser, "hi")
	c.UpsertSystem("be verbose")
	assert.Equal(t, 2, c.MessageCount())
	assert.Equal(t, 2, c.Len())

	msgs := c.Messages()
	assert.Equal(t, domain.Message{Role: domain.RoleSystem, Content: "be verbose"}, msgs[0])

	prompt, ok := c.SystemPrompt()
	assert.True(t, ok)
	assert.Equal(t, "be verbose", prompt)
}

func TestConversation_UpsertSystemAfterMessages(t *testing.T) {
	c := domain.NewConversation()
	c.Append(domain.RoleUser, "q")
	c.Append(domain.RoleAssistant, "a")

	c.UpsertSystem("sys")

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Equal(t, domain.RoleUser, msgs[1].Role)
	assert.Equal(t, 3, c.MessageCount())
}

func TestConversation_MessagesIsCopy(t *testing.T) {
	c := domain.NewConversation()
	c.Append(domain.RoleUser, "original")

	msgs := c.Messages()
	msgs[0].Content = "tampered"
	_ = append(msgs, domain.Message{Role: domain.RoleUser, Content: "extra"})

	assert.Equal(t, "original", c.Messages()[0].Content)
	assert.Equal(t, 1, c.Len())
}

func TestConversation_Clear(t *testing.T) {
	c := domain.NewConversation()
	c.UpsertSystem("sys")
	c.Append(domain.RoleUser, "q")
	c.AddTokens(42)

	c.Clear()

	assert.Empty(t, c.Messages())
	assert.Zero(t, c.MessageCount())
	assert.Zero(t, c.TotalTokens())
	_, ok := c.SystemPrompt()
	assert.False(t, ok)
}

func TestConversation_AddTokensIgnoresNegative(t *testing.T) {
	c := domain.NewConversation()
	c.AddTokens(10)
	c.AddTokens(-5)
	c.AddTokens(0)
	assert.Equal(t, 10, c.TotalTokens())
}

func TestConversation_ConcurrentAppends(t *testing.T) {
	c := domain.NewConversation()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Append(domain.RoleUser, fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	assert.Equal(t, 50, c.MessageCount())
}

func TestBackendError_MatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("turn: %w", &domain.BackendError{Backend: "openai", StatusCode: 500, Body: "boom", Err: cause})

	assert.ErrorIs(t, err, domain.ErrBackendCallFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrBackendUnavailable)

	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 500, be.StatusCode)
	assert.Contains(t, be.Error(), "status 500")
}

func TestUnavailable_WrapsCause(t *testing.T) {
	cause := errors.New("missing credential")
	err := domain.Unavailable("anthropic", cause)

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnTurnStart: func(context.Context, *domain.TurnEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnTurnStart: func(context.Context, *domain.TurnEvent) { calls = append(calls, "b") },
		OnTurnEnd:   func(context.Context, *domain.TurnEvent) { calls = append(calls, "end") },
	}

	merged := a.Merge(b)
	merged.OnTurnStart(context.Background(), &domain.TurnEvent{})
	merged.OnTurnEnd(context.Background(), &domain.TurnEvent{})

	assert.Equal(t, []string{"a", "b", "end"}, calls)
}
