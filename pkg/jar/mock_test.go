package jar_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_Execute(t *testing.T) {
	m := jar.NewMock(jar.Config{})

	reply, err := m.Execute(context.Background(), "Hello", domain.Metadata{PromptName: "greet"})
	require.NoError(t, err)
	assert.Equal(t, "[MOCK RESPONSE]\nPrompt: Hello...", reply)

	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "Hello"},
		{Role: domain.RoleAssistant, Content: reply},
	}, m.History())
	assert.Equal(t, 2, m.MessageCount())
	assert.Equal(t, jar.BackendMock, m.Backend())
}

func TestMock_PreviewTruncatesAt100Runes(t *testing.T) {
	m := jar.NewMock(jar.Config{})
	long := strings.Repeat("é", 150)

	reply, err := m.Execute(context.Background(), long, domain.Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "[MOCK RESPONSE]\nPrompt: "+strings.Repeat("é", 100)+"...", reply)
}

func TestMock_ExecuteAsync(t *testing.T) {
	m := jar.NewMock(jar.Config{})

	f := m.ExecuteAsync(context.Background(), "Hi", domain.Metadata{})

	// The mock never suspends: the future is resolved on return.
	select {
	case <-f.Done():
	default:
		t.Fatal("mock future should already be resolved")
	}

	reply, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "[ASYNC MOCK RESPONSE]"))
	assert.Len(t, m.History(), 2)
}

func TestMock_SystemPromptAtConstruction(t *testing.T) {
	m := jar.NewMock(jar.Config{SystemPrompt: "be terse"})

	assert.Equal(t, 1, m.MessageCount())
	assert.Equal(t, domain.Message{Role: domain.RoleSystem, Content: "be terse"}, m.History()[0])

	// Upsert replaces in place
	m.AddSystemPrompt("be verbose")
	assert.Equal(t, 1, m.MessageCount())
	assert.Len(t, m.History(), 1)
	assert.Equal(t, "be verbose", m.History()[0].Content)
}

func TestMock_HistoryIsCopy(t *testing.T) {
	m := jar.NewMock(jar.Config{})
	m.AddMessage(domain.RoleUser, "a")

	h := m.History()
	h[0].Content = "changed"
	h = append(h, domain.Message{Role: domain.RoleUser, Content: "b"})

	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "a"}}, m.History())
}

func TestMock_ClearHistory(t *testing.T) {
	m := jar.NewMock(jar.Config{SystemPrompt: "sys"}, jar.MockWithTokens(7))
	_, err := m.Execute(context.Background(), "q", domain.Metadata{})
	require.NoError(t, err)
	assert.Equal(t, 7, m.TotalTokens())

	m.ClearHistory()

	assert.Empty(t, m.History())
	assert.Zero(t, m.MessageCount())
	assert.Zero(t, m.TotalTokens())
}

func TestMock_FailureKeepsUserMessage(t *testing.T) {
	boom := errors.New("boom")
	m := jar.NewMock(jar.Config{}, jar.MockWithReply(func(string, bool) (string, error) {
		return "", boom
	}))

	_, err := m.Execute(context.Background(), "q", domain.Metadata{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "q"}}, m.History())
	assert.Equal(t, 1, m.MessageCount())
}

func TestMock_LifecycleHooks(t *testing.T) {
	var mu sync.Mutex
	var events []domain.TurnEvent

	hooks := domain.LifecycleHooks{
		OnTurnStart: func(_ context.Context, e *domain.TurnEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, *e)
		},
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, *e)
		},
	}
	m := jar.NewMock(jar.Config{}, jar.MockWithTokens(3), jar.MockWithOptions(jar.WithLifecycleHooks(hooks)))

	_, err := m.Execute(context.Background(), "q", domain.Metadata{PromptName: "p"})
	require.NoError(t, err)
	_, err = m.ExecuteAsync(context.Background(), "q", domain.Metadata{PromptName: "p"}).Await(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, domain.PathSync, events[0].Path)
	assert.Equal(t, "p", events[0].PromptName)
	assert.Equal(t, 3, events[1].Tokens)
	assert.Equal(t, domain.PathAsync, events[3].Path)
	assert.NoError(t, events[3].Err)
}
