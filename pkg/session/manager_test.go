package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockFactory(built *atomic.Int32) session.Factory {
	return func(ctx context.Context, sessionID string) (jar.Executor, error) {
		built.Add(1)
		time.Sleep(5 * time.Millisecond)
		return jar.NewMock(jar.Config{}), nil
	}
}

func TestManager_LoadOrStart(t *testing.T) {
	// Concurrent starts for one ID share a single executor.
	var built atomic.Int32
	manager := session.NewManager(mockFactory(&built))
	ctx := context.Background()

	var wg sync.WaitGroup
	executors := make([]jar.Executor, 8)
	for i := range executors {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ex, err := manager.LoadOrStart(ctx, "atomic-init")
			assert.NoError(t, err)
			executors[i] = ex
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	for _, ex := range executors {
		assert.Same(t, executors[0], ex)
	}

	got, err := manager.Get("atomic-init")
	require.NoError(t, err)
	assert.Same(t, executors[0], got)
}

func TestManager_FactoryError(t *testing.T) {
	boom := errors.New("no credentials")
	manager := session.NewManager(func(context.Context, string) (jar.Executor, error) {
		return nil, boom
	})

	_, err := manager.LoadOrStart(context.Background(), "s1")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, manager.List())
}

func TestManager_Run(t *testing.T) {
	var built atomic.Int32
	manager := session.NewManager(mockFactory(&built))
	ctx := context.Background()

	// Turns on the same session are serialized, so every exchange lands.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Run(ctx, "chat", func(ctx context.Context, ex jar.Executor) error {
				assert.Same(t, ex, jar.Active(ctx))
				_, err := ex.Execute(ctx, "hello", domain.Metadata{})
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ex, err := manager.Get("chat")
	require.NoError(t, err)
	assert.Equal(t, 20, ex.MessageCount())
}

func TestManager_DeleteAndList(t *testing.T) {
	var built atomic.Int32
	manager := session.NewManager(mockFactory(&built))
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		_, err := manager.LoadOrStart(ctx, id)
		require.NoError(t, err)
	}

	infos := manager.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ID)
	assert.Equal(t, jar.BackendMock, infos[0].Backend)

	require.NoError(t, manager.Delete(ctx, "a"))
	require.NoError(t, manager.Delete(ctx, "missing"))

	_, err := manager.Get("a")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Len(t, manager.List(), 1)
}

func TestManager_Prune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var built atomic.Int32
	manager := session.NewManager(mockFactory(&built), session.WithClock(clock))
	ctx := context.Background()

	_, err := manager.LoadOrStart(ctx, "old")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = manager.LoadOrStart(ctx, "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, manager.Prune(30*time.Minute))

	_, err = manager.Get("old")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = manager.Get("fresh")
	assert.NoError(t, err)
}

func TestManager_CancelledContext(t *testing.T) {
	var built atomic.Int32
	manager := session.NewManager(mockFactory(&built))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.LoadOrStart(ctx, "s")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, built.Load())
}
