package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cookie-jar-solutions/honey/pkg/adapters/redis"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	contract "github.com/cookie-jar-solutions/honey/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_WriterContract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunTemplateWriterContract(t, store)
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	data := map[string]string{
		"greet":   "Hello, {{ name }}!",
		"summary": "Summarize {{ text }}",
	}
	require.NoError(t, store.Import(context.Background(), data))

	contract.TemplateStoreContractTest(t, store, data)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("app:"))
	require.NoError(t, store.Save(context.Background(), "x", "y"))

	assert.Equal(t, "y", mr.HGet("app:templates", "x"))
}

func TestRedisStore_Watch(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "greet", "Hi"))

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected change notification")
	}
}
