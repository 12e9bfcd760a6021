// Package redis serves prompt templates from a Redis hash, so a fleet of
// processes can share and hot-update one prompt catalogue.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "honey:"

// Store implements ports.TemplateWriter and ports.Watchable using Redis.
// Templates live in one hash; every write is announced on a pub/sub channel.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for the templates hash and the change channel.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) hashKey() string {
	return s.prefix + "templates"
}

func (s *Store) channel() string {
	return s.prefix + "templates:changed"
}

// Resolve reads one template.
func (s *Store) Resolve(ctx context.Context, name string) (string, error) {
	val, err := s.client.HGet(ctx, s.hashKey(), name).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", fmt.Errorf("%q: %w", name, domain.ErrTemplateNotFound)
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// List returns every template name, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Save writes a template and announces the change.
func (s *Store) Save(ctx context.Context, name, text string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.hashKey(), name, text)
	pipe.Publish(ctx, s.channel(), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes a template and announces the change.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, s.hashKey(), name)
	pipe.Publish(ctx, s.channel(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// Import saves many templates in one round trip.
func (s *Store) Import(ctx context.Context, templates map[string]string) error {
	if len(templates) == 0 {
		return nil
	}
	values := make(map[string]any, len(templates))
	for k, v := range templates {
		values[k] = v
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.hashKey(), values)
	pipe.Publish(ctx, s.channel(), "*")

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to import templates: %w", err)
	}
	return nil
}

// Watch implements ports.Watchable by subscribing to the change channel.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no write is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
