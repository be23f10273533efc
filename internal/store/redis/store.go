// Package redis stores deformer states in Redis as JSON strings, with a set
// indexing the stored names.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"mapped-wrap/internal/deform"
	"mapped-wrap/internal/store"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "mapwrap:deformer:"

// Store implements store.Store using Redis.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects a store to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return s.prefix + "state:" + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the state and indexes its name in one transaction.
func (s *Store) Save(ctx context.Context, st *deform.State) error {
	if st.Name == "" {
		return errors.New("redis store: empty deformer name")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("redis store: marshal %s: %w", st.Name, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(st.Name), data, 0)
		pipe.SAdd(ctx, s.indexKey(), st.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: save %s: %w", st.Name, err)
	}
	return nil
}

// Load reads one state.
func (s *Store) Load(ctx context.Context, name string) (*deform.State, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("redis store: %s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("redis store: get %s: %w", name, err)
	}

	var st deform.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("redis store: parse %s: %w", name, err)
	}
	return &st, nil
}

// List returns stored deformer names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes one state and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	var del *backend.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		del = pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: delete %s: %w", name, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("redis store: %s: %w", name, store.ErrNotFound)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
