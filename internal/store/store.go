// Package store defines how deformer states persist between sessions.
package store

import (
	"context"
	"errors"

	"mapped-wrap/internal/deform"
)

// ErrNotFound is returned when no state is stored under a name.
var ErrNotFound = errors.New("deformer state not found")

// Store persists deformer states by deformer name.
type Store interface {
	Save(ctx context.Context, s *deform.State) error
	Load(ctx context.Context, name string) (*deform.State, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// LoadAll loads every stored state in List order.
func LoadAll(ctx context.Context, st Store) ([]*deform.State, error) {
	names, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*deform.State, 0, len(names))
	for _, n := range names {
		s, err := st.Load(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
