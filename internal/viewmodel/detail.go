package viewmodel

import (
	"context"
	"sync"

	"storefront-client/internal/model"
)

// Detail is a Loader keyed by a record id. Changing the id re-fetches;
// an empty id is ignored.
type Detail[T any] struct {
	*Loader[*T]

	mu sync.Mutex
	id model.ID
}

// NewDetail builds a Detail around fetch. Data starts nil.
func NewDetail[T any](fetch func(ctx context.Context, id model.ID) (*T, error)) *Detail[T] {
	d := &Detail[T]{}
	d.Loader = NewLoader[*T](nil, func(ctx context.Context) (*T, error) {
		return fetch(ctx, d.ID())
	})
	return d
}

// SetID switches to id and loads it. Empty or unchanged ids are a no-op.
func (d *Detail[T]) SetID(ctx context.Context, id model.ID) error {
	d.mu.Lock()
	if id == "" || id == d.id {
		d.mu.Unlock()
		return nil
	}
	d.id = id
	d.mu.Unlock()
	return d.Load(ctx)
}

// ID returns the current record id.
func (d *Detail[T]) ID() model.ID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}
