// Package viewmodel adapts resource clients and the guest store into
// render-ready FetchState values with loading and error tracking.
package viewmodel

import (
	"context"
	"sync"
)

// FetchState is what a consumer renders: the data, whether a load is in
// flight, and the last load's error text.
type FetchState[T any] struct {
	Data    T      `json:"data"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// FetchFunc loads a value.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loader runs a FetchFunc and tracks its FetchState.
//
// Each Load takes a sequence token; a result whose token is no longer the
// latest is dropped, as is any result arriving after Close. A failed load
// keeps the previous Data.
type Loader[T any] struct {
	fetch FetchFunc[T]

	mu     sync.Mutex
	state  FetchState[T]
	seq    uint64
	closed bool
	subs   map[int]func(FetchState[T])
	nextID int
}

// NewLoader returns an idle loader whose Data starts at initial.
func NewLoader[T any](initial T, fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{
		fetch: fetch,
		state: FetchState[T]{Data: initial},
		subs:  make(map[int]func(FetchState[T])),
	}
}

// Load fetches and records the outcome. It returns the fetch error so
// imperative callers (CLI commands) can act on it; the same error is
// reflected in State().Error. Superseded or post-Close results return nil.
func (l *Loader[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.seq++
	token := l.seq
	l.state.Loading = true
	l.state.Error = ""
	snap := l.state
	l.mu.Unlock()
	l.publish(snap)

	data, err := l.fetch(ctx)

	l.mu.Lock()
	if l.closed || token != l.seq {
		l.mu.Unlock()
		return nil
	}
	l.state.Loading = false
	if err != nil {
		l.state.Error = FormatError(err)
	} else {
		l.state.Data = data
	}
	snap = l.state
	l.mu.Unlock()
	l.publish(snap)

	return err
}

// State returns the current FetchState.
func (l *Loader[T]) State() FetchState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Subscribe calls fn on every state transition until the returned func is
// called or the loader is closed.
func (l *Loader[T]) Subscribe(fn func(FetchState[T])) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Close disposes the loader. In-flight results are discarded.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	l.closed = true
	l.subs = make(map[int]func(FetchState[T]))
	l.mu.Unlock()
}

func (l *Loader[T]) publish(s FetchState[T]) {
	l.mu.Lock()
	fns := make([]func(FetchState[T]), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// FormatError renders err the way FetchState.Error shows it.
func FormatError(err error) string {
	return "Error: " + err.Error()
}
