// Package guest keeps an anonymous visitor's cart or wishlist in local
// storage with the same semantics as the server-side resources.
package guest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"storefront-client/internal/localstore"
	"storefront-client/internal/model"
)

// Storage keys for the two guest collections.
const (
	CartKey     = "guest_cart"
	WishlistKey = "guest_wishlist"
)

// schemaVersion is written into every envelope. Version 0 is the legacy
// bare-array format.
const schemaVersion = 1

type envelope struct {
	Version int          `json:"version"`
	Lines   []model.Line `json:"lines"`
}

// Store is one guest collection. Every mutation reads, modifies and writes
// the whole collection under mu; other processes sharing the backend are
// last-writer-wins.
type Store struct {
	key    string
	logger *slog.Logger

	mu      sync.Mutex
	backend localstore.Store
	err     error
}

// New creates a guest store persisting under key.
func New(backend localstore.Store, key string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if backend == nil {
		backend = localstore.NewMemory()
	}
	return &Store{key: key, backend: backend, logger: logger}
}

// Degraded reports whether persistence failed and the store is memory-only.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err != nil
}

// Err returns the storage failure that degraded the store, if any.
// It matches model.ErrLocalStorage.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Lines returns the current lines. Missing or corrupt data reads as empty.
func (s *Store) Lines(ctx context.Context) []model.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Add inserts a line for (product, variant) or increments the existing one.
// Quantity is clamped to at least 1.
func (s *Store) Add(ctx context.Context, product model.ProductRef, variant *model.VariantRef, qty int) []model.Line {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.read(ctx)
	var variantID model.ID
	if variant != nil {
		variantID = variant.ID
	}
	id := lineKey(product.ID, variantID)

	for i := range lines {
		if lines[i].ProductID == product.ID && lines[i].VariantID == variantID {
			lines[i].Quantity += qty
			s.write(ctx, lines)
			return cloneLines(lines)
		}
	}

	line := model.Line{
		LineID:      id,
		ProductID:   product.ID,
		Name:        product.Name,
		ImageURL:    product.ImageURL,
		Category:    product.Category,
		Subcategory: product.Subcategory,
		UnitPrice:   product.Price,
		Quantity:    qty,
	}
	if variant != nil {
		line.VariantID = variant.ID
		line.VariantName = variant.Name
		line.VariantImageURL = variant.ImageURL
		if !variant.Price.IsZero() {
			line.UnitPrice = variant.Price
		}
	}
	lines = append(lines, line)
	s.write(ctx, lines)
	return cloneLines(lines)
}

// Update sets a line's quantity. A quantity of zero or less removes it.
// Unknown ids leave the collection unchanged.
func (s *Store) Update(ctx context.Context, lineID model.ID, qty int) []model.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.read(ctx)
	idx := indexOf(lines, lineID)
	if idx < 0 {
		return cloneLines(lines)
	}
	if qty <= 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	} else {
		lines[idx].Quantity = qty
	}
	s.write(ctx, lines)
	return cloneLines(lines)
}

// Remove deletes a line. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, lineID model.ID) []model.Line {
	return s.Update(ctx, lineID, 0)
}

// Clear drops the whole collection.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Clear(ctx, s.key); err != nil {
		s.degrade(ctx, "clear", err, nil)
	}
}

// MapForDisplay converts guest lines into the shared render shape.
func MapForDisplay(lines []model.Line) []model.DisplayLine {
	return model.DisplayLines(lines)
}

// read loads and decodes the collection. Callers hold mu.
func (s *Store) read(ctx context.Context) []model.Line {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, localstore.ErrNotFound) {
		return []model.Line{}
	}
	if err != nil {
		s.degrade(ctx, "read", err, nil)
		return []model.Line{}
	}
	lines, ok := decode(raw)
	if !ok {
		s.logger.Warn("discarding unreadable guest state", "key", s.key)
		return []model.Line{}
	}
	return lines
}

// write persists lines in the current envelope. Callers hold mu.
func (s *Store) write(ctx context.Context, lines []model.Line) {
	payload, err := json.Marshal(envelope{Version: schemaVersion, Lines: lines})
	if err != nil {
		s.logger.Error("encoding guest state", "key", s.key, "error", err)
		return
	}
	if err := s.backend.Set(ctx, s.key, payload); err != nil {
		s.degrade(ctx, "write", err, payload)
	}
}

// degrade swaps the backend for memory, seeding it with payload when given.
func (s *Store) degrade(ctx context.Context, op string, err error, payload []byte) {
	if s.err == nil {
		s.err = model.NewLocalStorageError(op, err)
		s.logger.Warn("guest storage unavailable, continuing in memory", "key", s.key, "op", op, "error", err)
	}
	if _, isMemory := s.backend.(*localstore.Memory); isMemory {
		return
	}
	mem := localstore.NewMemory()
	if payload != nil {
		mem.Set(ctx, s.key, payload)
	}
	s.backend = mem
}

// decode accepts the versioned envelope or a legacy bare array.
// Unknown versions and corrupt payloads report ok=false.
func decode(raw []byte) ([]model.Line, bool) {
	var lines []model.Line

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Version != schemaVersion {
			return nil, false
		}
		lines = env.Lines
	} else if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, false
	}

	out := make([]model.Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if l.LineID == "" {
			l.LineID = lineKey(l.ProductID, l.VariantID)
		}
		out = append(out, l)
	}
	return out, true
}

// lineKey identifies a guest line by product and optional variant.
func lineKey(productID, variantID model.ID) model.ID {
	if variantID == "" {
		return productID
	}
	return productID + ":" + variantID
}

// indexOf matches the stored line id first, then the display id
// (variant or product) that DisplayLine exposes for older lines.
func indexOf(lines []model.Line, id model.ID) int {
	for i, l := range lines {
		if l.LineID == id {
			return i
		}
	}
	for i, l := range lines {
		if l.VariantID != "" && l.VariantID == id {
			return i
		}
		if l.VariantID == "" && l.ProductID == id {
			return i
		}
	}
	return -1
}

func cloneLines(lines []model.Line) []model.Line {
	out := make([]model.Line, len(lines))
	copy(out, lines)
	return out
}
