package viewmodel

import (
	"context"
	"log/slog"
	"time"

	"storefront-client/internal/guest"
	"storefront-client/internal/model"
	"storefront-client/internal/resource"
	"storefront-client/internal/session"
)

// SessionSource is the slice of session.Session the line models need.
type SessionSource interface {
	Authenticated() bool
	Subscribe(fn func(session.Event)) func()
}

// Lines is the cart or wishlist view model. It reads from the server when
// the session is authenticated and from the guest store otherwise, and
// always yields []model.DisplayLine.
type Lines struct {
	*Loader[[]model.DisplayLine]

	sess        SessionSource
	server      resource.LineService
	guest       *guest.Store
	logger      *slog.Logger
	unsubscribe func()
}

// Cart builds the cart view model. It reloads on login and logout.
func Cart(sess SessionSource, server resource.CartService, store *guest.Store, logger *slog.Logger) *Lines {
	return newLines(sess, server, store, logger)
}

// Wishlist builds the wishlist view model.
func Wishlist(sess SessionSource, server resource.WishlistService, store *guest.Store, logger *slog.Logger) *Lines {
	return newLines(sess, server, store, logger)
}

func newLines(sess SessionSource, server resource.LineService, store *guest.Store, logger *slog.Logger) *Lines {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Lines{sess: sess, server: server, guest: store, logger: logger}
	m.Loader = NewLoader([]model.DisplayLine{}, m.fetchLines)
	m.unsubscribe = sess.Subscribe(m.onSession)
	return m
}

func (m *Lines) fetchLines(ctx context.Context) ([]model.DisplayLine, error) {
	if !m.sess.Authenticated() {
		return guest.MapForDisplay(m.guest.Lines(ctx)), nil
	}
	lines, err := m.server.FetchItems(ctx)
	if err != nil {
		return nil, err
	}
	return model.DisplayLines(lines), nil
}

func (m *Lines) onSession(ev session.Event) {
	if ev.Kind != session.LoggedIn && ev.Kind != session.LoggedOut {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.Load(ctx); err != nil {
		m.logger.Warn("reloading lines after session change", "event", ev.Kind, "error", err)
	}
}

// UpdateQuantity sets a line's quantity on the active source, then reloads.
// Guest quantities of zero or less remove the line.
func (m *Lines) UpdateQuantity(ctx context.Context, id model.ID, qty int) error {
	if m.sess.Authenticated() {
		if err := m.server.EditQuantity(ctx, id, qty); err != nil {
			m.recordError(err)
			return err
		}
	} else {
		m.guest.Update(ctx, id, qty)
	}
	return m.Load(ctx)
}

// Remove deletes a line on the active source, then reloads.
func (m *Lines) Remove(ctx context.Context, id model.ID) error {
	if m.sess.Authenticated() {
		if err := m.server.RemoveItem(ctx, id); err != nil {
			m.recordError(err)
			return err
		}
	} else {
		m.guest.Remove(ctx, id)
	}
	return m.Load(ctx)
}

// Add puts qty of a product on the active source, then reloads.
func (m *Lines) Add(ctx context.Context, product model.ProductRef, variant *model.VariantRef, qty int) error {
	if m.sess.Authenticated() {
		var variantID model.ID
		if variant != nil {
			variantID = variant.ID
		}
		if err := m.server.AddItem(ctx, product.ID, variantID, qty); err != nil {
			m.recordError(err)
			return err
		}
	} else {
		m.guest.Add(ctx, product, variant, qty)
	}
	return m.Load(ctx)
}

// Total sums the display totals of the current data.
func (m *Lines) Total() string {
	return model.FormatMoney(model.SumTotals(m.State().Data))
}

// Close stops session tracking and disposes the loader.
func (m *Lines) Close() {
	m.unsubscribe()
	m.Loader.Close()
}

// recordError surfaces a failed mutation in the state without clearing data.
func (m *Lines) recordError(err error) {
	m.Loader.mu.Lock()
	if m.Loader.closed {
		m.Loader.mu.Unlock()
		return
	}
	m.Loader.state.Error = FormatError(err)
	snap := m.Loader.state
	m.Loader.mu.Unlock()
	m.Loader.publish(snap)
}
