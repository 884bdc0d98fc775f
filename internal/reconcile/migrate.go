package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront-client/internal/guest"
	"storefront-client/internal/model"
	"storefront-client/internal/resource"
	"storefront-client/internal/session"
)

// Target pairs a guest collection with the server collection it drains into.
type Target struct {
	Name   string
	Server resource.LineService
	Guest  *guest.Store
	Mode   Mode
}

// Migrator moves guest lines to the server after sign-in.
type Migrator struct {
	targets []Target
	logger  *slog.Logger
	timeout time.Duration
}

// NewMigrator builds a Migrator over targets, applied in order.
func NewMigrator(logger *slog.Logger, targets ...Target) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{targets: targets, logger: logger, timeout: 30 * time.Second}
}

// Migrate drains every target. Each guest line is removed as soon as the
// server call absorbing it succeeds, so a later retry replays only what
// failed. Failures are joined into the returned error.
func (m *Migrator) Migrate(ctx context.Context) error {
	var errs []error
	for _, t := range m.targets {
		if err := m.migrate(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Migrator) migrate(ctx context.Context, t Target) error {
	lines := t.Guest.Lines(ctx)
	if len(lines) == 0 {
		return nil
	}

	current, err := t.Server.FetchItems(ctx)
	if err != nil {
		return err
	}

	// guest line ids per (product, variant); duplicates fold into one call
	guestIDs := make(map[string][]model.ID, len(lines))
	for _, l := range lines {
		key := itemKey(l.ProductID, l.VariantID)
		guestIDs[key] = append(guestIDs[key], l.DisplayID())
	}
	drop := func(productID, variantID model.ID) {
		for _, id := range guestIDs[itemKey(productID, variantID)] {
			t.Guest.Remove(ctx, id)
		}
	}

	diff := MergeLines(current, lines, t.Mode)
	for _, a := range diff.ToAdd {
		if err := t.Server.AddItem(ctx, a.ProductID, a.VariantID, a.Quantity); err != nil {
			return err
		}
		drop(a.ProductID, a.VariantID)
	}
	for _, u := range diff.ToUpdate {
		if err := t.Server.EditQuantity(ctx, u.BackendID, u.NewQuantity); err != nil {
			return err
		}
		drop(u.ProductID, u.VariantID)
	}

	// Union pairs already on the server and skipped lines need no call.
	t.Guest.Clear(ctx)
	m.logger.Info("migrated guest lines",
		"target", t.Name,
		"added", len(diff.ToAdd),
		"updated", len(diff.ToUpdate),
	)
	return nil
}

// Watch migrates on every Anonymous -> Authenticated transition. Subscribe
// before building the cart and wishlist view models so their reload sees the
// merged server state.
func (m *Migrator) Watch(sess *session.Session) func() {
	return sess.Subscribe(func(ev session.Event) {
		if ev.Kind != session.LoggedIn || ev.Previous.Authenticated() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if err := m.Migrate(ctx); err != nil {
			m.logger.Warn("guest migration incomplete", "user_id", ev.Current.UserID, "error", err)
		}
	})
}

// CartTarget and WishlistTarget are the two standard targets.
func CartTarget(server resource.CartService, store *guest.Store) Target {
	return Target{Name: "cart", Server: server, Guest: store, Mode: Sum}
}

func WishlistTarget(server resource.WishlistService, store *guest.Store) Target {
	return Target{Name: "wishlist", Server: server, Guest: store, Mode: Union}
}
