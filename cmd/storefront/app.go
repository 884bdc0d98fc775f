package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"storefront-client/internal/config"
	"storefront-client/internal/guest"
	"storefront-client/internal/localstore"
	"storefront-client/internal/reconcile"
	"storefront-client/internal/resource"
	"storefront-client/internal/session"
	"storefront-client/internal/transport"
)

// Version is stamped by the release build.
var Version = "dev"

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	store    localstore.Store
	session  *session.Session
	client   *transport.Client
	registry *prometheus.Registry

	auth            *resource.Auth
	cart            *resource.Lines
	wishlist        *resource.Lines
	guestCart       *guest.Store
	guestWishlist   *guest.Store
	finance         *resource.Finance
	customerService *resource.CustomerService
	shipment        *resource.Shipment
	seller          *resource.Seller

	stopMigration func()
	closers       []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	store, err := openStore(ctx, cfg.State)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}
	a.store = store
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.session = session.New(store, logger)
	if err := a.session.Restore(ctx); err != nil {
		logger.Warn("session restore failed", "error", err)
	}

	var rt http.RoundTripper
	if cfg.TLSFingerprint == config.FingerprintChrome {
		rt = transport.NewChromeTransport(cfg.Timeout)
	}

	client, err := transport.New(transport.Config{
		Origin:       cfg.Origin,
		BaseURL:      cfg.APIBaseURL,
		APIVersion:   cfg.APIVersion,
		Timeout:      cfg.Timeout,
		RoundTripper: rt,
		Credentials:  &serviceCredentials{session: a.session, fallback: cfg.ServiceToken},
		OnUnauthorized: func(loginPath string) {
			fmt.Fprintf(os.Stderr, "Session expired or not permitted. Sign in again with `storefront login` (%s).\n", loginPath)
		},
		LoginPath: cfg.LoginPath,
		Agent: &transport.Agent{
			App:     "storefront-cli",
			Version: Version,
			Role:    func() string { return string(a.session.ActiveRole()) },
		},
		Metrics: transport.NewMetrics(a.registry),
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	a.client = client

	a.auth = resource.NewAuth(client)
	a.cart = resource.NewCart(client)
	a.wishlist = resource.NewWishlist(client)
	a.finance = resource.NewFinance(client)
	a.customerService = resource.NewCustomerService(client)
	a.shipment = resource.NewShipment(client)
	a.seller = resource.NewSeller(client)

	a.guestCart = guest.New(store, guest.CartKey, logger)
	a.guestWishlist = guest.New(store, guest.WishlistKey, logger)

	// Subscribed before any view model so a login reload sees merged lines.
	a.stopMigration = reconcile.NewMigrator(logger,
		reconcile.CartTarget(a.cart, a.guestCart),
		reconcile.WishlistTarget(a.wishlist, a.guestWishlist),
	).Watch(a.session)

	return a, nil
}

// Close releases the state store.
func (a *app) Close() {
	if a.stopMigration != nil {
		a.stopMigration()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("closing state store", "error", err)
		}
	}
}

func openStore(ctx context.Context, sc config.StateConfig) (localstore.Store, error) {
	switch sc.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0o700); err != nil {
			return nil, err
		}
		return localstore.OpenSQLite(sc.Path)
	case config.BackendRedis:
		return localstore.NewRedis(ctx, localstore.RedisConfig{
			Addr:      sc.RedisAddr,
			Password:  sc.RedisPassword,
			DB:        sc.RedisDB,
			KeyPrefix: "storefront",
		})
	case config.BackendMemory:
		return localstore.NewMemory(), nil
	}
	return nil, errors.New("unknown state backend " + sc.Backend)
}

// serviceCredentials prefers the signed-in session token and falls back to
// the configured service token for unattended callers.
type serviceCredentials struct {
	session  *session.Session
	fallback string
}

func (c *serviceCredentials) Token() string {
	if t := c.session.Token(); t != "" {
		return t
	}
	return c.fallback
}

func (c *serviceCredentials) Clear() {
	c.session.Clear()
}
