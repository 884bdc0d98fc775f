package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"storefront-client/internal/handler"
	"storefront-client/internal/middleware"
)

func (c *cli) serveMCPCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the storefront views over MCP and JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if port == "" {
				port = a.cfg.Port
			}

			h := handler.New(handler.Deps{
				Session:         a.session,
				Cart:            a.cart,
				Wishlist:        a.wishlist,
				GuestCart:       a.guestCart,
				GuestWishlist:   a.guestWishlist,
				Finance:         a.finance,
				CustomerService: a.customerService,
				Shipment:        a.shipment,
				Gatherer:        a.registry,
			}, a.logger)

			mux := http.NewServeMux()
			h.RegisterRoutes(mux)

			// Recovery must be outermost to catch panics from logging middleware
			httpHandler := middleware.Chain(
				middleware.Recovery(a.logger),
				middleware.RequestID,
				middleware.Logging(a.logger),
				middleware.Metrics(a.registry),
			)(mux)

			server := &http.Server{
				Addr:         ":" + port,
				Handler:      httpHandler,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}
			return serve(cmd.Context(), server, a.logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default from STOREFRONT_PORT)")
	return cmd
}

// serve runs server until ctx is cancelled, then drains it.
func serve(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
