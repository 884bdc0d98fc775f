// Storefront - command-line client for the storefront backend: shopper cart
// and wishlist, employee portals, seller tools and an MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront-client/internal/config"
	"storefront-client/internal/decision"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, decision.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "cancelled")
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

// cli carries state shared by every subcommand.
type cli struct {
	app       *app
	assumeYes bool
	output    string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client",
		Long:          "storefront talks to the storefront backend as a shopper, employee, manager or seller.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := initLogger(cfg)
			slog.SetDefault(logger)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.assumeYes, "yes", "y", false, "confirm permanent decisions without prompting")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.roleCmd(),
		c.linesCmd("cart", "Shopping cart"),
		c.linesCmd("wishlist", "Wishlist"),
		c.financeCmd(),
		c.refundsCmd(),
		c.grievancesCmd(),
		c.shipmentsCmd(),
		c.sellerCmd(),
		c.serveMCPCmd(),
	)
	return root
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON, development uses text. Logs go to stderr so command
// output stays pipeable.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
