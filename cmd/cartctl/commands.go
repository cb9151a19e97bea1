package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/nikolayk812/cart-demo/internal/catalogserver"
	"github.com/nikolayk812/cart-demo/internal/config"
	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/nikolayk812/cart-demo/internal/logger"
	"github.com/nikolayk812/cart-demo/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{out: out}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Manage a storefront shopping cart",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newCartCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newUpdateCmd(opts),
		newServeAPICmd(opts),
	)

	return root
}

func newCartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Print the cart with subtotals and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), func(a *app) error {
				return printCart(opts.out, a)
			})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			return opts.withApp(cmd.Context(), func(a *app) error {
				return a.finish(opts.out, a.store.AddProduct(cmd.Context(), productID))
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			return opts.withApp(cmd.Context(), func(a *app) error {
				return a.finish(opts.out, a.store.RemoveProduct(cmd.Context(), productID))
			})
		},
	}
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <amount>",
		Short: "Set the amount of a product already in the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("amount[%s] is not an integer", args[1])
			}

			return opts.withApp(cmd.Context(), func(a *app) error {
				err := a.store.UpdateProductAmount(cmd.Context(), service.UpdateProductAmount{
					ProductID: productID,
					Amount:    amount,
				})
				return a.finish(opts.out, err)
			})
		},
	}
}

func newServeAPICmd(opts *rootOptions) *cobra.Command {
	var (
		addr        string
		fixturePath string
	)

	cmd := &cobra.Command{
		Use:   "serve-api",
		Short: "Serve the product and stock API from a fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, err := opts.load()
			if err != nil {
				return err
			}

			fixture, err := catalogserver.LoadFixture(fixturePath)
			if err != nil {
				return fmt.Errorf("catalogserver.LoadFixture: %w", err)
			}

			return serveAPI(cmd.Context(), addr, catalogserver.New(fixture, logger.WithService(log, "catalog")), log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3333", "listen address")
	cmd.Flags().StringVar(&fixturePath, "fixture", "fixtures/catalog.json", "fixture file (.json, .yaml)")

	return cmd
}

func serveAPI(ctx context.Context, addr string, handler http.Handler, log logrus.FieldLogger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("catalog api starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}

func (o *rootOptions) load() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config.Load: %w", err)
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	return cfg, log, nil
}

func (o *rootOptions) withApp(ctx context.Context, fn func(a *app) error) (err error) {
	cfg, log, err := o.load()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	return fn(a)
}

// finish prints the notifications of a mutation and then the resulting cart.
// Rejections are reported through notifications, so they do not fail the command.
func (a *app) finish(out io.Writer, opErr error) error {
	for _, n := range a.recorder.Drain() {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	}

	if opErr != nil {
		a.log.WithError(opErr).Debug("operation rejected")
	}

	return printCart(out, a)
}

func printCart(out io.Writer, a *app) error {
	cart := a.store.Cart()
	unit := a.cfg.CurrencyUnit()
	tag := a.cfg.LanguageTag()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tAMOUNT\tSUBTOTAL")

	for _, p := range cart.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			p.ID,
			p.Title,
			domain.FormatPrice(domain.NewMoney(p.Price, unit), tag),
			p.Amount,
			domain.FormatPrice(domain.NewMoney(p.Subtotal(), unit), tag),
		)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("w.Flush: %w", err)
	}

	fmt.Fprintf(out, "items: %d\ntotal: %s\n", cart.Size(), domain.FormatPrice(cart.Total(unit), tag))
	return nil
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("product-id[%s] is not a positive integer", raw)
	}
	return id, nil
}
