package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/storefront/config"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/settings"
	"github.com/example/storefront/internal/infrastructure/receipt"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/logs"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/query"
)

func main() {
	configDir := flag.String("config", "", "directory containing config.yaml")
	flag.Usage = usage
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, *configDir, flag.Args(), os.Stdout)
	stop()
	os.Exit(code)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: storefront [-config dir] <command> [args]

customer:
  catalog [category]        list catalog products
  cart                      show the cart with totals
  add|inc|dec|remove <id>   change the cart
  clear                     empty the cart
  ship <regular|express>    choose shipping
  checkout [flags]          place an order from the cart
  receipt <orderId> <file>  write the order receipt QR code
  receipt-verify <payload>  check a scanned receipt against its order

admin:
  login [flags] | logout | session
  orders [flags] | order <id> | status <id> <status> | stats
  products [-search name] [category] | product-save [flags] | product-delete <id>
  settings | settings-save [flags]
  hash-password <password>
`)
}

// run wires the application and executes one command. It returns the
// process exit code.
func run(ctx context.Context, configDir string, args []string, out io.Writer) int {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	cfg, err := config.New(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	logger, err := logs.New(logs.Options{Level: cfg.Env.Log.Level, Pretty: cfg.Env.Log.Pretty})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 2
	}
	logger = logger.With("service", cfg.Env.ServiceName)

	kv, err := store.Open(store.Options{Driver: cfg.Storage.Driver, Dir: cfg.Storage.Dir, Sync: cfg.Storage.Sync})
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Storage.Driver, "dir", cfg.Storage.Dir, "error", err)
		return 2
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()
	logger.Debug("store opened", "driver", cfg.Storage.Driver, "dir", cfg.Storage.Dir)

	reg := metrics.NewRegistry()
	a := newApp(kv, cfg, logger, reg, out)
	if err := a.products.EnsureSeeded(ctx); err != nil {
		logger.Error("failed to seed products", "error", err)
		return 2
	}

	code := a.dispatch(ctx, args)

	if cfg.Metrics.Enabled && cfg.Metrics.Textfile != "" {
		if err := reg.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("failed to write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}
	return code
}

type app struct {
	commands *command.Handler
	queries  *query.Handler
	products *product.Service
	sessions *auth.SessionService
	receipts *receipt.Renderer
	logger   *slog.Logger
	out      io.Writer
}

func newApp(kv store.KV, cfg *config.Config, logger *slog.Logger, reg *metrics.Registry, out io.Writer) *app {
	cat := catalog.Default()
	cartSvc := cart.NewService(kv, logger, reg)
	orderSvc := order.NewService(kv, logger, reg)
	productSvc := product.NewService(kv, logger)
	settingsSvc := settings.NewService(kv, logger)

	return &app{
		commands: command.NewHandler(cat, cartSvc, orderSvc, productSvc, settingsSvc, kv, logger, reg),
		queries:  query.NewHandler(cat, cartSvc, orderSvc, productSvc, settingsSvc),
		products: productSvc,
		sessions: auth.NewSessionService(kv, auth.Credentials{
			Username:     cfg.Admin.Username,
			PasswordHash: cfg.Admin.PasswordHash,
		}, logger),
		receipts: receipt.NewRenderer(cfg.Receipt.Size, cfg.Receipt.ErrorCorrectionLevel),
		logger:   logger,
		out:      out,
	}
}
