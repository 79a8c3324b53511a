// Command storefront is a terminal shopping client. The cart and shipping
// address live in Redis, or in a local SQLite file when Redis is off, between
// invocations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charro/storefront/internal/infrastructure/cache"
	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/infrastructure/shopapi"
	"github.com/charro/storefront/internal/storefront"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const keyToken = "token"

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "browse the catalog, fill a cart and check out",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "API base `URL`, overrides client.base_url",
				EnvVars: []string{"STOREFRONT_API"},
			},
			&cli.StringFlag{
				Name:    "session",
				Aliases: []string{"s"},
				Usage:   "cart session `ID`, overrides client.session_id",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "cart file `PATH` used without Redis, \":memory:\" for a throwaway cart",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log cart actions and HTTP calls",
			},
		},
		Commands: []*cli.Command{
			productsCommand(),
			searchCommand(),
			addCommand(),
			updateCommand(),
			removeCommand(),
			cartCommand(),
			addressCommand(),
			loginCommand(),
			checkoutCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is everything a command needs, built once per invocation
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	store   cache.KVStore
	api     *shopapi.Client
	session *storefront.Session
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if u := c.String("api"); u != "" {
		cfg.Client.BaseURL = u
	}
	if s := c.String("session"); s != "" {
		cfg.Client.SessionID = s
	}
	if p := c.String("store"); p != "" {
		cfg.Client.StorePath = p
	}

	log := logger.NewCLI(c.Bool("verbose"))
	c.Context = logger.WithSessionID(c.Context, cfg.Client.SessionID)
	ctx := c.Context

	factory := cache.NewKVStoreFactory(cfg.Redis, cache.WithLogger(log), cache.WithFileStore(cfg.Client.StorePath))
	store, err := factory.CreateStore(ctx, cfg.Client.SessionID)
	if err != nil {
		return nil, fmt.Errorf("open cart store: %w", err)
	}

	token := cfg.Client.Token
	if token == "" {
		if saved, ok, err := store.Get(ctx, keyToken); err == nil && ok {
			token = saved
		}
	}
	api := shopapi.New(cfg.Client, shopapi.WithToken(token), shopapi.WithLogger(log))

	session := storefront.NewSession(store, api, cfg.Checkout.TaxRate, storefront.WithLogger(log))
	if err := session.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load cart: %w", err)
	}

	return &env{cfg: cfg, log: log, store: store, api: api, session: session}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("Failed to close cart store", zap.Error(err))
	}
	_ = e.log.Sync()
}

// action wraps a command body with setup and teardown
func action(fn func(ctx context.Context, c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(c.Context, c, e)
	}
}
