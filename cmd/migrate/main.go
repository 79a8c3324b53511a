package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/infrastructure/migration"
	"github.com/charro/storefront/migrations"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "manage the storefront database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "read migrations from `DIR` instead of the embedded set",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: withMigrator((*migration.Migrator).Up),
			},
			{
				Name:   "down",
				Usage:  "roll back all migrations",
				Action: withMigrator((*migration.Migrator).Down),
			},
			{
				Name:      "step",
				Usage:     "apply n migrations, negative n rolls back",
				ArgsUsage: "<n>",
				Action: func(c *cli.Context) error {
					n, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return cli.Exit("step count required: migrate step <n>", 1)
					}
					return withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })(c)
				},
			},
			{
				Name:      "goto",
				Usage:     "migrate to a specific version",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					v, err := strconv.ParseUint(c.Args().First(), 10, 32)
					if err != nil {
						return cli.Exit("version required: migrate goto <version>", 1)
					}
					return withMigrator(func(m *migration.Migrator) error { return m.GoTo(uint(v)) })(c)
				},
			},
			{
				Name:      "force",
				Usage:     "set the version without running migrations",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					v, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return cli.Exit("version required: migrate force <version>", 1)
					}
					return withMigrator(func(m *migration.Migrator) error { return m.Force(v) })(c)
				},
			},
			{
				Name:  "version",
				Usage: "print the applied version",
				Action: withMigrator(func(m *migration.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Printf("version=%d dirty=%t\n", version, dirty)
					return nil
				}),
			},
			{
				Name:      "create",
				Usage:     "create a new migration pair in --dir (default ./migrations)",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("migration name required: migrate create <name>", 1)
					}
					dir := c.String("dir")
					if dir == "" {
						dir = "migrations"
					}
					f, err := migration.Create(dir, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(f.UpPath)
					fmt.Println(f.DownPath)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withMigrator opens the configured database and runs fn against a Migrator
func withMigrator(fn func(*migration.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		log, err := logger.New(&logger.Config{
			Level:      c.String("log-level"),
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		var m *migration.Migrator
		if dir := c.String("dir"); dir != "" {
			m, err = migration.NewFromDir(db, dir, log)
		} else {
			m, err = migration.New(db, migrations.FS, log)
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				log.Warn("Failed to close migrator", zap.Error(err))
			}
		}()

		return fn(m)
	}
}
