package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/feedback/account"
	"github.com/kbukum/feedback/database"
	"github.com/kbukum/feedback/database/migration"
	"github.com/kbukum/feedback/logger"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the users table schema",
		Flags: configFlags(),
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withSchema(func(c *cli.Context, s schema) error {
					if err := migration.Up(s.db.GormDB, account.Migrations, s.dir, s.driver); err != nil {
						return err
					}
					return printVersion(c, s)
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back migrations (all of them unless --steps is set)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Usage: "Number of migrations to roll back"},
				},
				Action: withSchema(func(c *cli.Context, s schema) error {
					var err error
					if n := c.Int("steps"); n > 0 {
						err = migration.Steps(s.db.GormDB, account.Migrations, s.dir, -n, s.driver)
					} else {
						err = migration.Down(s.db.GormDB, account.Migrations, s.dir, s.driver)
					}
					if err != nil {
						return err
					}
					return printVersion(c, s)
				}),
			},
			{
				Name:   "version",
				Usage:  "Print the applied schema version",
				Action: withSchema(printVersion),
			},
		},
	}
}

type schema struct {
	db     *database.DB
	dir    string
	driver migration.DriverFunc
}

// withSchema opens the configured database for the duration of fn.
func withSchema(fn func(*cli.Context, schema) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("config"), c.String("env"))
		if err != nil {
			return err
		}
		cfg.Database.ApplyDefaults()
		if err := cfg.Database.Validate(); err != nil {
			return err
		}

		ctx := c.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := database.Open(ctx, cfg.Database, logger.Nop())
		if err != nil {
			return err
		}
		defer db.Close()

		return fn(c, schema{
			db:     db,
			dir:    account.MigrationDir(cfg.Database.Driver),
			driver: migration.DriverFor(cfg.Database.Driver),
		})
	}
}

func printVersion(c *cli.Context, s schema) error {
	v, dirty, err := migration.Version(s.db.GormDB, account.Migrations, s.dir, s.driver)
	if err != nil {
		return err
	}
	if dirty {
		_, err = fmt.Fprintf(c.App.Writer, "%d (dirty)\n", v)
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, v)
	return err
}
