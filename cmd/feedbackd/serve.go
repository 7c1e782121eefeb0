package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/feedback/account"
	"github.com/kbukum/feedback/api"
	"github.com/kbukum/feedback/auth/password"
	"github.com/kbukum/feedback/bootstrap"
	"github.com/kbukum/feedback/database"
	"github.com/kbukum/feedback/identity"
	"github.com/kbukum/feedback/observability"
	"github.com/kbukum/feedback/server"
	"github.com/kbukum/feedback/server/middleware"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the feedback API until SIGINT or SIGTERM",
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"), c.String("env"))
			if err != nil {
				return err
			}
			app, err := newApp(c.Context, cfg)
			if err != nil {
				return err
			}
			return app.Run(c.Context)
		},
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config.yml (default: search standard locations)",
			EnvVars: []string{"FEEDBACK_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "env",
			Usage:   "Path to a .env file",
			EnvVars: []string{"FEEDBACK_ENV_FILE"},
		},
	}
}

// newApp validates cfg and wires the service: the database component
// starts first, then the configure phase builds the account service,
// mounts the gate and routes, and starts the HTTP server.
func newApp(ctx context.Context, cfg *Config, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	codec, err := identity.NewCodec(cfg.Auth.JWT)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	app.OnStop(shutdownTelemetry)

	metrics, err := observability.NewAuthMetrics(observability.Meter())
	if err != nil {
		return nil, fmt.Errorf("auth metrics: %w", err)
	}

	db := database.NewComponent(cfg.Database, app.Logger).
		WithMigrations(account.Migrations, account.MigrationDir(cfg.Database.Driver)).
		WithAutoMigrate(&account.Account{})
	if err := app.RegisterComponent(db); err != nil {
		return nil, err
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		svc, err := account.NewService(
			account.NewGormRepository(db.DB().GormDB),
			password.NewHasher(a.Cfg.Auth.Password),
			codec,
			account.WithMetrics(metrics),
			account.WithLogger(a.Logger),
		)
		if err != nil {
			return fmt.Errorf("account service: %w", err)
		}

		srv := server.New(a.Cfg.Server, a.Logger)
		mount(srv, a, codec, metrics, svc)
		return a.StartComponent(ctx, server.NewComponent(srv))
	})

	app.OnReady(func(context.Context) error {
		app.Logger.Info("auth configured", map[string]any{"auth": cfg.Auth.Describe()})
		return nil
	})
	return app, nil
}

// mount installs the middleware stack, the auth gate, the probes and the
// account routes, in that order.
func mount(srv *server.Server, a *bootstrap.App[*Config], codec *identity.Codec, metrics *observability.AuthMetrics, svc *account.Service) {
	public := middleware.DefaultPublicRoutes()

	srv.ApplyMiddleware()
	srv.Engine().Use(middleware.Auth(middleware.AuthConfig{
		Validator: codec,
		Public:    public,
		Logger:    a.Logger,
		Metrics:   metrics,
	}))
	srv.RegisterProbes(a.Components.HealthAll)

	limiter := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: a.Cfg.Server.LoginRateLimit,
	})
	api.Register(srv.Engine(), api.NewHandler(svc), limiter)

	for _, r := range srv.Engine().Routes() {
		a.Summary.TrackRoute(r.Method, r.Path, public.Allows(r.Method, r.Path))
	}
	a.Logger.Debug("public routes", map[string]any{"routes": public.List()})
}
