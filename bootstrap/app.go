// Package bootstrap runs a service through a uniform lifecycle: validate
// config, start components, run hooks, serve until a signal arrives, then
// shut down within a bounded timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(db)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return wireRoutes(a)
//	})
//	err = app.Run(ctx)
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/feedback/component"
	"github.com/kbukum/feedback/logger"
)

// DefaultGracefulTimeout bounds the shutdown sequence.
const DefaultGracefulTimeout = 15 * time.Second

// App is an application with a typed config C.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
// A config that fails validation never yields an App.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: DefaultGracefulTimeout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging, base.Name)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Components = component.NewRegistry(app.Logger)
	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// StartComponent registers c and starts it immediately. Use it from the
// configure phase for components that depend on already started ones; they
// are stopped before their dependencies.
func (a *App[C]) StartComponent(ctx context.Context, c component.Component) error {
	if err := a.Components.Register(c); err != nil {
		return err
	}
	return a.Components.StartAll(ctx)
}

// OnConfigure registers a callback for the configure phase, which runs
// once the infrastructure components are started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application and blocks until SIGINT, SIGTERM or ctx
// cancellation, then shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask runs a finite task with the same lifecycle as Run. The task's
// context is canceled on SIGINT or SIGTERM. Components are stopped when the
// task returns; the task's error takes precedence over shutdown errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup performs the sequence shared by Run and RunTask. If any phase
// after the components started fails, they are stopped again.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("starting application", map[string]any{
		logger.FieldService: a.Name,
		"version":           a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := a.ready(ctx); err != nil {
		if stopErr := a.Components.StopAll(context.WithoutCancel(ctx)); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Log(ctx, a.Components, a.Logger)
	return nil
}

func (a *App[C]) ready(ctx context.Context) error {
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", map[string]any{
			logger.FieldError: err.Error(),
		})
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}
	return nil
}

// WaitForSignal blocks until an interrupt or terminate signal arrives or
// ctx is canceled. It returns the signal, or nil on cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", map[string]any{"signal": sig.String()})
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use it when managing your own lifecycle.
func (a *App[C]) Shutdown(context.Context) error {
	return a.stop()
}

// stop runs the OnStop hooks and then stops all components, all within the
// graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("shutting down application", map[string]any{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", map[string]any{logger.FieldError: err.Error()})
		errs = append(errs, err)
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", map[string]any{logger.FieldError: err.Error()})
		errs = append(errs, err)
	}

	a.Logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
