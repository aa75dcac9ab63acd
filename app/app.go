// Package app is a small host framework: it loads config, builds a chi router,
// runs initializers after the app routes are registered and serves HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Context is handed to route builders and initializers.
type Context struct {
	Environment Environment
	Config      *Config
	Logger      *slog.Logger
}

// NewContext builds the logger described by cfg.
func NewContext(cfg *Config) (*Context, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger, err := NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Context{Environment: cfg.Environment, Config: cfg, Logger: logger}, nil
}

// Initializer extends an app once its routes exist.
type Initializer interface {
	Name() string
	// AfterRoutes may add routes. An error aborts boot.
	AfterRoutes(r chi.Router, actx *Context) error
	// BeforeRun runs when the server is about to listen.
	BeforeRun(ctx context.Context, actx *Context) error
}

// App is a booted application.
type App struct {
	ctx          *Context
	router       chi.Router
	initializers []Initializer
}

// Boot builds the router: middleware, default routes, routes, then every initializer in order.
func Boot(actx *Context, routes func(chi.Router, *Context), initializers ...Initializer) (*App, error) {
	if actx == nil {
		var err error
		if actx, err = NewContext(nil); err != nil {
			return nil, err
		}
	}
	if actx.Config == nil {
		actx.Config = DefaultConfig()
	}
	if actx.Logger == nil {
		actx.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestContext(actx.Logger))
	r.Use(Logging)
	if actx.Config.CORS != nil {
		r.Use(newCORSHandler(actx.Config.CORS))
	}

	r.Get("/_ping", health)
	r.Get("/_health", health)
	if routes != nil {
		routes(r, actx)
	}

	for _, initializer := range initializers {
		if err := initializer.AfterRoutes(r, actx); err != nil {
			return nil, fmt.Errorf("app: initializer %q: %w", initializer.Name(), err)
		}
		actx.Logger.Debug("initializer loaded", "name", initializer.Name())
	}

	return &App{ctx: actx, router: r, initializers: initializers}, nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// Handler returns the root handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Context returns the app context.
func (a *App) Context() *Context {
	return a.ctx
}

// Addr is the listen address from the server config.
func (a *App) Addr() string {
	return net.JoinHostPort(a.ctx.Config.Server.Host, strconv.Itoa(a.ctx.Config.Server.Port))
}

// Serve runs every BeforeRun hook and listens until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	for _, initializer := range a.initializers {
		if err := initializer.BeforeRun(ctx, a.ctx); err != nil {
			return fmt.Errorf("app: initializer %q: %w", initializer.Name(), err)
		}
	}

	srv := &http.Server{
		Addr:              a.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.ctx.Logger.Info("listening", "addr", srv.Addr, "environment", a.ctx.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: listen %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.ctx.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	a.ctx.Logger.Info("server stopped")
	return nil
}
