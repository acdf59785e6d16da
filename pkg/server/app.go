package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	applogger "FinScope/pkg/logger"
)

// Component is a long running part of the application (HTTP server, consumer, scheduler).
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Closer is infrastructure that only needs releasing at shutdown (DB pools, producers).
type Closer interface {
	Close() error
}

// App encapsulates the application lifecycle.
type App struct {
	log             *applogger.Logger
	components      []Component
	closers         []namedCloser
	shutdownTimeout time.Duration
}

type namedCloser struct {
	name string
	c    Closer
}

// New creates a new App.
func New(log *applogger.Logger, shutdownTimeout time.Duration) *App {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{log: log, shutdownTimeout: shutdownTimeout}
}

// Add registers components; they start in order and stop in reverse order.
func (a *App) Add(cs ...Component) *App {
	for _, c := range cs {
		if c != nil {
			a.components = append(a.components, c)
		}
	}
	return a
}

// OnClose registers infrastructure to close after every component has stopped.
func (a *App) OnClose(name string, c Closer) *App {
	if c != nil {
		a.closers = append(a.closers, namedCloser{name: name, c: c})
	}
	return a
}

// Run starts all components and blocks until ctx is cancelled or a termination
// signal arrives, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, c := range a.components {
		if err := c.Start(ctx); err != nil {
			a.log.Error("component start failed", applogger.String("component", c.Name()), applogger.Error(err))
			a.stopComponents(a.components[:i])
			a.closeAll()
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		a.log.Info("component started", applogger.String("component", c.Name()))
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	a.stopComponents(a.components)
	a.closeAll()
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) stopComponents(cs []Component) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].Stop(shutdownCtx); err != nil {
			a.log.Warn("component stop error", applogger.String("component", cs[i].Name()), applogger.Error(err))
		}
	}
}

func (a *App) closeAll() {
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}
}
