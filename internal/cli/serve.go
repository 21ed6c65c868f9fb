package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hatirlat/internal/auth"
	"hatirlat/internal/handlers"
	"hatirlat/internal/logger"
	"hatirlat/internal/services"

	"github.com/gin-gonic/gin"
)

// ServeCmd runs the HTTP API and the dispatcher
type ServeCmd struct {
	Addr            string        `help:"Listen address, overrides PORT."`
	NoDispatch      bool          `help:"Do not start the reminder dispatcher."`
	ShutdownTimeout time.Duration `help:"Graceful shutdown timeout." default:"10s"`
}

func (s *ServeCmd) Run(app *Context) error {
	cfg := app.Config
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := app.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if !s.NoDispatch {
		dispatcher := services.NewDispatcher(st, services.NewNotifiers(cfg), app.Clock, cfg.Timezone, cfg.DispatchTimeout)
		scheduler := services.NewScheduler(cfg.Timezone)
		if _, err := scheduler.Schedule(cfg.DispatchSchedule, dispatcher.Tick); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("Dispatcher started", "schedule", cfg.DispatchSchedule)
	}

	gin.SetMode(cfg.GinMode)
	tokens := auth.NewTokenIssuer(cfg.JWT, app.Clock)
	limiter := auth.NewFreeLimiter(cfg.FreeLimit, premiumChecker(st), app.Clock)
	h := handlers.New(handlers.Options{
		Store:     st,
		Tokens:    tokens,
		Clock:     app.Clock,
		Location:  cfg.Timezone,
		PublicURL: cfg.PublicURL,
	})
	router := handlers.NewRouter(h, limiter, handlers.RouterConfig{CORSOrigins: cfg.CORSOrigins})

	addr := cfg.Addr()
	if s.Addr != "" {
		addr = s.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", addr, "dummy", cfg.DummyMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
