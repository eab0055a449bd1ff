package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"wkchat/internal/admin"
	"wkchat/internal/scheduler"
)

// customRecovery is a middleware that recovers from panics and handles http.ErrAbortHandler gracefully.
func customRecovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					log.Warn("Client connection aborted", "path", c.Request.URL.Path)
					c.Abort()
					return
				}

				log.Error("Panic recovered",
					"error", recovered,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

func newRouter(a *app) *gin.Engine {
	router := gin.New()
	router.Use(customRecovery(a.log))
	if a.cfg.Debug {
		router.Use(gin.Logger())
	}

	admin.SetupRoutes(router, admin.Deps{
		Keys:     a.keys,
		Registry: a.registry,
		Checker:  a.checker,
		Chats:    a.chats,
		Logger:   a.log,
	}, a.cfg.Admin.Password)
	return router
}

// runServer serves the API until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, a *app) error {
	sched := scheduler.NewScheduler(a.checker, a.cfg.Scheduler.KeyCheckSchedule, a.log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Port),
		Handler: newRouter(a),
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", "port", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("Shutting down server...")

	// The server has 5 seconds to finish the requests it is currently handling.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.checker.Wait()

	a.log.Info("Server exiting")
	return nil
}
