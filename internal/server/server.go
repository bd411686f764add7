// Package server exposes the waybill services over a REST API.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/waybill/internal/notify"
	"github.com/zulandar/waybill/internal/store"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Store store.Store
	Port  int
	Hub   *notify.Hub
	Out   io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("server: store is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8484
	}

	router := NewRouter(opts.Store, opts.Hub)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Waybill API running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter builds the Gin engine with every API route registered. A nil
// hub disables notifications.
func NewRouter(st store.Store, hub *notify.Hub) *gin.Engine {
	if hub == nil {
		hub = notify.NewHub()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")

	registerSessionRoutes(api, st, hub)
	registerRefDataRoutes(api, st)
	registerOrderRoutes(api, st)
	registerTrainRoutes(api, st, hub)

	return router
}
