// Package restserver serves the sounding archive and parcel trajectory
// computations over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aeharding/skewt/internal/database"
	"github.com/aeharding/skewt/internal/log"
	"github.com/aeharding/skewt/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	cfg      *config.Config
	store    database.Store
	Server   http.Server
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, store database.Store, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("restserver: a sounding store is required")
	}

	ctrl := &Controller{
		ctx:    ctx,
		wg:     wg,
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfg.HTTP.ListenAddr, cfg.HTTP.Port)
	ctrl.Server.Handler = router
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/soundings", instrument("create_sounding", c.handlers.CreateSounding)).Methods(http.MethodPost)
	router.HandleFunc("/soundings", instrument("list_soundings", c.handlers.ListSoundings)).Methods(http.MethodGet)
	router.HandleFunc("/soundings/{id}", instrument("get_sounding", c.handlers.GetSounding)).Methods(http.MethodGet)
	router.HandleFunc("/soundings/{id}/trajectory", instrument("stored_trajectory", c.handlers.StoredTrajectory)).Methods(http.MethodGet)
	router.HandleFunc("/trajectory", instrument("inline_trajectory", c.handlers.InlineTrajectory)).Methods(http.MethodPost)
	router.HandleFunc("/health", instrument("health", c.handlers.Health)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}
