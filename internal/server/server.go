// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrilog/internal/account"
	"nutrilog/internal/advice"
	"nutrilog/internal/config"
	"nutrilog/internal/ledger"
	"nutrilog/internal/logger"
	"nutrilog/internal/nutrition"
	"nutrilog/internal/report"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config   config.Config
	Log      *logger.Logger
	Store    Pinger
	Accounts *account.Service
	Lookup   nutrition.Looker
	Ledger   *ledger.Ledger
	Reports  *report.Engine
	Advice   *advice.Generator
	Version  string
}

type NutritionServer struct {
	httpServer *http.Server
	engine     *gin.Engine
	deps       Deps
	log        *logger.Logger
}

func NewNutritionServer(deps Deps) *NutritionServer {
	s := &NutritionServer{
		deps: deps,
		log:  deps.Log.With("component", "http"),
	}
	s.engine = s.newRouter()
	s.httpServer = &http.Server{
		Addr:    deps.Config.HTTP.Addr(),
		Handler: s.engine,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *NutritionServer) Handler() http.Handler {
	return s.engine
}

// Start serves until Stop is called.
func (s *NutritionServer) Start() error {
	s.log.Info("Starting nutrition server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *NutritionServer) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
