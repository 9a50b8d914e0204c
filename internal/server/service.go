// Package server exposes the plant data layer over HTTP: identification,
// suggestions, history and garden collections, and a live event stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/plantae/plantae/internal/config"
	"github.com/plantae/plantae/internal/db/sqlite"
	"github.com/plantae/plantae/internal/server/sse"
	"github.com/plantae/plantae/internal/suggest"
	"github.com/plantae/plantae/pkg/models"
)

// Identifier is the identification client surface the handlers need.
type Identifier interface {
	IdentifyImage(ctx context.Context, imageData string) (*models.PlantRecord, error)
	DetailsByName(ctx context.Context, name string) (*models.PlantRecord, error)
}

// Suggester is the autocomplete surface the handlers need.
type Suggester interface {
	Suggest(ctx context.Context, query string) []models.Suggestion
}

// Service wires the stores and clients into an HTTP server.
type Service struct {
	version     string
	config      *config.Config
	store       *sqlite.Store
	history     *sqlite.HistoryStore
	garden      *sqlite.GardenStore
	identifier  Identifier
	suggester   Suggester
	debouncer   *suggest.Debouncer
	broadcaster *sse.Broadcaster
	router      *chi.Mux
	httpServer  *http.Server
	startTime   time.Time
	ready       atomic.Bool
}

// Deps carries the service's collaborators.
type Deps struct {
	Config     *config.Config
	Store      *sqlite.Store
	History    *sqlite.HistoryStore
	Garden     *sqlite.GardenStore
	Identifier Identifier
	Suggester  Suggester
}

// New creates the service and registers its routes.
func New(version string, deps Deps) *Service {
	svc := &Service{
		version:     version,
		config:      deps.Config,
		store:       deps.Store,
		history:     deps.History,
		garden:      deps.Garden,
		identifier:  deps.Identifier,
		suggester:   deps.Suggester,
		broadcaster: sse.NewBroadcaster(),
		router:      chi.NewRouter(),
		startTime:   time.Now(),
	}
	svc.debouncer = suggest.NewDebouncer(deps.Suggester, deps.Config.SuggestDelay)
	svc.setupRoutes()
	return svc
}

func (s *Service) setupRoutes() {
	s.router.Use(requestID)
	s.router.Use(requestLogger)

	s.router.Get("/", serveIndex)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/events", s.broadcaster.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/identify", s.handleIdentify)
		r.Get("/plants", s.handlePlantCatalog)
		r.Get("/plants/{name}", s.handlePlantByName)
		r.Get("/suggest", s.handleSuggest)
		r.Get("/suggest/live", s.handleSuggestLive)

		r.Get("/history", s.handleHistoryList)
		r.Delete("/history", s.handleHistoryClear)

		r.Get("/garden", s.handleGardenList)
		r.Post("/garden", s.handleGardenAdd)
		r.Delete("/garden/{id}", s.handleGardenRemove)
		r.Delete("/garden", s.handleGardenClear)
	})
}

// Router returns the HTTP handler, for tests.
func (s *Service) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.ready.Store(true)
	log.Info().Str("addr", addr).Str("version", s.version).Msg("Starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		s.ready.Store(false)
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown stops accepting requests and drains in-flight ones.
func (s *Service) Shutdown() error {
	s.ready.Store(false)
	s.debouncer.Stop()
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
