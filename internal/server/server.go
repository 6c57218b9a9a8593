package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(port string, service *parking.InstrumentedService) *Server {
	handler := NewHandler(service)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/parking", func(r chi.Router) {
		r.Post("/entry", handler.Entry)
		r.Post("/exit", handler.Exit)
		r.Post("/pass", handler.RegisterPass)
		r.Post("/reset", handler.EmergencyReset)
		r.Get("/slots", handler.SlotMap)
		r.Get("/slots/free", handler.FreeSlots)
		r.Get("/vehicles/{vehicle}", handler.Search)
		r.Get("/parked", handler.Parked)
		r.Get("/waiting", handler.Waiting)
		r.Get("/revenue", handler.Revenue)
		r.Get("/history", handler.History)
	})

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
