package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"SeapMonitor/internal/config"
)

// Server hosts the JSON API.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer assembles the router around the handler.
func NewServer(cfg config.ServerConfig, handler *Handler, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/tenders", handler.listTenders)
		r.Post("/tenders", handler.createTender)
		r.Delete("/tenders/all", handler.deleteAllTenders)
		r.Get("/tenders/{id}", handler.getTender)
		r.Post("/scrape", handler.scrapeToday)
		r.Post("/scrape/range", handler.scrapeRange)
		r.Get("/stats", handler.stats)
	})

	return &Server{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving HTTP until Shutdown or a listener failure.
func (s *Server) Start() error {
	if s.logger != nil {
		s.logger.Info("http server listening", "addr", s.server.Addr)
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
