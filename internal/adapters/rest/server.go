package rest

import (
	"context"
	"fmt"
	"net/http"
	core_port "property-service/internal/core/port"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// ServerConfig - параметры HTTP-сервера
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// UploadsDir раздается по /uploads/, пусто - маршрут не регистрируется
	UploadsDir string
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter собирает маршруты. Вынесен отдельно, чтобы тесты работали через httptest без сокета.
func NewRouter(cfg ServerConfig, handlers *PropertyHandler, auth *AuthMiddleware, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware(baseLogger), middleware.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
			ExposedHeaders:   []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/properties", func(r chi.Router) {
		// публичные
		r.Get("/", handlers.ListProperties)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireIdentity)
			r.Post("/", handlers.CreateProperty)
			r.Get("/my-properties", handlers.GetMyProperties)
			r.Put("/{propertyID}", handlers.UpdateProperty)
			r.Delete("/{propertyID}", handlers.DeleteProperty)
		})

		r.Get("/{propertyID}", handlers.GetPropertyDetails)
	})

	return r
}

func NewServer(cfg ServerConfig, handlers *PropertyHandler, auth *AuthMiddleware, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, handlers, auth, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start блокируется до остановки. http.ErrServerClosed после Stop не считается ошибкой.
func (s *Server) Start() error {
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
