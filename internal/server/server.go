// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"health-ai/internal/assistant"
	"health-ai/internal/db"
	"health-ai/pkg/logger"
)

type Server struct {
	server *http.Server
	logger *logger.Logger
}

func NewServer(port string, handler http.Handler, logger *logger.Logger) *Server {
	// WriteTimeout also bounds the model call.
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: logger,
	}
}

// NewRouter wires the public endpoints onto a gin engine.
func NewRouter(h *Handlers, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(logger), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:   []string{RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", h.Health)
	router.GET("/user", h.GetUser)
	router.GET("/diet", h.GetDiet)
	router.GET("/meals", h.GetMeals)
	router.POST("/ai", h.Chat)
	router.POST("/health_ai", h.Chat)

	return router
}

// New builds the full HTTP stack for a store and dispatcher.
func New(port string, store db.Store, profiles *assistant.Profiles, dispatcher *assistant.Dispatcher, logger *logger.Logger) *Server {
	h := NewHandlers(store, profiles, dispatcher, logger)
	return NewServer(port, NewRouter(h, logger), logger)
}

func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
