// Package server implements the reference remote store: a small REST API
// holding per-user task collections, the backend the sync scheduler
// flushes to.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server provides HTTP handlers for the remote task store.
type Server struct {
	engine *gin.Engine
	store  *Store
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		store:  store,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		users := api.Group("/users/:user")
		{
			users.GET("/collections/:collection/tasks", s.handleListTasks)
			users.POST("/collections/:collection/tasks", s.handleCreateTask)
			users.PUT("/tasks/:remoteId", s.handleUpdateTask)
			users.DELETE("/tasks/:remoteId", s.handleDeleteTask)
			users.POST("/tasks/:remoteId/move", s.handleMoveTask)
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
