package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vinke29/taskdeck/internal/model"
)

var validCollections = map[string]bool{
	"active":    true,
	"completed": true,
}

// handleListTasks fetches all of a user's tasks in one collection.
func (s *Server) handleListTasks(c *gin.Context) {
	userID, collection, ok := parseScope(c)
	if !ok {
		return
	}

	docs, err := s.store.ListTasks(c.Request.Context(), userID, collection)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": docs})
}

// handleCreateTask stores a new task document and returns its remote id.
func (s *Server) handleCreateTask(c *gin.Context) {
	userID, collection, ok := parseScope(c)
	if !ok {
		return
	}

	var task model.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	remoteID := uuid.New().String()
	if err := s.store.CreateTask(c.Request.Context(), userID, collection, remoteID, task); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"remote_id": remoteID})
}

// handleUpdateTask overwrites an existing task document.
func (s *Server) handleUpdateTask(c *gin.Context) {
	userID := c.Param("user")
	remoteID := c.Param("remoteId")

	var task model.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	err := s.store.UpdateTask(c.Request.Context(), userID, remoteID, task)
	if errors.Is(err, ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// handleDeleteTask removes a task document.
func (s *Server) handleDeleteTask(c *gin.Context) {
	userID := c.Param("user")
	remoteID := c.Param("remoteId")

	err := s.store.DeleteTask(c.Request.Context(), userID, remoteID)
	if errors.Is(err, ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type moveRequest struct {
	To   string     `json:"to"`
	Task model.Task `json:"task"`
}

// handleMoveTask transfers a task document to the other collection,
// carrying the task body so a completion date set by the client lands
// together with the move.
func (s *Server) handleMoveTask(c *gin.Context) {
	userID := c.Param("user")
	remoteID := c.Param("remoteId")

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !validCollections[req.To] {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("unknown collection %q", req.To))
		return
	}

	err := s.store.MoveTask(c.Request.Context(), userID, remoteID, req.To, req.Task)
	if errors.Is(err, ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "moved"})
}

// parseScope validates the user and collection path parameters.
func parseScope(c *gin.Context) (string, string, bool) {
	userID := c.Param("user")
	collection := c.Param("collection")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})
		return "", "", false
	}
	if !validCollections[collection] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection"})
		return "", "", false
	}
	return userID, collection, true
}
