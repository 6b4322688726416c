package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

type userRequest struct {
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.board.Users(c.Request.Context())
	if err != nil {
		s.respondError(c, "cargar los usuarios", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"users": users})
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req userRequest
	if !s.bindJSON(c, "crear el usuario", &req) {
		return
	}
	user, err := s.board.CreateUser(c.Request.Context(), req.FullName, req.Email, req.Role)
	if err != nil {
		s.respondError(c, "crear el usuario", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": user})
}

func (s *Server) handleDashboard(c *gin.Context) {
	userID, ok := s.actor(c, "cargar el panel")
	if !ok {
		return
	}
	stats, err := s.board.Dashboard(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, "cargar el panel", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"stats": stats})
}
