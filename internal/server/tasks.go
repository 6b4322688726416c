package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akyairhashvil/tasktrack/internal/board"
	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/models"
)

type whatsAppRequest struct {
	board.NewTask
	Message string `json:"message"`
}

type taskUpdateRequest struct {
	Title            *string              `json:"title"`
	Description      *string              `json:"description"`
	Priority         *models.TaskPriority `json:"priority"`
	ResponsibleID    *string              `json:"responsible_id"`
	EstimatedMinutes *int                 `json:"estimated_minutes"`
	DueDate          *time.Time           `json:"due_date"`
	Tags             *[]string            `json:"tags"`
}

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// handleListTasks accepts the board search syntax in q, plus status,
// priority, origin, tag, responsible and limit shortcuts.
func (s *Server) handleListTasks(c *gin.Context) {
	parts := []string{c.Query("q")}
	for _, key := range []string{"status", "priority", "origin", "tag", "responsible", "limit"} {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			parts = append(parts, key+":"+v)
		}
	}
	tasks, err := s.board.ListTasks(c.Request.Context(), strings.Join(parts, " "))
	if err != nil {
		s.respondError(c, "cargar las tareas", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req board.NewTask
	if !s.bindJSON(c, "crear la tarea", &req) {
		return
	}
	if req.CreatorID == "" {
		req.CreatorID = c.GetHeader(UserHeader)
	}
	task, err := s.board.CreateTask(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, "crear la tarea", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

func (s *Server) handleCreateFromWhatsApp(c *gin.Context) {
	var req whatsAppRequest
	if !s.bindJSON(c, "crear la tarea", &req) {
		return
	}
	if req.CreatorID == "" {
		req.CreatorID = c.GetHeader(UserHeader)
	}
	task, err := s.board.CreateFromWhatsAppMessage(c.Request.Context(), req.NewTask, req.Message)
	if err != nil {
		s.respondError(c, "crear la tarea", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

func (s *Server) handleCreateFromPoll(c *gin.Context) {
	var req board.Poll
	if !s.bindJSON(c, "crear las tareas", &req) {
		return
	}
	if req.CreatorID == "" {
		req.CreatorID = c.GetHeader(UserHeader)
	}
	tasks, err := s.board.CreateFromPoll(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, "crear las tareas", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"tasks": tasks})
}

func (s *Server) handleGetTask(c *gin.Context) {
	detail, err := s.board.Task(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "cargar la tarea", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": detail})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskUpdateRequest
	if !s.bindJSON(c, "actualizar la tarea", &req) {
		return
	}
	task, err := s.board.UpdateTask(c.Request.Context(), c.Param("id"), database.TaskUpdate{
		Title:            req.Title,
		Description:      req.Description,
		Priority:         req.Priority,
		ResponsibleID:    req.ResponsibleID,
		EstimatedMinutes: req.EstimatedMinutes,
		DueDate:          req.DueDate,
		Tags:             req.Tags,
	})
	if err != nil {
		s.respondError(c, "actualizar la tarea", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleChangeStatus(c *gin.Context) {
	var req statusRequest
	if !s.bindJSON(c, "cambiar el estado", &req) {
		return
	}
	task, err := s.board.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.respondError(c, "cambiar el estado", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.board.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, "eliminar la tarea", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
