package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akyairhashvil/tasktrack/internal/timetrack"
)

type manualEntryRequest struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	Minutes   int       `json:"minutes"`
	Note      string    `json:"note"`
}

func (s *Server) handleStartTimer(c *gin.Context) {
	userID, ok := s.actor(c, "iniciar el temporizador")
	if !ok {
		return
	}
	entry, err := s.timers.StartTimer(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		s.respondError(c, "iniciar el temporizador", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"entry": entry})
}

// handleResumeTimer returns the caller's running timer on the task, or null.
func (s *Server) handleResumeTimer(c *gin.Context) {
	userID, ok := s.actor(c, "cargar el temporizador")
	if !ok {
		return
	}
	timer, err := s.timers.ResumeActiveTimer(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		s.respondError(c, "cargar el temporizador", err)
		return
	}
	if timer == nil {
		respondSuccess(c, http.StatusOK, gin.H{"timer": nil})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"timer": timer, "elapsed_seconds": int64(timer.Elapsed / time.Second)})
}

func (s *Server) handleActiveTimers(c *gin.Context) {
	userID, ok := s.actor(c, "cargar los temporizadores")
	if !ok {
		return
	}
	timers, err := s.timers.ActiveTimers(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, "cargar los temporizadores", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"timers": timers})
}

func (s *Server) handleStopTimer(c *gin.Context) {
	entry, err := s.timers.StopTimer(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "detener el temporizador", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"entry": entry})
}

func (s *Server) handleManualEntry(c *gin.Context) {
	var req manualEntryRequest
	if !s.bindJSON(c, "registrar el tiempo", &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = c.GetHeader(UserHeader)
	}
	entry, err := s.timers.AddManualEntry(c.Request.Context(), timetrack.ManualEntry{
		TaskID:  req.TaskID,
		UserID:  req.UserID,
		Start:   req.StartTime,
		Minutes: req.Minutes,
		Note:    req.Note,
	})
	if err != nil {
		s.respondError(c, "registrar el tiempo", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"entry": entry})
}

func (s *Server) handleDeleteTimeEntry(c *gin.Context) {
	if err := s.repo.DeleteTimeEntry(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, "eliminar el registro", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
