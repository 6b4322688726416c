package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akyairhashvil/tasktrack/internal/database"
)

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListChecklist(c *gin.Context) {
	items, err := s.repo.ListChecklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "cargar la lista", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleAddChecklistItem(c *gin.Context) {
	var req textRequest
	if !s.bindJSON(c, "añadir el elemento", &req) {
		return
	}
	item, err := s.board.AddChecklistItem(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		s.respondError(c, "añadir el elemento", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"item": item})
}

func (s *Server) handleToggleChecklistItem(c *gin.Context) {
	item, err := s.board.ToggleChecklistItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "actualizar el elemento", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

func (s *Server) handleDeleteChecklistItem(c *gin.Context) {
	if err := s.board.DeleteChecklistItem(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, "eliminar el elemento", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleListComments(c *gin.Context) {
	comments, err := s.board.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "cargar los comentarios", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"comments": comments})
}

func (s *Server) handleAddComment(c *gin.Context) {
	userID, ok := s.actor(c, "añadir el comentario")
	if !ok {
		return
	}
	var req textRequest
	if !s.bindJSON(c, "añadir el comentario", &req) {
		return
	}
	comment, err := s.board.AddComment(c.Request.Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		s.respondError(c, "añadir el comentario", err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"comment": comment})
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	userID, ok := s.actor(c, "eliminar el comentario")
	if !ok {
		return
	}
	if err := s.board.DeleteComment(c.Request.Context(), c.Param("id"), userID); err != nil {
		s.respondError(c, "eliminar el comentario", err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleCommentStream pushes comment changes on one task as server-sent
// events until the client goes away.
func (s *Server) handleCommentStream(c *gin.Context) {
	taskID := c.Param("id")
	if _, err := s.repo.GetTask(c.Request.Context(), taskID); err != nil {
		s.respondError(c, "abrir el canal de comentarios", err)
		return
	}
	events, cancel := s.repo.Feed().Subscribe(database.TableComments, database.Filter{Column: "task_id", Value: taskID})
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"task_id": taskID})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("comment", ev)
			return true
		}
	})
}
