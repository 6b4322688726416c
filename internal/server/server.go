// Package server exposes the board, timers and reports over a JSON HTTP API.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akyairhashvil/tasktrack/internal/board"
	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/timetrack"
)

// UserHeader names the acting user on every request.
const UserHeader = "X-User-ID"

// Deps are the collaborators the handlers call. Board and Timers are built
// from Repo when nil.
type Deps struct {
	Repo     database.Repository
	Board    *board.Service
	Timers   *timetrack.Engine
	Location *time.Location
	Logger   *slog.Logger
}

// Server provides HTTP handlers for the task tracker.
type Server struct {
	engine *gin.Engine
	repo   database.Repository
	board  *board.Service
	timers *timetrack.Engine
	loc    *time.Location
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Board == nil {
		deps.Board = board.NewService(deps.Repo, board.WithLocation(deps.Location), board.WithLogger(deps.Logger))
	}
	if deps.Timers == nil {
		deps.Timers = timetrack.NewEngine(deps.Repo, timetrack.WithLogger(deps.Logger))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine: router,
		repo:   deps.Repo,
		board:  deps.Board,
		timers: deps.Timers,
		loc:    deps.Location,
		logger: deps.Logger,
	}
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.POST("/whatsapp", s.handleCreateFromWhatsApp)
			tasks.POST("/poll", s.handleCreateFromPoll)
			tasks.GET("/:id", s.handleGetTask)
			tasks.PUT("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
			tasks.PUT("/:id/status", s.handleChangeStatus)

			tasks.POST("/:id/timer", s.handleStartTimer)
			tasks.GET("/:id/timer", s.handleResumeTimer)

			tasks.GET("/:id/checklist", s.handleListChecklist)
			tasks.POST("/:id/checklist", s.handleAddChecklistItem)
			tasks.GET("/:id/comments", s.handleListComments)
			tasks.POST("/:id/comments", s.handleAddComment)
			tasks.GET("/:id/comments/stream", s.handleCommentStream)
		}

		api.PATCH("/checklist/:id/toggle", s.handleToggleChecklistItem)
		api.DELETE("/checklist/:id", s.handleDeleteChecklistItem)
		api.DELETE("/comments/:id", s.handleDeleteComment)

		api.GET("/timers", s.handleActiveTimers)
		api.POST("/time-entries", s.handleManualEntry)
		api.POST("/time-entries/:id/stop", s.handleStopTimer)
		api.DELETE("/time-entries/:id", s.handleDeleteTimeEntry)

		api.GET("/users", s.handleListUsers)
		api.POST("/users", s.handleCreateUser)
		api.GET("/dashboard", s.handleDashboard)

		api.GET("/reports", s.handleReport)
		api.GET("/reports.csv", s.handleReportCSV)
		api.GET("/reports.pdf", s.handleReportPDF)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// actor returns the acting user's ID or responds 400.
func (s *Server) actor(c *gin.Context, action string) (string, bool) {
	id := strings.TrimSpace(c.GetHeader(UserHeader))
	if id == "" {
		s.respondError(c, action, models.Invalid(UserHeader, "header is required"))
		return "", false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrAlreadyStopped), errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload. An error without
// text is reported as "Error al <action>".
func (s *Server) respondError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if strings.TrimSpace(msg) == "" {
		msg = config.ErrorPrefix + action
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("action", action), slog.String("error", msg))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", msg))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) bindJSON(c *gin.Context, action string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, action, models.Invalid("body", "%v", err))
		return false
	}
	return true
}

// respondSuccess writes payload as the JSON body, or only the status when
// payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
