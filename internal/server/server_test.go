package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/timetrack"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

type fixture struct {
	srv  *Server
	db   *database.Database
	user models.Profile
	now  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "api.db"), database.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	user, err := db.CreateProfile(ctx, models.Profile{FullName: "Ana", Email: "ana@example.com", Active: true})
	require.NoError(t, err)

	now := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
	f := &fixture{db: db, user: user, now: &now}
	engine := timetrack.NewEngine(db, timetrack.WithClock(func() time.Time { return *f.now }))
	f.srv = New(Deps{Repo: db, Timers: engine, Location: time.UTC, Logger: util.DiscardLogger()})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(UserHeader, f.user.ID)
	rec := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder, key string) T {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(envelope[key], &out))
	return out
}

func (f *fixture) createTask(t *testing.T, title string) models.Task {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Task](t, rec, "task")
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTaskCRUD(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Preparar pedido")
	assert.Equal(t, f.user.ID, task.CreatorID)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	rec := f.do(t, http.MethodPut, "/api/tasks/"+task.ID, map[string]any{"title": "Pedido 42", "tags": []string{"Ventas"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Task](t, rec, "task")
	assert.Equal(t, "Pedido 42", updated.Title)
	assert.Equal(t, []string{"ventas"}, updated.Tags)

	rec = f.do(t, http.MethodPut, "/api/tasks/"+task.ID+"/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode[models.Task](t, rec, "task").CompletedAt)

	rec = f.do(t, http.MethodGet, "/api/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec, "tasks"), 1)

	rec = f.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title")

	rec = f.do(t, http.MethodPut, "/api/tasks/missing/status", map[string]any{"status": "blocked"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rr := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.Invalid("x", "bad"), http.StatusBadRequest},
		{fmt.Errorf("get: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrAlreadyStopped, http.StatusConflict},
		{models.ErrDuplicate, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), "%v", tc.err)
	}
}

type silentError struct{}

func (silentError) Error() string { return "" }

func TestRespondErrorFallbackMessage(t *testing.T) {
	f := newFixture(t)
	f.srv.Engine().GET("/api/boom", func(c *gin.Context) {
		f.srv.respondError(c, "cargar las tareas", silentError{})
	})
	rec := f.do(t, http.MethodGet, "/api/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error al cargar las tareas"}`, rec.Body.String())
}

func TestTimerLifecycle(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Inventario")

	rec := f.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/timer", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[models.TimeEntry](t, rec, "entry")

	rec = f.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/timer", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	*f.now = f.now.Add(90 * time.Second)
	rec = f.do(t, http.MethodGet, "/api/tasks/"+task.ID+"/timer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, decode[int](t, rec, "elapsed_seconds"))

	rec = f.do(t, http.MethodGet, "/api/timers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]timetrack.ActiveTimer](t, rec, "timers"), 1)

	rec = f.do(t, http.MethodPost, "/api/time-entries/"+entry.ID+"/stop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stopped := decode[models.TimeEntry](t, rec, "entry")
	require.NotNil(t, stopped.DurationMinutes)
	assert.Equal(t, 1, *stopped.DurationMinutes)

	rec = f.do(t, http.MethodPost, "/api/time-entries/"+entry.ID+"/stop", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/tasks/"+task.ID+"/timer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"timer":null}`, rec.Body.String())

	got, err := f.db.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, got.Status)
	assert.Equal(t, 1, got.TotalMinutes)

	rec = f.do(t, http.MethodDelete, "/api/time-entries/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got, err = f.db.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalMinutes)
}

func TestManualEntryAndReports(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Facturas")

	rec := f.do(t, http.MethodPost, "/api/time-entries", map[string]any{
		"task_id": task.ID, "start_time": "2024-03-05T09:00:00Z", "minutes": 90, "note": "cierre",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/time-entries", map[string]any{
		"task_id": task.ID, "start_time": "2024-03-05T12:00:00Z", "minutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/reports?preset=week", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Summary struct {
			TotalMinutes        int            `json:"total_minutes"`
			ByUser              map[string]int `json:"by_user"`
			AverageHoursPerTask int            `json:"average_hours_per_task"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 90, body.Summary.TotalMinutes)
	assert.Equal(t, map[string]int{"Ana": 90}, body.Summary.ByUser)
	assert.Equal(t, 1, body.Summary.AverageHoursPerTask)

	rec = f.do(t, http.MethodGet, "/api/reports.csv?preset=custom&from=2024-03-05&to=2024-03-05", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "informe-tiempo-2024-03-06.csv")
	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"05/03/2024 09:00", "Ana", "Facturas", "1.50"}, records[1])

	rec = f.do(t, http.MethodGet, "/api/reports.pdf?preset=month", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "informe-tiempo-2024-03-06.pdf")

	rec = f.do(t, http.MethodGet, "/api/reports?preset=custom&from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/reports?preset=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWhatsAppAndPoll(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tasks/whatsapp", map[string]any{
		"title": "Pedido", "message": "Necesito 3 cajas", "whatsapp_chat_name": "Ventas",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[models.Task](t, rec, "task")
	assert.Equal(t, models.OriginWhatsAppMessage, task.Origin)
	assert.True(t, strings.HasSuffix(task.Description, "--- Mensaje de WhatsApp ---\nNecesito 3 cajas"))

	rec = f.do(t, http.MethodPost, "/api/tasks/poll", map[string]any{"title": "Turnos", "options": "Lunes\nMartes\n", "whatsapp_chat_name": "Equipo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]models.Task](t, rec, "tasks"), 2)

	rec = f.do(t, http.MethodPost, "/api/tasks/poll", map[string]any{"title": "Vacía", "options": "", "whatsapp_chat_name": "Equipo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tasks/whatsapp", map[string]any{"title": "Pedido", "whatsapp_chat_name": "Ventas"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChecklistCommentsUsersDashboard(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Detalle")

	rec := f.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/checklist", map[string]any{"text": "Paso 1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[models.ChecklistItem](t, rec, "item")
	assert.Equal(t, 0, item.Position)

	rec = f.do(t, http.MethodPatch, "/api/checklist/"+item.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.ChecklistItem](t, rec, "item").Done)

	rec = f.do(t, http.MethodGet, "/api/tasks/"+task.ID+"/checklist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ChecklistItem](t, rec, "items"), 1)

	rec = f.do(t, http.MethodDelete, "/api/checklist/"+item.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/comments", map[string]any{"text": "Hecho"})
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[models.Comment](t, rec, "comment")
	assert.Equal(t, f.user.ID, comment.AuthorID)

	rec = f.do(t, http.MethodGet, "/api/tasks/"+task.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Comment](t, rec, "comments"), 1)

	rec = f.do(t, http.MethodDelete, "/api/comments/"+comment.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/users", map[string]any{"full_name": "Luis", "email": "luis@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/users", map[string]any{"full_name": "Luis", "email": "luis@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]models.Profile](t, rec, "users")
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users[0].FullName)

	rec = f.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.DashboardStats](t, rec, "stats").Pending)
}

func TestCommentStream(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "Hilo")

	ts := httptest.NewServer(f.srv.Engine())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/tasks/"+task.ID+"/comments/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "" && name != "":
				return name, data
			}
		}
	}

	name, _ := readEvent()
	require.Equal(t, "ready", name)

	other := f.createTask(t, "Otro")
	_, err = f.db.AddComment(context.Background(), other.ID, f.user.ID, "ignorado")
	require.NoError(t, err)
	c, err := f.db.AddComment(context.Background(), task.ID, f.user.ID, "nuevo")
	require.NoError(t, err)

	name, data := readEvent()
	assert.Equal(t, "comment", name)
	var ev database.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, c.ID, ev.RowID)
	assert.Equal(t, database.OpInsert, ev.Op)
}

func TestCommentStreamUnknownTask(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/tasks/missing/comments/stream", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.db.Feed().Subscribers())
}

func TestListTasksByResponsibleWithLimit(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "Sin responsable")
	for _, title := range []string{"Mía 1", "Mía 2"} {
		rec := f.do(t, http.MethodPost, "/api/tasks", map[string]any{"title": title, "responsible_id": f.user.ID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := f.do(t, http.MethodGet, "/api/tasks?responsible="+f.user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]models.Task](t, rec, "tasks")
	require.Len(t, mine, 2)
	for _, task := range mine {
		assert.Equal(t, f.user.ID, *task.ResponsibleID)
	}

	rec = f.do(t, http.MethodGet, "/api/tasks?responsible="+f.user.ID+"&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec, "tasks"), 1)
}

func TestRespondSuccessWritesPayloadAsIs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	respondSuccess(c, http.StatusOK, gin.H{"tasks": []string{}})
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	respondSuccess(c, http.StatusNoContent, nil)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
