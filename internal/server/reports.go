package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/report"
)

const reportTitle = "Informe de horas"

// reportFilter reads preset, from, to, user_id and task_id query params.
func (s *Server) reportFilter(c *gin.Context) (report.Filter, error) {
	parse := func(key string) (time.Time, error) {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			return time.Time{}, nil
		}
		t, err := time.ParseInLocation(config.DateInputLayout, raw, s.loc)
		if err != nil {
			return time.Time{}, models.Invalid(key, "expected YYYY-MM-DD")
		}
		return t, nil
	}
	from, err := parse("from")
	if err != nil {
		return report.Filter{}, err
	}
	to, err := parse("to")
	if err != nil {
		return report.Filter{}, err
	}
	r, err := report.Resolve(c.Query("preset"), s.timers.Now(), s.loc, from, to)
	if err != nil {
		return report.Filter{}, err
	}
	return report.Filter{Range: r, UserID: c.Query("user_id"), TaskID: c.Query("task_id")}, nil
}

func (s *Server) loadReport(c *gin.Context, action string) (report.Filter, []models.TimeEntryDetail, bool) {
	f, err := s.reportFilter(c)
	if err != nil {
		s.respondError(c, action, err)
		return f, nil, false
	}
	entries, err := report.Fetch(c.Request.Context(), s.repo, f)
	if err != nil {
		s.respondError(c, action, err)
		return f, nil, false
	}
	return f, entries, true
}

func (s *Server) handleReport(c *gin.Context) {
	f, entries, ok := s.loadReport(c, "generar el informe")
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"range":   f.Range,
		"summary": report.Summarize(entries, s.loc),
		"entries": entries,
	})
}

func (s *Server) handleReportCSV(c *gin.Context) {
	_, entries, ok := s.loadReport(c, "exportar el CSV")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, entries, s.loc); err != nil {
		s.respondError(c, "exportar el CSV", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.CSVFileName(s.timers.Now(), s.loc)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleReportPDF(c *gin.Context) {
	f, entries, ok := s.loadReport(c, "exportar el PDF")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, report.Summarize(entries, s.loc), f.Range, reportTitle); err != nil {
		s.respondError(c, "exportar el PDF", err)
		return
	}
	name := strings.TrimSuffix(report.CSVFileName(s.timers.Now(), s.loc), ".csv") + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
