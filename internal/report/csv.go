package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/models"
)

var csvHeader = []string{"Fecha", "Usuario", "Tarea", "Horas"}

// WriteCSV writes one row per entry in input order.
func WriteCSV(w io.Writer, entries []models.TimeEntryDetail, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.StartTime.In(loc).Format(config.CSVDateLayout),
			labelOr(e.UserName, config.UnassignedLabel),
			labelOr(e.TaskTitle, config.NoTaskLabel),
			fmt.Sprintf("%.2f", float64(minutesOf(e))/60),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func ToCSV(entries []models.TimeEntryDetail, loc *time.Location) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, entries, loc); err != nil {
		return "", err
	}
	return b.String(), nil
}

// CSVFileName is the download name for a report generated at now.
func CSVFileName(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("informe-tiempo-%s.csv", now.In(loc).Format(config.DateInputLayout))
}
