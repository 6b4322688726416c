package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

// Resource names used in OpError.
const (
	EntityTask      = "task"
	EntityTimeEntry = "time entry"
	EntityChecklist = "checklist item"
	EntityComment   = "comment"
	EntityProfile   = "profile"
	EntitySetting   = "setting"
	EntityVault     = "vault"
)

var (
	ErrEncryptedExport = errors.New("export is encrypted; passphrase required")
	ErrWrongPassphrase = errors.New("incorrect passphrase")
)

// OpError records which store operation failed and on what row.
type OpError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// wrapErr attaches operation context. Missing rows become models.ErrNotFound
// and a violated active-timer index becomes models.ErrConflict. Other unique
// violations become models.ErrDuplicate.
func wrapErr(resource, op, id string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = models.ErrNotFound
	case isActiveTimerViolation(err):
		err = models.ErrConflict
	case isUniqueViolation(err):
		err = models.ErrDuplicate
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isActiveTimerViolation(err error) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), "time_entries.task_id")
}
