package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

const (
	vaultVersion        = 1
	settingLastExportAt = "last_export_at"
)

type ExportOptions struct {
	EncryptOutput bool
	Passphrase    string
}

// VaultExport is a full JSON dump of the board.
type VaultExport struct {
	Version     int                    `json:"version"`
	ExportedAt  time.Time              `json:"exported_at"`
	Profiles    []models.Profile       `json:"profiles"`
	Tasks       []models.Task          `json:"tasks"`
	TimeEntries []models.TimeEntry     `json:"time_entries"`
	Checklist   []models.ChecklistItem `json:"checklist_items"`
	Comments    []models.Comment       `json:"comments"`
}

// ExportVault serialises every table, optionally encrypting the result.
func (d *Database) ExportVault(ctx context.Context, opts ExportOptions) ([]byte, error) {
	if opts.EncryptOutput && opts.Passphrase == "" {
		return nil, wrapErr(EntityVault, "export", "", fmt.Errorf("passphrase required for encrypted export"))
	}
	vault, err := d.collectVault(ctx)
	if err != nil {
		return nil, wrapErr(EntityVault, "export", "", err)
	}
	payload, err := json.MarshalIndent(vault, "", "  ")
	if err != nil {
		return nil, wrapErr(EntityVault, "export", "", err)
	}
	if opts.EncryptOutput {
		if payload, err = encryptData(payload, opts.Passphrase); err != nil {
			return nil, wrapErr(EntityVault, "encrypt", "", err)
		}
	}
	if err := d.SetSetting(ctx, settingLastExportAt, formatTime(vault.ExportedAt)); err != nil {
		util.LogError(d.logger, "record export time", err)
	}
	return payload, nil
}

// LastExportAt reports when the vault was last exported.
func (d *Database) LastExportAt(ctx context.Context) (*time.Time, error) {
	raw, ok, err := d.GetSetting(ctx, settingLastExportAt)
	if err != nil || !ok {
		return nil, err
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *Database) collectVault(ctx context.Context) (VaultExport, error) {
	vault := VaultExport{Version: vaultVersion, ExportedAt: d.now().UTC()}
	var err error
	if vault.Profiles, err = d.ListProfiles(ctx, false); err != nil {
		return vault, err
	}
	if vault.Tasks, err = d.ListTasks(ctx, NewTaskQuery().OrderBy("created_at ASC")); err != nil {
		return vault, err
	}
	details, err := d.ListTimeEntryDetails(ctx, NewTimeEntryQuery())
	if err != nil {
		return vault, err
	}
	vault.TimeEntries = make([]models.TimeEntry, 0, len(details))
	for _, e := range details {
		vault.TimeEntries = append(vault.TimeEntries, e.TimeEntry)
	}
	vault.Checklist = []models.ChecklistItem{}
	vault.Comments = []models.Comment{}
	for _, t := range vault.Tasks {
		items, err := d.ListChecklist(ctx, t.ID)
		if err != nil {
			return vault, err
		}
		vault.Checklist = append(vault.Checklist, items...)
		comments, err := d.ListComments(ctx, t.ID)
		if err != nil {
			return vault, err
		}
		vault.Comments = append(vault.Comments, comments...)
	}
	return vault, nil
}

// ImportVault loads an export produced by ExportVault, replacing rows with
// matching IDs. Everything is applied in one transaction.
func (d *Database) ImportVault(ctx context.Context, data []byte, passphrase string) error {
	plain, err := decryptData(data, passphrase)
	if err != nil {
		return wrapErr(EntityVault, "decrypt", "", err)
	}
	var vault VaultExport
	if err := json.Unmarshal(plain, &vault); err != nil {
		return wrapErr(EntityVault, "import", "", fmt.Errorf("parse vault: %w", err))
	}
	if vault.Version > vaultVersion {
		return wrapErr(EntityVault, "import", "", fmt.Errorf("unsupported vault version %d", vault.Version))
	}

	err = d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			for _, p := range vault.Profiles {
				if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO profiles ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
					p.ID, p.FullName, p.Email, string(p.Role), p.Active, toNullableArg(p.AvatarURL),
					formatTime(p.CreatedAt), formatTime(p.UpdatedAt)); err != nil {
					return fmt.Errorf("profile %s: %w", p.ID, err)
				}
			}
			for _, t := range vault.Tasks {
				if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", t.ID); err != nil {
					return err
				}
				if err := insertTask(ctx, tx, t); err != nil {
					return fmt.Errorf("task %s: %w", t.ID, err)
				}
			}
			for _, e := range vault.TimeEntries {
				if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO time_entries
					(id, task_id, user_id, start_time, end_time, duration_minutes, entry_type, note, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					e.ID, e.TaskID, e.UserID, formatTime(e.StartTime), nullableTime(e.EndTime),
					toNullableArg(e.DurationMinutes), string(e.EntryType), toNullableArg(e.Note), formatTime(e.CreatedAt)); err != nil {
					return fmt.Errorf("time entry %s: %w", e.ID, err)
				}
			}
			for _, item := range vault.Checklist {
				if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO checklist_items ("+checklistColumns+") VALUES (?, ?, ?, ?, ?, ?)",
					item.ID, item.TaskID, item.Text, item.Done, item.Position, formatTime(item.CreatedAt)); err != nil {
					return fmt.Errorf("checklist item %s: %w", item.ID, err)
				}
			}
			for _, c := range vault.Comments {
				if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO comments ("+commentColumns+") VALUES (?, ?, ?, ?, ?)",
					c.ID, c.TaskID, c.AuthorID, c.Text, formatTime(c.CreatedAt)); err != nil {
					return fmt.Errorf("comment %s: %w", c.ID, err)
				}
			}
			for _, t := range vault.Tasks {
				if err := recomputeTaskMinutes(ctx, tx, t.ID); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return wrapErr(EntityVault, "import", "", err)
	}
	d.publish(TableTasks, OpUpdate, "", nil)
	return nil
}
