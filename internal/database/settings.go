package database

import (
	"context"
	"database/sql"
	"errors"
)

// GetSetting reads a key; ok is false when the key is unset.
func (d *Database) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value *string
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return d.DB.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(EntitySetting, "get", key, err)
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (d *Database) SetSetting(ctx context.Context, key, value string) error {
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		_, err := d.DB.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value)
		return err
	})
	return wrapErr(EntitySetting, "set", key, err)
}
