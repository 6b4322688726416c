package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

const profileColumns = "id, full_name, email, role, active, avatar_url, created_at, updated_at"

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	var role string
	var avatar sql.NullString
	var created, updated dbTime
	if err := row.Scan(&p.ID, &p.FullName, &p.Email, &role, &p.Active, &avatar, &created, &updated); err != nil {
		return p, err
	}
	p.Role = models.Role(role)
	p.AvatarURL = nullStringPtr(avatar)
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time
	return p, nil
}

// CreateProfile inserts a profile; new profiles are active by default.
func (d *Database) CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.CreatedAt = d.now().UTC()
	p.UpdatedAt = p.CreatedAt
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		_, err := d.DB.ExecContext(ctx, "INSERT INTO profiles ("+profileColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.FullName, p.Email, string(p.Role), p.Active, toNullableArg(p.AvatarURL),
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
		return err
	})
	if err != nil {
		return models.Profile{}, wrapErr(EntityProfile, "create", p.ID, err)
	}
	d.publish(TableProfiles, OpInsert, p.ID, nil)
	return p, nil
}

func (d *Database) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	p, err := withDBContextResult(d, ctx, func(ctx context.Context) (models.Profile, error) {
		return scanProfile(d.DB.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id))
	})
	return p, wrapErr(EntityProfile, "get", id, err)
}

// ListProfiles returns profiles ordered by name, optionally only active ones.
func (d *Database) ListProfiles(ctx context.Context, activeOnly bool) ([]models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY full_name ASC"
	profiles, err := withDBContextResult(d, ctx, func(ctx context.Context) ([]models.Profile, error) {
		rows, err := d.DB.QueryContext(ctx, query)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []models.Profile{}
		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, rows.Err()
	})
	return profiles, wrapErr(EntityProfile, "list", "", err)
}

// UpdateProfile rewrites name, email, role and avatar.
func (d *Database) UpdateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "UPDATE profiles SET full_name = ?, email = ?, role = ?, avatar_url = ? WHERE id = ?",
			p.FullName, strings.ToLower(strings.TrimSpace(p.Email)), string(p.Role), toNullableArg(p.AvatarURL), p.ID)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
	if err != nil {
		return models.Profile{}, wrapErr(EntityProfile, "update", p.ID, err)
	}
	d.publish(TableProfiles, OpUpdate, p.ID, nil)
	return d.GetProfile(ctx, p.ID)
}

func (d *Database) SetProfileActive(ctx context.Context, id string, active bool) error {
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "UPDATE profiles SET active = ? WHERE id = ?", active, id)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
	if err != nil {
		return wrapErr(EntityProfile, "set active", id, err)
	}
	d.publish(TableProfiles, OpUpdate, id, nil)
	return nil
}
