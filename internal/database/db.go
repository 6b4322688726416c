package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

const defaultDBTimeout = config.DBTimeout

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// Options tunes Open.
type Options struct {
	Driver     string
	Logger     *slog.Logger
	FeedBuffer int
}

// Database wraps the SQLite connection and the change feed.
type Database struct {
	DB     *sql.DB
	dbFile string
	driver string
	logger *slog.Logger
	feed   *Feed
	now    func() time.Time
}

// Open connects to the database at path and runs migrations.
func Open(ctx context.Context, path string, opts Options) (*Database, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("empty database path")
	}
	if opts.Driver == "" {
		opts.Driver = DriverCGO
	}
	if opts.Logger == nil {
		opts.Logger = util.DiscardLogger()
	}
	if path != ":memory:" {
		if err := util.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn, err := buildDSN(opts.Driver, path)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	d := &Database{
		DB:     conn,
		dbFile: path,
		driver: opts.Driver,
		logger: opts.Logger,
		feed:   NewFeed(opts.FeedBuffer),
		now:    time.Now,
	}
	if err := d.withDBContext(ctx, func(ctx context.Context) error {
		if err := conn.PingContext(ctx); err != nil {
			return fmt.Errorf("ping sqlite: %w", err)
		}
		return d.migrate(ctx)
	}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	d.logger.Debug("database ready", slog.String("path", path), slog.String("driver", opts.Driver))
	return d, nil
}

func buildDSN(driver, path string) (string, error) {
	switch driver {
	case DriverCGO:
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path), nil
	case DriverPure:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

// Close releases the connection and ends every feed subscription.
func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	d.feed.closeAll()
	return d.DB.Close()
}

// Feed exposes the row-change notification feed.
func (d *Database) Feed() *Feed {
	return d.feed
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbFile
}

func (d *Database) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (d *Database) withDBContext(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	return fn(ctx)
}

func withDBContextResult[T any](d *Database, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := d.withTimeout(ctx, defaultDBTimeout)
	defer cancel()
	return fn(ctx)
}

// WithTx runs fn inside a transaction, committing only when fn succeeds.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		rollbackWithLog(d.logger, tx)
		return err
	}
	return tx.Commit()
}

func rollbackWithLog(logger *slog.Logger, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		util.LogError(logger, "rollback failed", err)
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (d *Database) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
			active INTEGER NOT NULL DEFAULT 1,
			avatar_url TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'blocked', 'completed')),
			priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
			origin TEXT NOT NULL DEFAULT 'manual' CHECK (origin IN ('manual', 'whatsapp_message', 'whatsapp_poll')),
			responsible_id TEXT REFERENCES profiles(id) ON DELETE SET NULL,
			creator_id TEXT NOT NULL REFERENCES profiles(id),
			total_minutes INTEGER NOT NULL DEFAULT 0,
			estimated_minutes INTEGER,
			due_date TEXT,
			completed_at TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			whatsapp_chat_name TEXT,
			whatsapp_message_id TEXT,
			whatsapp_phone_number TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS time_entries (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			start_time TEXT NOT NULL,
			end_time TEXT,
			duration_minutes INTEGER,
			entry_type TEXT NOT NULL DEFAULT 'automatic' CHECK (entry_type IN ('automatic', 'manual')),
			note TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS checklist_items (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			done INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			author_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_responsible ON tasks(responsible_id);`,
		`CREATE INDEX IF NOT EXISTS idx_time_entries_task ON time_entries(task_id);`,
		`CREATE INDEX IF NOT EXISTS idx_time_entries_user_start ON time_entries(user_id, start_time);`,
		`CREATE INDEX IF NOT EXISTS idx_time_entries_start ON time_entries(start_time);`,
		// At most one running entry per (task, user).
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_time_entries_active ON time_entries(task_id, user_id) WHERE end_time IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_checklist_task ON checklist_items(task_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id, created_at);`,
		`CREATE TRIGGER IF NOT EXISTS trg_tasks_updated
			AFTER UPDATE ON tasks
			FOR EACH ROW BEGIN
				UPDATE tasks SET updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE id = OLD.id;
			END;`,
		`CREATE TRIGGER IF NOT EXISTS trg_profiles_updated
			AFTER UPDATE ON profiles
			FOR EACH ROW BEGIN
				UPDATE profiles SET updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE id = OLD.id;
			END;`,
	}

	for _, stmt := range stmts {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
