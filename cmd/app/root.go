package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/board"
	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/timetrack"
	"github.com/akyairhashvil/tasktrack/internal/tui"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// app carries state shared by every subcommand.
type app struct {
	cfg    config.Config
	loc    *time.Location
	logger *slog.Logger
	db     *database.Database

	dbPath    string
	driver    string
	timezone  string
	logLevel  string
	logFormat string
	user      string
	envFile   string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Task board with per-user time tracking",
		Version:       tui.VersionLabel(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVar(&a.dbPath, "db", "", "path to the sqlite database (overrides "+config.EnvPrefix+"DB_PATH)")
	flags.StringVar(&a.driver, "driver", "", "sqlite driver: sqlite3 (cgo) or sqlite (pure Go)")
	flags.StringVar(&a.timezone, "tz", "", "display timezone, e.g. Europe/Madrid")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "text or json")
	flags.StringVar(&a.user, "user", os.Getenv(config.EnvPrefix+"USER"), "acting user ID or email")

	root.AddCommand(
		newServeCmd(a),
		newTUICmd(a),
		newReportCmd(a),
		newTimerCmd(a),
		newTaskCmd(a),
		newUserCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	override := func(dst *string, flag string) {
		if flag != "" {
			*dst = flag
		}
	}
	override(&cfg.DBPath, a.dbPath)
	override(&cfg.DBDriver, a.driver)
	override(&cfg.Timezone, a.timezone)
	override(&cfg.LogLevel, a.logLevel)
	override(&cfg.LogFormat, a.logFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.loc = loc
	a.logger = util.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(a.logger)
	return nil
}

// open connects to the database on first use.
func (a *app) open(ctx context.Context) (*database.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Open(ctx, a.cfg.DBPath, database.Options{Driver: a.cfg.DBDriver, Logger: a.logger})
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *app) board(db *database.Database) *board.Service {
	return board.NewService(db, board.WithLocation(a.loc), board.WithLogger(a.logger))
}

func (a *app) engine(db *database.Database) *timetrack.Engine {
	return timetrack.NewEngine(db, timetrack.WithLogger(a.logger))
}

// actingUser resolves --user as a profile ID or, failing that, an email.
func (a *app) actingUser(ctx context.Context, db *database.Database) (models.Profile, error) {
	ref := strings.TrimSpace(a.user)
	if ref == "" {
		return models.Profile{}, fmt.Errorf("no acting user: pass --user or set %sUSER", config.EnvPrefix)
	}
	p, err := db.GetProfile(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.Profile{}, err
	}
	profiles, err := db.ListProfiles(ctx, false)
	if err != nil {
		return models.Profile{}, err
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Email, ref) {
			return p, nil
		}
	}
	return models.Profile{}, fmt.Errorf("user %q: %w", ref, models.ErrNotFound)
}
