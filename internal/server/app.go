// Package server wires the ChartKeeper backend together: configuration,
// logging, database and migrations, the file store and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/chartkeeper/internal/logging"
	"github.com/dmitrijs2005/chartkeeper/internal/server/config"
	"github.com/dmitrijs2005/chartkeeper/internal/server/filestore"
	"github.com/dmitrijs2005/chartkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/chartkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/chartkeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager
	server *httpapi.Server
}

func newFileStore(ctx context.Context, cfg *config.Config) (filestore.FileStore, error) {
	switch cfg.FileStoreBackend {
	case "s3":
		return filestore.NewS3(ctx, cfg)
	case "disk":
		return filestore.NewDisk(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown file store backend %q", cfg.FileStoreBackend)
	}
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("file store init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()

	userService := services.NewUserService(db, repos, cfg)
	projectService := services.NewProjectService(db, repos, files)
	folderService := services.NewFolderService(db, repos)

	handler := httpapi.NewHandler(userService, projectService, folderService,
		cfg.MaxUploadSize, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		repos:  repos,
		server: httpapi.New(cfg, logger, handler),
	}, nil
}

// Run verifies the database, applies migrations and serves HTTP until the
// context is canceled or a termination signal arrives. Startup failures are
// returned before the listener opens.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	app.logger.Info(ctx, "migrations applied")

	return app.server.Run(ctx)
}
