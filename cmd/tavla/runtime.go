package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/hylla/tavla/internal/adapters/storage/mongo"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/platform"
)

// runtime bundles the process-wide collaborators one command execution
// needs: resolved config, log sinks, the selected store, and the board
// service wired on top of it.
type runtime struct {
	cfg        config.Config
	paths      platform.Paths
	logger     *runtimeLogger
	svc        *app.Service
	closeStore func() error
}

// newRuntime resolves paths and config, opens the configured store, and
// builds the board service. With muteConsole the console log sink stays
// quiet so the board owns the terminal; file logging is unaffected.
func newRuntime(ctx context.Context, flags *rootFlags, stderr io.Writer, muteConsole bool) (*runtime, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	configPath := flags.configPath
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := flags.dbPath
	dbOverridden := strings.TrimSpace(dbPath) != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = dbPath
	}
	if envURI := strings.TrimSpace(os.Getenv("TAVLA_MONGO_URI")); envURI != "" {
		cfg.Database.Driver = config.DriverMongo
		cfg.Database.URI = envURI
		if cfg.Database.Name == "" {
			cfg.Database.Name = "tavla"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := newRuntimeLogger(stderr, flags.appName, cfg.Logging, paths.LogPath)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if muteConsole {
		// Keep board rendering clean: runtime logs stay in the file sink
		// while the board is active.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("configuration loaded",
		"config_path", configPath,
		"driver", cfg.Database.Driver,
		"log_level", cfg.Logging.Level)

	store, contacts, closeStore, err := openStore(ctx, cfg, paths, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	svc := app.NewService(
		app.NewBreakerStore(store, logger),
		contacts,
		uuid.NewString,
		nil,
		app.ServiceConfig{
			CreatedBy:  cfg.Identity.Name,
			Categories: cfg.Board.Categories,
			Logger:     logger,
		},
	)

	return &runtime{
		cfg:        cfg,
		paths:      paths,
		logger:     logger,
		svc:        svc,
		closeStore: closeStore,
	}, nil
}

// openStore opens the driver the config selects. Both repositories serve
// tasks and contacts.
func openStore(ctx context.Context, cfg config.Config, paths platform.Paths, logger *runtimeLogger) (app.TaskStore, app.ContactStore, func() error, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		logger.Info("connecting to mongodb", "database", cfg.Database.Name)
		repo, err := mongo.Connect(ctx, cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			logger.Error("mongodb connect failed", "err", err)
			return nil, nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		return repo, repo, func() error { return repo.Close(context.Background()) }, nil

	default:
		if err := platform.EnsureDataDir(paths); err != nil {
			return nil, nil, nil, fmt.Errorf("ensure data dir: %w", err)
		}
		logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
		repo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
			return nil, nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		return repo, repo, repo.Close, nil
	}
}

// close releases the store and the log sinks.
func (rt *runtime) close() {
	if rt == nil {
		return
	}
	if rt.closeStore != nil {
		if err := rt.closeStore(); err != nil {
			rt.logger.Warn("store close failed", "err", err)
		}
	}
	if err := rt.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: close log sink: %v\n", err)
	}
}
