package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twinzy/goals/internal/config"
	"github.com/twinzy/goals/internal/db"
	"github.com/twinzy/goals/internal/metrics"
	"github.com/twinzy/goals/internal/repository"
	"github.com/twinzy/goals/internal/service"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

type App struct {
	Cfg            *config.Config
	Storage        repository.Storage
	UserService    *service.UserService
	GoalService    *service.GoalService
	SessionService *service.SessionService

	done      chan struct{}
	closeOnce sync.Once
}

// New selects the storage backend once and wires the services on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, storage), nil
}

func newApp(cfg *config.Config, storage repository.Storage) *App {
	metrics.SetStorageBackend(storage.Name())
	slog.Info("storage backend selected", "backend", storage.Name(), "env", cfg.AppEnv)

	return &App{
		Cfg:            cfg,
		Storage:        storage,
		UserService:    service.NewUserService(storage),
		GoalService:    service.NewGoalService(storage),
		SessionService: service.NewSessionService(cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction()),
		done:           make(chan struct{}),
	}
}

// Done is closed when the app shuts down.
func (a *App) Done() <-chan struct{} {
	return a.done
}

func (a *App) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		close(a.done)
		err = a.Storage.Close(ctx)
	})
	return err
}

func openStorage(ctx context.Context, cfg *config.Config) (repository.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return repository.NewMemoryStorage(), nil

	case config.StorageSQL:
		database, err := db.OpenSQL(ctx, cfg.DBDriver, cfg.DBConnection, cfg.MongoConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewSQLStorage(database), nil

	case config.StorageMongo:
		return openMongo(ctx, cfg)

	case config.StorageAuto, "":
		storage, err := openMongo(ctx, cfg)
		if err == nil {
			return storage, nil
		}
		if cfg.IsProduction() {
			return nil, err
		}
		slog.Warn("document store unavailable, falling back to in-memory storage", "error", err)
		return repository.NewMemoryStorage(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
	}
}

func openMongo(ctx context.Context, cfg *config.Config) (repository.Storage, error) {
	client, err := db.ConnectMongo(ctx, db.MongoOptions{
		URI:            cfg.MongoURI,
		ConnectTimeout: cfg.MongoConnectTimeout,
		SocketTimeout:  cfg.MongoSocketTimeout,
	})
	if err != nil {
		return nil, err
	}

	database := client.Database(cfg.MongoDatabase)
	err = db.EnsureIndexes(ctx, database)
	if err != nil {
		// Indexes are an optimization plus the uniqueness guard; keep serving.
		slog.Error("failed to ensure indexes", "error", err)
	}

	return repository.NewMongoStorage(database), nil
}
