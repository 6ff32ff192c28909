package http

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"userapp/internal/adapter/database/postgres"
	pgrepository "userapp/internal/adapter/database/postgres/repository"
	"userapp/internal/adapter/database/sqlite"
	sqliterepository "userapp/internal/adapter/database/sqlite/repository"
	"userapp/internal/adapter/http/handler"
	"userapp/internal/adapter/http/validation"
	"userapp/internal/core/port"
	"userapp/internal/core/service"
	"userapp/pkg/config"
)

type Container struct {
	UserRepo    port.UserRepository
	UserService port.UserService

	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler

	closeStore func()
}

// NewContainer opens the configured store and wires repository, service and
// handlers on top of it. Close releases the store.
func NewContainer(ctx context.Context, cfg *config.AppConfig, telemetry port.Telemetry) (*Container, error) {
	userRepo, closeStore, err := newUserRepository(ctx, cfg, telemetry)

	if err != nil {
		return nil, err
	}

	userSvc := service.NewUserService(userRepo,
		service.WithMutationDelay(cfg.MutationDelay),
		service.WithTelemetry(telemetry),
	)

	return &Container{
		UserRepo:      userRepo,
		UserService:   userSvc,
		UserHandler:   handler.NewUserHandler(userSvc, validation.NewValidator()),
		HealthHandler: handler.NewHealthHandler(userSvc),
		closeStore:    closeStore,
	}, nil
}

func (c *Container) Close() {
	if c.closeStore != nil {
		c.closeStore()
	}
}

func newUserRepository(ctx context.Context, cfg *config.AppConfig, telemetry port.Telemetry) (port.UserRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database.URL)

		if err != nil {
			return nil, nil, err
		}

		return pgrepository.NewUserRepository(db, telemetry), db.Close, nil

	case config.DriverSQLite:
		level := zerolog.InfoLevel

		if cfg.Environment == "production" {
			level = zerolog.WarnLevel
		}

		db, err := sqlite.NewDB(sqlite.Config{
			Path:        cfg.Database.Path,
			SQLLogLevel: level,
		})

		if err != nil {
			return nil, nil, err
		}

		return sqliterepository.NewUserRepository(db, telemetry), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
