package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/config"
	"github.com/spec-kit/ops-desk/internal/observability"
	"github.com/spec-kit/ops-desk/internal/persistence"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/service"
)

// runtime holds the process-wide connections shared by commands.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pg.PoolHandle() == nil {
		_ = logger.Sync()
		return nil, errors.New("POSTGRES_DSN is required")
	}
	return &runtime{cfg: cfg, logger: logger, pg: pg}, nil
}

func (r *runtime) migrate() error {
	if !r.cfg.Postgres.RunMigrations {
		return nil
	}
	return persistence.RunMigrations(r.pg.PoolHandle(), r.logger)
}

func (r *runtime) authService() *service.AuthService {
	return service.NewAuthService(r.cfg.Auth, repository.NewProfileRepository(r.pg.PoolHandle()))
}

func (r *runtime) close() {
	r.pg.Close()
	_ = r.logger.Sync()
}
