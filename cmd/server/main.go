package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	rbac "github.com/goliatone/go-rbac"
)

// zeroLogger adapts zerolog to the package logging interface.
type zeroLogger struct {
	log zerolog.Logger
}

func (l zeroLogger) Debug(format string, args ...any) { l.log.Debug().Msgf(format, args...) }
func (l zeroLogger) Info(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l zeroLogger) Warn(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l zeroLogger) Error(format string, args ...any) { l.log.Error().Msgf(format, args...) }

func main() {
	logger := zeroLogger{
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}

	if err := run(logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(logger zeroLogger) error {
	cfg, err := rbac.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	rbac.RegisterModels(db)

	ctx := context.Background()
	if err := createTables(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := rbac.NewRepositoryManager(db)
	repo.MustValidate()

	services := rbac.NewServices(repo, cfg, logger)

	app := rbac.NewApp(logger)
	rbac.RegisterRoutes(app, services)

	// seeding runs after route declaration so the super admin grant
	// covers every permission the routes just registered
	if err := rbac.Seed(ctx, repo, cfg, logger); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	logger.Info("listening on %s", cfg.HTTPAddr)
	return app.Listen(cfg.HTTPAddr)
}

func openDatabase(cfg *rbac.Config) (*bun.DB, error) {
	if cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func createTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*rbac.User)(nil),
		(*rbac.Role)(nil),
		(*rbac.Permission)(nil),
		(*rbac.ApiToken)(nil),
		(*rbac.PasswordResetToken)(nil),
		(*rbac.Product)(nil),
		(*rbac.UserToRole)(nil),
		(*rbac.RoleToPermission)(nil),
		(*rbac.ApiTokenToPermission)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
