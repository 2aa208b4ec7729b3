package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/migrations"
)

type Postgres struct {
	Pool *pgxpool.Pool
	// SQLX is a small database/sql pool for struct-scanned reporting
	// queries and migrations.
	SQLX *sqlx.DB
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres connstr: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.HealthCheckPeriod = 30 * time.Second

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(pingCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	log.Info().Str("database", poolConfig.ConnConfig.Database).Msg("Connected to PostgreSQL")

	sqlDB, err := sqlx.ConnectContext(pingCtx, "postgres", cfg.DSN())
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect reporting pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(int(max(cfg.MaxConns/2, 1)))
	sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)

	return &Postgres{Pool: dbPool, SQLX: sqlDB}, nil
}

// Migrate applies the embedded migrations. ErrNoChange is not an error.
func (p *Postgres) Migrate() error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	ctx := context.Background()
	conn, err := p.SQLX.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire migration connection: %w", err)
	}

	// Closing m releases conn only; the reporting pool stays open.
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, p.Pool.Config().ConnConfig.Database, driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to initialize migration instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info().Msg("New migrations applied successfully")
	return nil
}

func (p *Postgres) Close() {
	if p.SQLX != nil {
		_ = p.SQLX.Close()
	}
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("Database connection closed")
	}
}
