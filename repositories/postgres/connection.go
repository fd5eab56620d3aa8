package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/upb/placement-rag/config"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB opens the connection pool and waits for the server to answer a ping.
// Pings are retried with exponential backoff until cfg.ConnectTimeout elapses;
// after that the store is considered unreachable.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitForConnection(ctx, db, cfg.ConnectTimeout, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return WrapDB(db, logger), nil
}

// WrapDB wraps an already opened pool without pinging it
func WrapDB(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

func waitForConnection(ctx context.Context, db *sql.DB, timeout time.Duration, logger *zap.Logger) error {
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if timeout > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 250 * time.Millisecond
		exp.MaxInterval = 2 * time.Second
		exp.MaxElapsedTime = timeout
		policy = exp
	}

	attempt := 0
	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("database not reachable yet",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", next),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		return fmt.Errorf("failed to ping database after %d attempt(s): %w", attempt, err)
	}
	return nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck pings the database and runs a trivial query
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// InitSchema creates the pgvector extension and the placement tables.
// The embedding column has no ANN index; ranking is a linear scan.
// Runs inside the transaction carried by ctx, if any.
func (db *DB) InitSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", dimensions)
	}

	schema := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			branch TEXT NOT NULL DEFAULT '',
			cgpa DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS companies (
			company_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sector TEXT NOT NULL DEFAULT '',
			hq_city TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS offers (
			id UUID PRIMARY KEY,
			student_id TEXT NOT NULL,
			company_id TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			ctc_lpa DOUBLE PRECISION,
			stipend_kpm DOUBLE PRECISION,
			duration TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			doc_embedding vector(%d),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_offers_student_id ON offers(student_id);
		CREATE INDEX IF NOT EXISTS idx_offers_company_id ON offers(company_id);
		CREATE INDEX IF NOT EXISTS idx_offers_pending ON offers(created_at) WHERE doc_embedding IS NULL;
	`, dimensions)

	if _, err := GetExecutor(ctx, db).ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized", zap.Int("embedding_dimensions", dimensions))
	return nil
}
