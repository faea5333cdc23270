// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/errors"

	"github.com/lib/pq"
)

// PostgresClient wraps the SQL connection used for the registration audit
// trail.
type PostgresClient struct {
	DB         *sql.DB
	auditTable string
}

// AuditRecord is one row of the registration audit table.
type AuditRecord struct {
	EventID          string
	EventType        string
	Activity         string
	Email            string
	ParticipantCount int
	OccurredAt       time.Time
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgresFromDB(db, cfg.AuditTable), nil
}

// NewPostgresFromDB wraps an existing handle.
func NewPostgresFromDB(db *sql.DB, auditTable string) *PostgresClient {
	return &PostgresClient{DB: db, auditTable: auditTable}
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureAuditTable creates the audit table if it does not exist yet.
func (c *PostgresClient) EnsureAuditTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	event_id          UUID PRIMARY KEY,
	event_type        TEXT NOT NULL,
	activity          TEXT NOT NULL,
	email             TEXT NOT NULL,
	participant_count INTEGER NOT NULL,
	occurred_at       TIMESTAMPTZ NOT NULL
)`, pq.QuoteIdentifier(c.auditTable))

	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

// InsertAuditRecord stores one registration event. Replays of the same
// event id are ignored.
func (c *PostgresClient) InsertAuditRecord(ctx context.Context, rec AuditRecord) error {
	query := fmt.Sprintf(`INSERT INTO %s
	(event_id, event_type, activity, email, participant_count, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (event_id) DO NOTHING`, pq.QuoteIdentifier(c.auditTable))

	_, err := c.DB.ExecContext(ctx, query,
		rec.EventID, rec.EventType, rec.Activity, rec.Email, rec.ParticipantCount, rec.OccurredAt,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
