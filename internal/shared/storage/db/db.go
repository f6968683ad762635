package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"tirescan-backend/internal/shared/telemetry"
)

const defaultPingTimeout = 5 * time.Second

// Pool sizes the connection pool of the shop registry database.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// ServerPool is sized for the API process. Registry reads are short
// point lookups, so a small pool is enough.
func ServerPool() Pool {
	return Pool{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     defaultPingTimeout,
	}
}

// MigratePool is sized for the one-shot migrate command.
func MigratePool() Pool {
	return Pool{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     defaultPingTimeout,
	}
}

// Override returns p with every positive field of o applied.
func (p Pool) Override(o Pool) Pool {
	if o.MaxOpenConns > 0 {
		p.MaxOpenConns = o.MaxOpenConns
	}
	if o.MaxIdleConns > 0 {
		p.MaxIdleConns = o.MaxIdleConns
	}
	if o.ConnMaxLifetime > 0 {
		p.ConnMaxLifetime = o.ConnMaxLifetime
	}
	if o.ConnMaxIdleTime > 0 {
		p.ConnMaxIdleTime = o.ConnMaxIdleTime
	}
	if o.PingTimeout > 0 {
		p.PingTimeout = o.PingTimeout
	}
	return p
}

func (p Pool) apply(database *sql.DB) {
	if p.MaxOpenConns > 0 {
		database.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		database.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetime > 0 {
		database.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
	if p.ConnMaxIdleTime > 0 {
		database.SetConnMaxIdleTime(p.ConnMaxIdleTime)
	}
}

// Open connects to Postgres through pgx and verifies the connection.
func Open(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.apply(database)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := database.Stats()
	telemetry.Info("db.open", map[string]any{
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
		"max_open": stats.MaxOpenConnections,
	})
	return database, nil
}
