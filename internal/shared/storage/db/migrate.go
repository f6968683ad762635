package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"tirescan-backend/internal/shared/telemetry"
)

// versionTable keeps this service's migration history apart from other
// goose users of the same database.
const versionTable = "tirescan_schema_version"

//go:embed migrations/*.sql
var migrationFiles embed.FS

var gooseSetup sync.Mutex

// Migrate applies the embedded registry migrations. A nil database is a no-op.
func Migrate(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	gooseSetup.Lock()
	defer gooseSetup.Unlock()
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SchemaVersion reports the latest applied migration.
func SchemaVersion(ctx context.Context, database *sql.DB) (int64, error) {
	gooseSetup.Lock()
	defer gooseSetup.Unlock()
	if err := configureGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, database)
}

func configureGoose() error {
	goose.SetBaseFS(migrationFiles)
	goose.SetTableName(versionTable)
	goose.SetLogger(gooseLogger{})
	return goose.SetDialect("postgres")
}

// gooseLogger routes goose output through structured logging.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	telemetry.Info("db.migrate", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, v...))})
}

func (gooseLogger) Fatalf(format string, v ...any) {
	telemetry.Error("db.migrate", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, v...))})
	os.Exit(1)
}
