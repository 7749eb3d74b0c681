package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/at-ishikawa/literacy/schemas"
)

// Migrate applies every pending migration embedded in the schemas package.
// On MySQL the key column is switched to a binary collation so that keys differing only
// in case stay distinct.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(schemas.Migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose.SetDialect(%s) > %w", dialect, err)
	}
	for _, dir := range migrationDirs(driver) {
		if err := goose.UpContext(ctx, db.DB, dir); err != nil {
			return fmt.Errorf("goose.UpContext(%s) > %w", dir, err)
		}
	}
	return nil
}

func migrationDirs(driver string) []string {
	if driver == DriverMySQL {
		return []string{schemas.MigrationsDir, schemas.MySQLMigrationsDir}
	}
	return []string{schemas.MigrationsDir}
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverMySQL:
		return "mysql", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
