package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

//go:embed schema/*.sql
var schemas embed.FS

// LoadDB opens the database, checks it is reachable and creates the
// kv_records table when missing.
func LoadDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to %s: %w", driver, err)
	}
	if err := Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	query, err := Schema(driver)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func Schema(driver string) (string, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
	query, err := schemas.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return "", fmt.Errorf("failed to read schema for %s: %w", driver, err)
	}
	return string(query), nil
}
