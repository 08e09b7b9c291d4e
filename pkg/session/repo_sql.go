package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	mysqlUpsert = `
		INSERT INTO kv_records (k, v, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)
	`
	sqliteUpsert = `
		INSERT INTO kv_records (k, v, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at
	`
)

// SQLRepo stores records in the kv_records table. The upsert statement is
// the only dialect specific part.
type SQLRepo struct {
	DB     *sql.DB
	upsert string
}

func NewMySQLRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{DB: db, upsert: mysqlUpsert}
}

func NewSQLiteRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{DB: db, upsert: sqliteUpsert}
}

func (r *SQLRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT v FROM kv_records WHERE k = ?
	`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *SQLRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.DB.ExecContext(ctx, r.upsert, key, value, time.Now().UTC())
	return err
}

func (r *SQLRepo) Delete(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM kv_records WHERE k = ?
	`, key)
	return err
}
