// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// package storage persists activation data as small keyed records. It hides
// the database (SQLite, PostgreSQL or MySQL) behind Bun so the engine only
// deals with keys and payloads.
package storage // import "github.com/toeirei/activation-console/internal/storage"

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/toeirei/activation-console/internal/logging"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	// SQL drivers for the networked backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// RecordModel maps the activation_records table.
type RecordModel struct {
	bun.BaseModel `bun:"table:activation_records"`
	Key           string    `bun:"record_key,pk,type:varchar(191)"`
	Payload       []byte    `bun:"payload"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// Store is a Bun-backed keyed record store.
type Store struct {
	db     *bun.DB
	dbType string
	dsn    string
}

// sqlOpenFunc is swapped in tests that need to observe driver selection.
var sqlOpenFunc = sql.Open

// Open connects to the given backend and makes sure the schema exists.
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	driverName := dbType
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	if dbType == "postgres" {
		driverName = "pgx"
	}
	if dbType == "sqlite" {
		if err := ensureSqliteDir(dsn); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory SQLite database only exists per connection.
	if dbType == "sqlite" && isMemoryDSN(dsn) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	bdb, err := createBunDB(sqlDB, dbType)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	s := &Store{db: bdb, dbType: dbType, dsn: dsn}
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to prepare storage schema: %w", err)
	}
	logging.Debugf("storage: opened %s in %s", s.ID(), time.Since(start))
	return s, nil
}

func createBunDB(sqlDB *sql.DB, dbType string) (*bun.DB, error) {
	switch dbType {
	case "sqlite":
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: '%s'", dbType)
	}
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*RecordModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func ensureSqliteDir(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create storage directory %s: %w", dir, err)
	}
	return nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// ID describes where records are kept without leaking credentials.
func (s *Store) ID() string {
	if s.dbType == "sqlite" {
		return "sqlite:" + s.dsn
	}
	if u, err := url.Parse(s.dsn); err == nil && u.Host != "" {
		return s.dbType + "://" + u.Host + u.Path
	}
	return s.dbType
}

// Get returns the payload stored under key or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var rec RecordModel
	err := s.db.NewSelect().Model(&rec).Where("record_key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return rec.Payload, nil
}

// Put replaces the payload stored under key.
func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	// Delete+insert inside a transaction keeps the upsert portable across dialects.
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*RecordModel)(nil)).Where("record_key = ?", key).Exec(ctx); err != nil {
			return fmt.Errorf("replace %q: %w", key, err)
		}
		rec := &RecordModel{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			return fmt.Errorf("store %q: %w", key, err)
		}
		return nil
	})
}

// Delete removes the record under key. Missing records are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().Model((*RecordModel)(nil)).Where("record_key = ?", key).Exec(ctx)
	return err
}

// Keys lists stored keys with the given prefix, ordered.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.NewSelect().
		Model((*RecordModel)(nil)).
		Column("record_key").
		Where("record_key LIKE ?", prefix+"%").
		Order("record_key ASC").
		Scan(ctx, &keys)
	return keys, err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
