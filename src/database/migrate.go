package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded migrations for the connection's dialect
func (db *DB) Migrate() error {
	// マイグレーションは別接続で実行する（Close時に本体の接続を閉じないように）
	migrateDB, err := sql.Open(db.Driver, db.dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	var driver database.Driver
	switch db.Driver {
	case DriverPostgres:
		driver, err = postgres.WithInstance(migrateDB, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite.WithInstance(migrateDB, &sqlite.Config{})
	default:
		return fmt.Errorf("unsupported driver: %s", db.Driver)
	}
	if err != nil {
		return fmt.Errorf("create %s driver: %w", db.Driver, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+db.Driver)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Driver, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, _ := m.Version()
	db.logger.WithField("version", version).Info("マイグレーションを適用しました")
	return nil
}
