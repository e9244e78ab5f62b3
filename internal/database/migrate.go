package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/pageza/kodawari/backend/internal/model"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Models lists every table owned by the application
func Models() []any {
	return []any{
		&model.Recipe{},
		&model.Label{},
		&model.RecipeLabel{},
		&model.UserProfile{},
		&model.PurchaseRecord{},
	}
}

// RunMigrations brings the schema up to date. SQLite (tests) uses gorm
// auto-migration; postgres applies the embedded SQL migrations.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		return db.AutoMigrate(Models()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	m, err := NewMigrator(sqlDB)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// NewMigrator builds a golang-migrate instance over the embedded migrations.
// Closing the returned migrator closes sqlDB.
func NewMigrator(sqlDB *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}
