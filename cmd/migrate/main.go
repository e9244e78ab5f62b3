package main

import (
	"database/sql"
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/database"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	if *rollback {
		if err := m.Steps(-1); err != nil {
			log.Fatalf("failed to roll back migration: %v", err)
		}
		log.Println("Successfully rolled back the last migration")
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("failed to read migration version: %v", err)
	}
	log.Printf("All migrations applied successfully (version %d, dirty %t)", version, dirty)
}
