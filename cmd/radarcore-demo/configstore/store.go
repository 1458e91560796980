// Package configstore is the demo runtime's persistence for the
// installation-settings document spec.md §6 says the core only reads/writes
// in memory ("persisting it to disk ... is the external runtime's job").
// Modeled on the teacher's internal/db.DB: a *sql.DB wrapper with
// golang-migrate-driven schema migrations
// (_examples/banshee-data-velocity.report/internal/db/migrate.go), backed
// by modernc.org/sqlite instead of a C cgo driver.
package configstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/radar-core/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists a single config.InstallationConfig document to a SQLite
// file, the demo's stand-in for spec.md §6's "runtime supplies a
// configuration KV store" contract.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite file at path and migrates
// its schema to the latest version.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("configstore: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("configstore: iofs source: %w", err)
	}
	dbDriver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("configstore: sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("configstore: migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("configstore: migrate up: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (*migrateLogger) Printf(format string, v ...interface{}) { log.Printf("[configstore] "+format, v...) }
func (*migrateLogger) Verbose() bool                          { return false }

// Load returns the persisted installation config, or a fresh empty one if
// none has been saved yet.
func (s *Store) Load() (*config.InstallationConfig, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM installation_config WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return config.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("configstore: load: %w", err)
	}
	cfg := config.New()
	if err := cfg.Unmarshal([]byte(doc)); err != nil {
		return nil, fmt.Errorf("configstore: unmarshal: %w", err)
	}
	return cfg, nil
}

// Save persists cfg, replacing whatever document was stored before.
func (s *Store) Save(cfg *config.InstallationConfig) error {
	doc, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("configstore: marshal: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO installation_config (id, document) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document`, string(doc))
	if err != nil {
		return fmt.Errorf("configstore: save: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
