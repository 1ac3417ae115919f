package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"astrografia/src/logger"
	"astrografia/src/models"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type AsyncSQLiteDB struct {
	Config *models.MConfig
	sqlStore
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		sqlStore: sqlStore{
			Logger:            log,
			usersTable:        "users",
			perspectivesTable: "perspectives",
			rebind:            rebindNone,
			isUnique:          sqliteUnique,
		},
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	// One connection keeps PRAGMAs and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		d.Logger.Warning("Failed to enable foreign keys: %v", err)
	}

	if err := d.createTables(); err != nil {
		return err
	}
	d.Logger.Info("SQLite initialized at %s", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS perspectives (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			response_md TEXT,
			created_at INTEGER NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create perspectives: %w", err)
	}

	query = `CREATE INDEX IF NOT EXISTS idx_perspectives_user ON perspectives (user_id, created_at DESC)`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to index perspectives: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func sqliteUnique(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
