package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"astrografia/src/logger"
	"astrografia/src/models"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	Schema string
	sqlStore
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	schema := schemaName(cfg.Name)
	return &PostgresDB{
		Config: cfg,
		Schema: schema,
		sqlStore: sqlStore{
			Logger:            log,
			usersTable:        fmt.Sprintf(`"%s"."users"`, schema),
			perspectivesTable: fmt.Sprintf(`"%s"."perspectives"`, schema),
			rebind:            rebindDollar,
			isUnique:          postgresUnique,
		},
	}, nil
}

// -----------------------------------------------------------------------------

// schemaName lowercases the application name and keeps [a-z0-9_].
func schemaName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "astrografia"
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);
	`, d.usersTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			response_md TEXT,
			created_at BIGINT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES %s(id)
		);
	`, d.perspectivesTable, d.usersTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create perspectives: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_perspectives_user ON %s (user_id, created_at DESC)`, d.perspectivesTable)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to index perspectives: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func postgresUnique(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}
