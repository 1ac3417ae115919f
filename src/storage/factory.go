package storage

import (
	"fmt"

	"astrografia/src/interfaces"
	"astrografia/src/logger"
	"astrografia/src/models"
)

// NewDatabase returns the backend selected by storage.db_type. The caller
// still has to Initialize it.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.Storage.DBType {
	case "sqlite", "":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	}
	return nil, fmt.Errorf("unsupported db_type: %s", cfg.Storage.DBType)
}
