package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

func NewDatabaseClient(dsn string) (*gorm.DB, error) {
	return openDatabase(dsn, log.New(os.Stderr, "\r\n", log.LstdFlags))
}

func openDatabase(dsn string, out logger.Writer) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(out),
	})
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}

	if err := db.AutoMigrate(&model.Record{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// An absent key is an ordinary read result for the record store, so
// ErrRecordNotFound is not logged.
func newGormLogger(out logger.Writer) logger.Interface {
	return logger.New(out, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
