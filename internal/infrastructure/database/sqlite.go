package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/niteshmahajan-63/thewell-checkout/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewInMemory opens a private, migrated SQLite database. Each call gets its
// own named shared-cache database, held on a single connection so
// concurrent writers serialise the way they would on a row lock.
func NewInMemory(log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(log, gormlogger.Silent, 0, true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db, log); err != nil {
		return nil, err
	}

	return db, nil
}
