package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cinematch/cinematch/internal/config"
)

// NewDB initializes the database connection using DSN from config.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// AutoMigrate ensures schema is in sync with models.
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// Migrate applies the schema for every model. Shared by the server, the
// seeder and the test suites (which run it against in-memory SQLite).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Friendship{},
		&Interest{},
		&UserInterest{},
		&MatchSession{},
		&MatchParticipant{},
		&MatchVote{},
		&MatchResult{},
	)
}
