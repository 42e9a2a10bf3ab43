package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQLite opens a local database file without applying the remote schema.
func OpenSQLite(dbPath string, logger *logrus.Logger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return database, nil
}

// OpenRemote connects to the table store behind the remote backend and brings its
// schema up to date. Postgres URLs go through the postgres driver; anything else is
// treated as a SQLite file path.
func OpenRemote(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	var (
		database *gorm.DB
		err      error
	)
	if isPostgresDSN(dsn) {
		database, err = gorm.Open(postgres.Open(dsn), gormConfig(logger))
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	} else {
		database, err = OpenSQLite(dsn, logger)
		if err != nil {
			return nil, err
		}
	}

	if err := applyEmbeddedMigrations(database, logger); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}
	return database, nil
}

func isPostgresDSN(dsn string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(trimmed, "postgres://") ||
		strings.HasPrefix(trimmed, "postgresql://") ||
		strings.Contains(trimmed, "host=")
}

func gormConfig(logger *logrus.Logger) *gorm.Config {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			logger,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}
