package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	embeddedmigrations "github.com/terraincognita07/dentclinic/migrations"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)
var addColumnStatementPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)

// schemaMigration is one numbered SQL file. The files are written in the subset of
// SQL that Postgres and SQLite both accept, so the remote store runs the same
// sequence whichever driver OpenRemote picked.
type schemaMigration struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

// migrationRecord is a row of the schema_migrations ledger.
type migrationRecord struct {
	Version   string    `gorm:"column:version;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (migrationRecord) TableName() string {
	return "schema_migrations"
}

// migrationRunner brings a remote database up to the embedded schema. Each file
// runs in its own transaction together with its ledger row.
type migrationRunner struct {
	database *gorm.DB
	logger   logrus.FieldLogger
	files    fs.FS
}

func applyEmbeddedMigrations(database *gorm.DB, logger *logrus.Logger) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runner := migrationRunner{database: database, logger: logger, files: embeddedmigrations.Files}
	return runner.run()
}

func (runner migrationRunner) run() error {
	if err := runner.database.AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("prepare schema_migrations: %w", err)
	}

	pending, err := loadMigrations(runner.files)
	if err != nil {
		return err
	}

	applied, err := runner.appliedVersions()
	if err != nil {
		return err
	}

	for _, migration := range pending {
		if _, done := applied[migration.Version]; done {
			continue
		}
		if err := runner.apply(migration); err != nil {
			return err
		}
		runner.logger.WithFields(logrus.Fields{
			"migration": migration.Name,
			"dialect":   runner.database.Dialector.Name(),
		}).Info("applied schema migration")
	}
	return nil
}

func (runner migrationRunner) appliedVersions() (map[string]struct{}, error) {
	versions := make([]string, 0)
	if err := runner.database.Model(&migrationRecord{}).Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("load applied migration versions: %w", err)
	}

	set := make(map[string]struct{}, len(versions))
	for _, version := range versions {
		set[version] = struct{}{}
	}
	return set, nil
}

func (runner migrationRunner) apply(migration schemaMigration) error {
	return runner.database.Transaction(func(tx *gorm.DB) error {
		statements := splitSQLStatements(migration.SQL)
		if len(statements) == 0 {
			return fmt.Errorf("migration %s: %w", migration.Name, errEmptyMigration)
		}

		for _, statement := range statements {
			skip, err := shouldSkipStatement(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if skip {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		record := migrationRecord{Version: migration.Version, Name: migration.Name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

var errEmptyMigration = errors.New("migration has no SQL statements")

// loadMigrations reads NNNN_name.sql files from fsys in version order.
func loadMigrations(fsys fs.FS) ([]schemaMigration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]schemaMigration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(fileName)
		if len(matches) != 2 {
			continue
		}

		version := matches[1]
		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", fileName, err)
		}
		if existing, exists := seen[version]; exists {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, existing, fileName)
		}
		seen[version] = fileName

		rawSQL, err := fs.ReadFile(fsys, fileName)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fileName, err)
		}
		migrations = append(migrations, schemaMigration{Version: version, Order: order, Name: fileName, SQL: string(rawSQL)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

func splitSQLStatements(sqlText string) []string {
	rawParts := strings.Split(sqlText, ";")
	statements := make([]string, 0, len(rawParts))
	for _, rawPart := range rawParts {
		if statement := strings.TrimSpace(rawPart); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// shouldSkipStatement reports whether an ADD COLUMN targets a column that already
// exists. SQLite has no ADD COLUMN IF NOT EXISTS, so the check goes through the
// GORM migrator of whichever driver is open.
func shouldSkipStatement(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatementPattern.FindStringSubmatch(strings.TrimSpace(statement))
	if len(matches) != 3 {
		return false, nil
	}

	tableName := unquoteIdentifier(matches[1])
	columnName := unquoteIdentifier(matches[2])
	if !database.Migrator().HasTable(tableName) {
		return false, fmt.Errorf("add column %s to missing table %s", columnName, tableName)
	}
	return database.Migrator().HasColumn(tableName, columnName), nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
