// Package database opens the relational store and keeps its schema current.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database described by cfg and tunes the pool.
// SQLite files get their parent directory created and WAL journaling enabled.
func Open(cfg config.DatabaseConfig, log logging.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite, "":
		if !isMemoryDSN(cfg.DSN) {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), models.PermissionDirectory); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, cfg.LogMode),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 1
	}
	if cfg.Driver != config.DriverPostgres && isMemoryDSN(cfg.DSN) {
		// every connection to a private in-memory database sees its own copy
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(cfg.MaxIdleConns, maxOpen))
	if !isMemoryDSN(cfg.DSN) {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.WithFields(
		logging.Field{Key: "driver", Value: cfg.Driver},
		logging.Field{Key: "max_open_conns", Value: maxOpen},
	).Debug("Database opened")

	return db, nil
}

// OpenInMemory opens a migrated private SQLite database identified by name.
// Distinct names give isolated databases, which keeps tests independent.
func OpenInMemory(name string, log logging.Logger) (*gorm.DB, error) {
	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", sanitizeName(name)),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

// sqlitePragmas are applied by the driver to every new connection. Options
// already present in the DSN win.
var sqlitePragmas = []struct {
	key, value string
	fileOnly   bool
}{
	{key: "_busy_timeout", value: "5000"},
	{key: "_journal_mode", value: "WAL", fileOnly: true},
	{key: "_synchronous", value: "NORMAL", fileOnly: true},
	{key: "_txlock", value: "immediate", fileOnly: true},
}

// sqliteDSN appends the connection pragmas to dsn as driver options.
func sqliteDSN(dsn string) string {
	memory := isMemoryDSN(dsn)
	var params []string
	for _, p := range sqlitePragmas {
		if p.fileOnly && memory {
			continue
		}
		if strings.Contains(dsn, p.key+"=") {
			continue
		}
		params = append(params, p.key+"="+p.value)
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}

// gormWriter routes gorm's SQL trace into the application logger.
type gormWriter struct {
	log logging.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func newGormLogger(log logging.Logger, logMode bool) logger.Interface {
	level := logger.Silent
	if logMode {
		level = logger.Info
	}
	return logger.New(gormWriter{log: log}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
