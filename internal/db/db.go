package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resource-booking-backend/config"
	"resource-booking-backend/internal/booking"
	"resource-booking-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite has a single writer; one connection keeps transactions from
		// failing with "database is locked" instead of waiting.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.Driver == "postgres" && cfg.EnableExclusionConstraint {
		slog.Info("applying reservation exclusion constraint")
		if err := applyExclusionDDL(db); err != nil {
			slog.Warn("failed to apply exclusion constraint; continuing with application-level locking only", "error", err)
		}
	}

	slog.Info("database initialization complete", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	slog.Info("running database migrations")
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	if err := db.Exec(userEmailIndexDDL()).Error; err != nil {
		return fmt.Errorf("create %s: %w", model.UserEmailIndex, err)
	}
	return nil
}

// userEmailIndexDDL keeps emails unique ignoring case. Empty emails are exempt.
func userEmailIndexDDL() string {
	return "CREATE UNIQUE INDEX IF NOT EXISTS " + model.UserEmailIndex + " ON users (LOWER(email)) WHERE email <> '';"
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// ExclusionConstraintName names the PostgreSQL constraint that rejects
// overlapping blocking reservations of one resource.
const ExclusionConstraintName = "reservations_no_overlap"

func exclusionDDL() []string {
	codes := booking.BlockingStatusCodes()
	quoted := make([]string, len(codes))
	for i, code := range codes {
		quoted[i] = "'" + code + "'"
	}

	return []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		"ALTER TABLE reservations DROP CONSTRAINT IF EXISTS reservations_period_valid;",
		"ALTER TABLE reservations ADD CONSTRAINT reservations_period_valid CHECK (start_at < end_at);",

		// Half-open ranges match booking.Overlaps: touching reservations are allowed.
		"ALTER TABLE reservations DROP CONSTRAINT IF EXISTS " + ExclusionConstraintName + ";",
		"ALTER TABLE reservations ADD CONSTRAINT " + ExclusionConstraintName + " " +
			"EXCLUDE USING GIST (resource_id WITH =, tstzrange(start_at, end_at, '[)') WITH &&) " +
			"WHERE (status IN (" + strings.Join(quoted, ", ") + "));",
	}
}

func applyExclusionDDL(db *gorm.DB) error {
	for _, ddl := range exclusionDDL() {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
