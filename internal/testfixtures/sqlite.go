// Package testfixtures provides shared harnesses for tests above the store.
package testfixtures

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resource-booking-backend/internal/auth"
	"resource-booking-backend/internal/db"
	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/store"
)

// Password is the plain-text password of every seeded user.
const Password = "correct-horse-battery"

// NewSQLiteStore returns a store over a private, migrated in-memory database
// that is closed when the test ends.
func NewSQLiteStore(tb testing.TB) *store.GormStore {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		tb.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gormDB); err != nil {
		tb.Fatalf("failed to migrate: %v", err)
	}
	return store.NewGormStore(gormDB)
}

// SeedUser creates a user whose password is Password.
func SeedUser(tb testing.TB, s *store.GormStore, username string, staff bool) *model.User {
	tb.Helper()

	hash, err := auth.HashPassword(Password)
	if err != nil {
		tb.Fatalf("failed to hash password: %v", err)
	}
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: hash, IsStaff: staff}
	if err := s.CreateUser(context.Background(), user); err != nil {
		tb.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

// SeedResource creates an active resource.
func SeedResource(tb testing.TB, s *store.GormStore, name string, capacity int) *model.Resource {
	tb.Helper()

	resource := &model.Resource{Name: name, Capacity: capacity, Active: true}
	if err := s.CreateResource(context.Background(), resource); err != nil {
		tb.Fatalf("failed to seed resource %s: %v", name, err)
	}
	return resource
}
