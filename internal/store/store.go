package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"resource-booking-backend/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrDuplicateEmail is returned alongside ErrDuplicate when the violated
	// constraint is the case-insensitive user email index.
	ErrDuplicateEmail = errors.New("store: duplicate email")
	// ErrOverlap is returned when the database exclusion constraint rejects a reservation.
	ErrOverlap = errors.New("store: overlapping reservation")
	// ErrInviteUnavailable is returned when an invite code is unknown or already used.
	ErrInviteUnavailable = errors.New("store: invite code unavailable")
)

// PostgreSQL error codes.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// GormStore implements all persistence operations using GORM.
type GormStore struct {
	db    *gorm.DB
	locks *keyedMutex
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, locks: newKeyedMutex()}
}

// DB exposes the underlying connection.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// translateError maps driver errors onto the store sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == model.UserEmailIndex {
				return fmt.Errorf("%w: %w", ErrDuplicate, ErrDuplicateEmail)
			}
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgExclusionViolation:
			return ErrOverlap
		}
	}

	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		// SQLite names expression indexes by index name.
		if strings.Contains(msg, model.UserEmailIndex) {
			return fmt.Errorf("%w: %w", ErrDuplicate, ErrDuplicateEmail)
		}
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
