package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/store"
)

const (
	inviteCodeLength = 8
	inviteAttempts   = 3
)

// InviteStore captures the persistence operations needed by the invite service.
type InviteStore interface {
	CreateInvite(ctx context.Context, invite *model.InviteCode) error
}

// InviteService mints single-use invite codes.
type InviteService struct {
	store    InviteStore
	generate func() string
	logger   *slog.Logger
}

// NewInviteService constructs an invite service.
func NewInviteService(s InviteStore, logger *slog.Logger) *InviteService {
	return &InviteService{store: s, generate: newInviteCode, logger: defaultLogger(logger)}
}

// Mint creates a new invite code on behalf of a staff principal.
func (s *InviteService) Mint(ctx context.Context, p Principal) (*model.InviteCode, error) {
	if err := requireStaff(p); err != nil {
		return nil, err
	}
	return s.MintCode(ctx)
}

// MintCode creates a new invite code without an acting principal, for operator tooling.
func (s *InviteService) MintCode(ctx context.Context) (invite *model.InviteCode, err error) {
	logger := serviceLogger(ctx, s.logger, "InviteService", "MintCode")
	defer func() {
		logOutcome(ctx, logger, err, "invite code minted", "failed to mint invite code")
	}()

	for attempt := 0; attempt < inviteAttempts; attempt++ {
		invite = &model.InviteCode{Code: s.generate()}
		err = s.store.CreateInvite(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no unique invite code after %d attempts: %w", inviteAttempts, err)
}

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:inviteCodeLength])
}
