package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"resource-booking-backend/internal/auth"
	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/store"
)

const (
	maxUsernameLength     = 150
	duplicateEmailMessage = "A user with that email already exists."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// AccountStore captures the persistence operations needed by the account service.
type AccountStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	RedeemInvite(ctx context.Context, code string, userID int64, now time.Time) error
}

// RegisterInput captures the account creation fields.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	InviteCode string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AccountService registers users, signs them in and resolves tokens to principals.
type AccountService struct {
	store  AccountStore
	tokens *auth.Issuer
	now    func() time.Time
	logger *slog.Logger
}

// NewAccountService constructs an account service.
func NewAccountService(s AccountStore, tokens *auth.Issuer, now func() time.Time, logger *slog.Logger) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{store: s, tokens: tokens, now: now, logger: defaultLogger(logger)}
}

func (s *AccountService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// Register creates an account. A valid unused invite code grants staff
// rights; an invalid or used code is ignored and the account is still created.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (user *model.User, err error) {
	logger := s.loggerWith(ctx, "Register", "username", in.Username)
	defer func() {
		var attrs []any
		if user != nil {
			attrs = append(attrs, "user_id", user.ID, "is_staff", user.IsStaff)
		}
		logOutcome(ctx, logger, err, "account registered", "failed to register account", attrs...)
	}()

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	vErr := validateAccount(username, email, in.Password)
	if vErr.HasErrors() {
		return nil, vErr
	}
	if email != "" {
		taken, err := s.store.EmailTaken(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fieldError("email", duplicateEmailMessage)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user = &model.User{Username: username, Email: email, PasswordHash: hash}
	if err = s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, fieldError("email", duplicateEmailMessage)
		case errors.Is(err, store.ErrDuplicate):
			return nil, fieldError("username", "A user with that username already exists.")
		}
		return nil, err
	}

	if code := strings.TrimSpace(in.InviteCode); code != "" {
		if redeemErr := s.store.RedeemInvite(ctx, code, user.ID, s.now()); redeemErr != nil {
			logger.WarnContext(ctx, "invite code not redeemed", "error", redeemErr)
		} else {
			user.IsStaff = true
			logger.InfoContext(ctx, "invite code redeemed", "user_id", user.ID)
		}
	}
	return user, nil
}

// Login verifies credentials and issues a token.
func (s *AccountService) Login(ctx context.Context, username, password string) (session *Session, err error) {
	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		logOutcome(ctx, logger, err, "login succeeded", "login failed")
	}()

	if strings.TrimSpace(username) == "" || password == "" {
		vErr := &ValidationError{}
		if strings.TrimSpace(username) == "" {
			vErr.Add("username", "This field is required.")
		}
		if password == "" {
			vErr.Add("password", "This field is required.")
		}
		return nil, vErr
	}

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to the current state of its user.
func (s *AccountService) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}
	id, _ := claims.UserID()

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{}, err
	}
	return Principal{UserID: user.ID, Username: user.Username, Email: user.Email, IsStaff: user.IsStaff}, nil
}

func validateAccount(username, email, password string) *ValidationError {
	vErr := &ValidationError{}
	switch {
	case username == "":
		vErr.Add("username", "This field is required.")
	case len([]rune(username)) > maxUsernameLength:
		vErr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case !usernamePattern.MatchString(username):
		vErr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			vErr.Add("email", "Enter a valid email address.")
		}
	}
	for _, problem := range auth.PasswordProblems(password, username, email) {
		vErr.Add("password", problem)
	}
	return vErr
}
