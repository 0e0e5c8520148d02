package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

var errPasswordTooLong = &core.ValidationError{Field: "password", Reason: "too long (max 72 bytes)"}

// AuthService registers accounts and checks their credentials.
type AuthService struct {
	store  AccountStore
	cost   int
	logger *log.Logger
}

// NewAuthService creates an auth service hashing with the given bcrypt cost.
func NewAuthService(store AccountStore, cost int, logger *log.Logger) *AuthService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = log.Default(log.ComponentAuth)
	}
	return &AuthService{store: store, cost: cost, logger: logger.WithComponent(log.ComponentAuth)}
}

// Register creates an account and returns its id. Usernames are unique and
// case-sensitive.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, core.ErrEmptyUsername
	}
	if password == "" {
		return 0, core.ErrEmptyPassword
	}
	if len(password) > 72 {
		return 0, errPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	acct, err := s.store.CreateAccount(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			s.logger.WarnContext(ctx, "Username already registered",
				log.FieldOperation, log.OpRegister, log.FieldUsername, username, log.FieldErrorType, log.ErrorTypeConflict)
		}
		return 0, fmt.Errorf("register %q: %w", username, err)
	}

	s.logger.InfoContext(ctx, "Account registered",
		log.FieldOperation, log.OpRegister, log.FieldUsername, username, log.FieldAccountID, acct.ID)
	return acct.ID, nil
}

// Authenticate returns the id of the account matching username and
// password. Unknown users and wrong passwords both yield
// core.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	acct, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.logger.WarnContext(ctx, "Login failed", log.FieldOperation, log.OpLogin, log.FieldUsername, username)
			return 0, core.ErrInvalidCredentials
		}
		return 0, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login failed", log.FieldOperation, log.OpLogin, log.FieldUsername, username)
		return 0, core.ErrInvalidCredentials
	}

	s.logger.DebugContext(ctx, "Login succeeded", log.FieldOperation, log.OpLogin, log.FieldAccountID, acct.ID)
	return acct.ID, nil
}
