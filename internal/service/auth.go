package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemarkapp/pagemark-server/internal/auth"
	"github.com/pagemarkapp/pagemark-server/internal/domain"
	domainerrors "github.com/pagemarkapp/pagemark-server/internal/errors"
	"github.com/pagemarkapp/pagemark-server/internal/id"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

// AuthService handles registration and the credential gate.
//
// The credential is the opaque sync key presented in request headers; the
// service never sees a plaintext password and never issues tokens.
type AuthService struct {
	store             store.Store
	allowRegistration bool
	logger            *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, allowRegistration bool, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:             store,
		allowRegistration: allowRegistration,
		logger:            logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

// Register creates a new sync account when registration is enabled.
// Returns ErrRegistrationDisabled when the server does not accept new
// accounts, and ErrAlreadyExists when the username is taken — distinct
// codes so a client can tell the two apart.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	if !s.allowRegistration {
		return nil, domainerrors.RegistrationDisabled("registration is disabled")
	}

	keyHash, err := auth.HashKey(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:        userID,
		Username:  req.Username,
		KeyHash:   keyHash,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrUsernameExists) {
			return nil, domainerrors.AlreadyExists("username is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", userID, "username", user.Username)

	return user, nil
}

// Authenticate verifies a username and opaque sync key.
// Unknown user and wrong key return the same Forbidden error so responses
// cannot be used to enumerate accounts; a missing credential is Unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, username, key string) (*domain.User, error) {
	if username == "" || key == "" {
		return nil, domainerrors.Unauthorized("credentials required")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Forbidden("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyKey(user.KeyHash, key)
	if err != nil {
		return nil, fmt.Errorf("verify key: %w", err)
	}
	if !ok {
		return nil, domainerrors.Forbidden("invalid credentials")
	}

	return user, nil
}
