package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/jroneil/MI-Tool/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RegisterInput is the body of a register request
type RegisterInput struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Name     *string `json:"name"`
}

// LoginInput accepts the OAuth2 password form's username or a plain email
type LoginInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Identity returns the login identifier, preferring username
func (in LoginInput) Identity() string {
	if in.Username != "" {
		return in.Username
	}
	return in.Email
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService handles accounts and tokens
type AuthService struct {
	users      ports.UserRepository
	workspaces ports.WorkspaceRepository
	tx         ports.TxManager
	tokens     *auth.TokenManager
}

// NewAuthService creates a new AuthService
func NewAuthService(users ports.UserRepository, workspaces ports.WorkspaceRepository, tx ports.TxManager, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, workspaces: workspaces, tx: tx, tokens: tokens}
}

// personalWorkspaceName is "<local-part>'s Workspace"
func personalWorkspaceName(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	return local + "'s Workspace"
}

// Register creates an account together with a personal workspace the user owns
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if !auth.IsValidEmail(email) {
		return nil, errors.NewValidationError("email", "invalid email address")
	}
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return nil, errors.NewValidationError("password", err.Error())
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to look up email: %w", err)
		}
		if existing != nil {
			return errors.NewBadRequestConflict("User", "Email already registered")
		}

		user = &models.User{Email: email, Name: in.Name, PasswordHash: hash}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		name := personalWorkspaceName(email)
		taken, err := s.workspaces.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check workspace name: %w", err)
		}
		if taken != nil {
			name = fmt.Sprintf("%s (%d)", name, user.ID)
		}

		_, err = createOwnedWorkspace(ctx, s.workspaces, user.ID, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("✅ user registered")
	return user, nil
}

// Login checks credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Identity()))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.VerifyPassword(in.Password, user.PasswordHash) {
		return nil, errors.NewUnauthorizedError("Incorrect username or password")
	}

	token, err := s.tokens.GenerateToken(auth.UserSession{ID: user.ID, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("Could not validate credentials")
	}
	return user, nil
}

// Authenticate validates a bearer token and returns its session
func (s *AuthService) Authenticate(token string) (*auth.UserSession, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, errors.NewUnauthorizedError("Could not validate credentials")
	}
	return &claims.User, nil
}
