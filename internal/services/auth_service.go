package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/logger"
	"github.com/togglekeep/togglekeep/internal/metrics"
	"github.com/togglekeep/togglekeep/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidRole        = errors.New("invalid role")
)

// AuthorizationResult is returned on a successful login.
type AuthorizationResult struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService validates credentials, issues tokens and registers users.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Login verifies the credentials against the active user with that
// username and issues a bearer token. Missing, inactive and
// wrong-password cases all return ErrInvalidCredentials so that login
// responses do not leak account existence or state.
func (s *AuthService) Login(username, password string) (*AuthorizationResult, error) {
	user, err := s.GetActiveUser(username)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.IncLoginFailure()
			logger.WithFields(map[string]interface{}{"username": username}).Warn("login rejected")
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		metrics.IncLoginFailure()
		logger.WithFields(map[string]interface{}{"username": username}).Warn("login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	metrics.IncLogin()
	return &AuthorizationResult{
		Username:  user.Username,
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Register stores a new active user with a hashed password. The role
// defaults to "user" when empty. Duplicate usernames are rejected
// regardless of the existing account's active state.
func (s *AuthService) Register(username, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	var existing models.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		UUID:     uuid.NewString(),
		Username: username,
		Role:     role,
		Active:   true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{"username": username, "role": role}).Info("user registered")
	return &user, nil
}

// GetActiveUser returns the active user with the given username.
// Inactive accounts are excluded from the lookup, so they fail exactly
// like missing ones.
func (s *AuthService) GetActiveUser(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? AND active = ?", username, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}
