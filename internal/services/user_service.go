package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserEditInput carries caller-supplied user fields. Empty strings and
// nil booleans leave the current value untouched.
type UserEditInput struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
	Active   *bool  `json:"active"`
}

// UserService implements user administration. Mutations run through the
// auditor under the USER entity type, which has no registered capture
// policy, so they execute transactionally but unaudited.
type UserService struct {
	db      *gorm.DB
	auditor *Auditor
}

func NewUserService(db *gorm.DB, auditor *Auditor) *UserService {
	return &UserService{db: db, auditor: auditor}
}

// GetAll lists every user, active or not.
func (s *UserService) GetAll() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Edit updates an existing user's username, role, password or active
// state.
func (s *UserService) Edit(ctx context.Context, id uint, input UserEditInput) (*models.User, error) {
	if input.Role != "" && !models.ValidRole(input.Role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, input.Role)
	}

	result, err := s.auditor.Execute(ctx, models.EntityTypeUser, models.AuditActionUpdate, "", func(tx *gorm.DB) (any, error) {
		user, err := userByID(tx, id)
		if err != nil {
			return nil, err
		}

		if input.Username != "" {
			user.Username = input.Username
		}
		if input.Role != "" {
			user.Role = input.Role
		}
		if input.Active != nil {
			user.Active = *input.Active
		}
		if input.Password != "" {
			if err := user.SetPassword(input.Password); err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
		}

		if err := tx.Save(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// Deactivate soft-deletes a user by clearing the Active bit. The row
// stays so past audit records keep resolving their actor.
func (s *UserService) Deactivate(ctx context.Context, id uint) (*models.User, error) {
	result, err := s.auditor.Execute(ctx, models.EntityTypeUser, models.AuditActionDelete, "", func(tx *gorm.DB) (any, error) {
		user, err := userByID(tx, id)
		if err != nil {
			return nil, err
		}
		user.Active = false
		if err := tx.Save(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

func userByID(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}
