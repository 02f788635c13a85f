package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/metrics"
	"github.com/togglekeep/togglekeep/internal/models"
)

var (
	ErrFlagNotFound = errors.New("feature flag not found or not active")
	ErrFlagKeyTaken = errors.New("feature flag key already taken")
	ErrFlagInvalid  = errors.New("feature flag key and name are required")
)

// FlagInput carries caller-supplied flag fields. Pointer fields
// distinguish "absent" from an explicit false.
type FlagInput struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	Value       *bool  `json:"value"`
	Active      *bool  `json:"active"`
}

// FlagService implements the feature flag operations. Every mutation
// runs through the auditor so a before/after record is written in the
// same transaction.
type FlagService struct {
	db      *gorm.DB
	auditor *Auditor
	notify  *NotificationService
}

func NewFlagService(db *gorm.DB, auditor *Auditor, notify *NotificationService) *FlagService {
	return &FlagService{db: db, auditor: auditor, notify: notify}
}

// GetAll lists flags. With a tag it returns only active flags carrying
// that tag; without one it returns everything.
func (s *FlagService) GetAll(tag string) ([]models.FeatureFlag, error) {
	var flags []models.FeatureFlag
	query := s.db.Order("key")
	if tag != "" {
		query = query.Where("tag = ? AND active = ?", tag, true)
	}
	if err := query.Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

// GetByKey returns the active flag with the given key.
func (s *FlagService) GetByKey(key string) (*models.FeatureFlag, error) {
	return activeFlagByKey(s.db, key)
}

// Create stores a new flag. The key must be unused by any flag, active
// or not. Value defaults to false and Active to true when absent.
func (s *FlagService) Create(ctx context.Context, input FlagInput) (*models.FeatureFlag, error) {
	if input.Key == "" || input.Name == "" {
		return nil, ErrFlagInvalid
	}

	result, err := s.auditor.Execute(ctx, models.EntityTypeFeatureFlag, models.AuditActionCreate, "", func(tx *gorm.DB) (any, error) {
		var existing models.FeatureFlag
		err := tx.Where("key = ?", input.Key).First(&existing).Error
		if err == nil {
			return nil, fmt.Errorf("%w: %s", ErrFlagKeyTaken, input.Key)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		flag := models.FeatureFlag{
			Key:         input.Key,
			Name:        input.Name,
			Tag:         input.Tag,
			Description: input.Description,
			Value:       boolOr(input.Value, false),
			Active:      boolOr(input.Active, true),
		}
		if err := tx.Create(&flag).Error; err != nil {
			return nil, err
		}
		return &flag, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.FeatureFlag), nil
}

// Update edits the active flag with the given key. Empty string fields
// and nil booleans leave the current value untouched.
func (s *FlagService) Update(ctx context.Context, key string, input FlagInput) (*models.FeatureFlag, error) {
	result, err := s.auditor.Execute(ctx, models.EntityTypeFeatureFlag, models.AuditActionUpdate, key, func(tx *gorm.DB) (any, error) {
		flag, err := activeFlagByKey(tx, key)
		if err != nil {
			return nil, err
		}

		if input.Name != "" {
			flag.Name = input.Name
		}
		if input.Tag != "" {
			flag.Tag = input.Tag
		}
		if input.Description != "" {
			flag.Description = input.Description
		}
		if input.Value != nil {
			flag.Value = *input.Value
		}
		if input.Active != nil {
			flag.Active = *input.Active
		}

		if err := tx.Save(flag).Error; err != nil {
			return nil, err
		}
		return flag, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.FeatureFlag), nil
}

// Delete soft-deletes the active flag with the given key by clearing
// its Active bit, keeping it resolvable from audit history.
func (s *FlagService) Delete(ctx context.Context, key string) (*models.FeatureFlag, error) {
	result, err := s.auditor.Execute(ctx, models.EntityTypeFeatureFlag, models.AuditActionDelete, key, func(tx *gorm.DB) (any, error) {
		flag, err := activeFlagByKey(tx, key)
		if err != nil {
			return nil, err
		}
		flag.Active = false
		if err := tx.Save(flag).Error; err != nil {
			return nil, err
		}
		return flag, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.FeatureFlag), nil
}

// Toggle sets the boolean value of the active flag with the given key.
func (s *FlagService) Toggle(ctx context.Context, key string, value bool) (*models.FeatureFlag, error) {
	result, err := s.auditor.Execute(ctx, models.EntityTypeFeatureFlag, models.AuditActionToggle, key, func(tx *gorm.DB) (any, error) {
		flag, err := activeFlagByKey(tx, key)
		if err != nil {
			return nil, err
		}
		flag.Value = value
		if err := tx.Save(flag).Error; err != nil {
			return nil, err
		}
		return flag, nil
	})
	if err != nil {
		return nil, err
	}

	flag := result.(*models.FeatureFlag)
	metrics.IncToggle()
	s.notify.FlagChanged(flag.Key, flag.Value)
	return flag, nil
}

// ToggleByTag sets the value of every active flag carrying tag and
// returns the affected flags. An empty result is not an error: the
// audit record then simply captures an empty set.
func (s *FlagService) ToggleByTag(ctx context.Context, tag string, value bool) ([]models.FeatureFlag, error) {
	result, err := s.auditor.Execute(ctx, models.EntityTypeFeatureFlag, models.AuditActionToggleByTag, tag, func(tx *gorm.DB) (any, error) {
		flags, err := activeFlagsByTag(tx, tag)
		if err != nil {
			return nil, err
		}
		for i := range flags {
			flags[i].Value = value
			if err := tx.Save(&flags[i]).Error; err != nil {
				return nil, err
			}
		}
		return flags, nil
	})
	if err != nil {
		return nil, err
	}

	flags := result.([]models.FeatureFlag)
	metrics.IncToggle()
	for _, flag := range flags {
		s.notify.FlagChanged(flag.Key, flag.Value)
	}
	return flags, nil
}

// activeFlagByKey fetches the active flag with the given key.
func activeFlagByKey(tx *gorm.DB, key string) (*models.FeatureFlag, error) {
	var flag models.FeatureFlag
	if err := tx.Where("key = ? AND active = ?", key, true).First(&flag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFlagNotFound, key)
		}
		return nil, err
	}
	return &flag, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
