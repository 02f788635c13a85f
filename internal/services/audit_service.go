package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/metrics"
	"github.com/togglekeep/togglekeep/internal/models"
)

// ErrActorNotFound means the resolved actor name has no user record.
// Any authenticated call should be attributable, so this is an internal
// invariant violation and fails the whole mutating call.
var ErrActorNotFound = errors.New("audit actor not found")

// AuditService appends immutable audit records attributed to the
// request actor.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends one audit row inside tx. It runs in the same
// transaction as the mutation it describes, so a failure here rolls
// the mutation back as well.
func (s *AuditService) Record(ctx context.Context, tx *gorm.DB, entityType, entityID string, action models.AuditAction, oldValue *string, newValue string) error {
	username := CurrentUsername(ctx)

	var actor models.User
	if err := tx.Where("username = ?", username).First(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrActorNotFound, username)
		}
		return err
	}

	record := models.AuditLog{
		UUID:       uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
		ActorName:  actor.Username,
		ActorID:    actor.UUID,
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}

	metrics.IncAuditRecord()
	return nil
}
