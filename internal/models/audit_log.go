package models

import (
	"time"
)

// AuditAction identifies the kind of mutation an audit record captured.
type AuditAction string

const (
	AuditActionCreate      AuditAction = "CREATE"
	AuditActionUpdate      AuditAction = "UPDATE"
	AuditActionDelete      AuditAction = "DELETE"
	AuditActionToggle      AuditAction = "TOGGLE"
	AuditActionToggleByTag AuditAction = "TOGGLE_BY_TAG"
)

// Audited entity type tags. Only types with a registered capture policy
// produce audit records; the rest pass through the auditor untouched.
const (
	EntityTypeFeatureFlag = "FEATURE_FLAG"
	EntityTypeUser        = "USER"
)

// AuditLog is one immutable before/after record of an intercepted
// mutation. EntityID holds a single id, or a rendered id list for batch
// actions such as TOGGLE_BY_TAG. OldValue is nil for CREATE; a missing
// pre-entity is recorded as the JSON null marker instead.
type AuditLog struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UUID       string      `json:"uuid" gorm:"uniqueIndex"`
	EntityType string      `json:"entity_type" gorm:"index"`
	EntityID   string      `json:"entity_id"`
	Action     AuditAction `json:"action"`
	OldValue   *string     `json:"old_value" gorm:"type:text"`
	NewValue   string      `json:"new_value" gorm:"type:text"`
	ActorName  string      `json:"actor_name"`
	ActorID    string      `json:"actor_id"`
	CreatedAt  time.Time   `json:"created_at"`
}
