package models

import (
	"time"
)

// FeatureFlag is a named boolean toggle. Flags are soft-deleted via
// Active so their history stays resolvable from audit records; most
// lookups only consider active flags.
type FeatureFlag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Key         string    `json:"key" gorm:"uniqueIndex"`
	Name        string    `json:"name"`
	Tag         string    `json:"tag,omitempty" gorm:"index"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Value       bool      `json:"value"`
	Active      bool      `json:"active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
