package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/models"
)

// Operation is a mutating business operation. It receives the
// transaction it must run in and returns the affected entity (or a
// slice of entities for batch actions).
type Operation func(tx *gorm.DB) (any, error)

type policyKey struct {
	entityType string
	action     models.AuditAction
}

// captureState is what a capture policy hands to the audit writer.
type captureState struct {
	entityID string
	oldValue *string
	newValue string
	result   any
}

// captureFunc obtains pre/post snapshots and the affected identifiers
// around one invocation of run. The pre-snapshot is taken strictly
// before run executes and the post-snapshot strictly after it returns
// without error.
type captureFunc func(tx *gorm.DB, arg string, run Operation) (*captureState, error)

// capturePolicies maps (entityType, action) to the capture variant that
// knows how to identify and snapshot the affected rows. Entity types
// without an entry are not audited.
var capturePolicies = map[policyKey]captureFunc{
	{models.EntityTypeFeatureFlag, models.AuditActionCreate}:      captureCreate,
	{models.EntityTypeFeatureFlag, models.AuditActionUpdate}:      captureByKey,
	{models.EntityTypeFeatureFlag, models.AuditActionDelete}:      captureByKey,
	{models.EntityTypeFeatureFlag, models.AuditActionToggle}:      captureByKey,
	{models.EntityTypeFeatureFlag, models.AuditActionToggleByTag}: captureByTag,
}

// Auditor wraps mutating operations so that a before/after audit record
// is produced without the operation knowing about auditing.
type Auditor struct {
	db    *gorm.DB
	audit *AuditService
}

func NewAuditor(db *gorm.DB, audit *AuditService) *Auditor {
	return &Auditor{db: db, audit: audit}
}

// Execute runs op in a single transaction and, when a capture policy is
// registered for (entityType, action), records one audit row in that
// same transaction. arg is the operation's identifying argument: the
// flag key for UPDATE, DELETE and TOGGLE, the tag for TOGGLE_BY_TAG,
// unused for CREATE. When op fails, nothing is audited and the
// transaction rolls back; the error propagates unchanged.
func (a *Auditor) Execute(ctx context.Context, entityType string, action models.AuditAction, arg string, op Operation) (any, error) {
	policy, registered := capturePolicies[policyKey{entityType, action}]

	var result any
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if !registered {
			var err error
			result, err = op(tx)
			return err
		}

		state, err := policy(tx, arg, op)
		if err != nil {
			return err
		}
		result = state.result
		return a.audit.Record(ctx, tx, entityType, state.entityID, action, state.oldValue, state.newValue)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// captureCreate handles CREATE: no pre-snapshot; the created entity is
// re-fetched by the key found in the operation's result so the snapshot
// reflects persisted state.
func captureCreate(tx *gorm.DB, _ string, run Operation) (*captureState, error) {
	result, err := run(tx)
	if err != nil {
		return nil, err
	}

	created, ok := result.(*models.FeatureFlag)
	if !ok {
		return nil, fmt.Errorf("audit capture: unexpected CREATE result type %T", result)
	}

	persisted, err := flagByKey(tx, created.Key)
	if err != nil {
		return nil, err
	}
	newValue, err := snapshotJSON(persisted)
	if err != nil {
		return nil, err
	}

	return &captureState{
		entityID: strconv.FormatUint(uint64(persisted.ID), 10),
		newValue: newValue,
		result:   result,
	}, nil
}

// captureByKey handles UPDATE, DELETE and TOGGLE: the pre-snapshot is
// keyed by the call's first argument, the post-snapshot by the key of
// the operation's result. A missing pre-entity snapshots to the JSON
// null marker rather than failing; whether the key must exist is the
// wrapped operation's decision.
func captureByKey(tx *gorm.DB, key string, run Operation) (*captureState, error) {
	prior, err := flagByKey(tx, key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	oldValue, err := snapshotJSON(prior)
	if err != nil {
		return nil, err
	}

	result, err := run(tx)
	if err != nil {
		return nil, err
	}

	mutated, ok := result.(*models.FeatureFlag)
	if !ok {
		return nil, fmt.Errorf("audit capture: unexpected %T result for keyed action", result)
	}

	persisted, err := flagByKey(tx, mutated.Key)
	if err != nil {
		return nil, err
	}
	newValue, err := snapshotJSON(persisted)
	if err != nil {
		return nil, err
	}

	return &captureState{
		entityID: strconv.FormatUint(uint64(persisted.ID), 10),
		oldValue: &oldValue,
		newValue: newValue,
		result:   result,
	}, nil
}

// captureByTag handles TOGGLE_BY_TAG: snapshots are the full set of
// active flags carrying the tag, re-evaluated after the operation, and
// the entity id is the rendered list of affected identifiers.
func captureByTag(tx *gorm.DB, tag string, run Operation) (*captureState, error) {
	before, err := activeFlagsByTag(tx, tag)
	if err != nil {
		return nil, err
	}
	oldValue, err := snapshotJSON(before)
	if err != nil {
		return nil, err
	}

	result, err := run(tx)
	if err != nil {
		return nil, err
	}

	after, err := activeFlagsByTag(tx, tag)
	if err != nil {
		return nil, err
	}
	newValue, err := snapshotJSON(after)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(after))
	for i, flag := range after {
		ids[i] = strconv.FormatUint(uint64(flag.ID), 10)
	}

	return &captureState{
		entityID: "[" + strings.Join(ids, ", ") + "]",
		oldValue: &oldValue,
		newValue: newValue,
		result:   result,
	}, nil
}

// snapshotJSON renders the canonical audit snapshot of an entity. A nil
// entity serializes to the JSON null marker.
func snapshotJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize audit snapshot: %w", err)
	}
	return string(b), nil
}

// flagByKey fetches a flag by its natural key regardless of active
// state, so snapshots of soft-deleted flags stay resolvable.
func flagByKey(tx *gorm.DB, key string) (*models.FeatureFlag, error) {
	var flag models.FeatureFlag
	if err := tx.Where("key = ?", key).First(&flag).Error; err != nil {
		return nil, err
	}
	return &flag, nil
}

// activeFlagsByTag fetches all active flags carrying tag, ordered by id
// so batch audit records render deterministically. The slice is never
// nil: an empty set must snapshot as an empty list.
func activeFlagsByTag(tx *gorm.DB, tag string) ([]models.FeatureFlag, error) {
	flags := []models.FeatureFlag{}
	if err := tx.Where("tag = ? AND active = ?", tag, true).Order("id").Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}
