package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/logger"
	"github.com/togglekeep/togglekeep/internal/models"
)

// RetentionService is an optional scheduled sweep of old audit records.
// The audited call path never deletes audit rows; this runs only when
// an operator configures a retention window.
type RetentionService struct {
	db   *gorm.DB
	days int
	cron *cron.Cron
}

func NewRetentionService(db *gorm.DB, days int) *RetentionService {
	return &RetentionService{db: db, days: days}
}

// Start schedules the daily sweep. A zero or negative retention window
// disables the service entirely.
func (s *RetentionService) Start() error {
	if s.days <= 0 {
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@daily", func() {
		if err := s.Sweep(); err != nil {
			logger.Log().WithError(err).Error("audit retention sweep failed")
		}
	}); err != nil {
		return err
	}
	s.cron.Start()

	logger.WithFields(map[string]interface{}{"days": s.days}).Info("audit retention sweep scheduled")
	return nil
}

// Stop halts the scheduler, if one was started.
func (s *RetentionService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep deletes audit records older than the retention window.
func (s *RetentionService) Sweep() error {
	cutoff := time.Now().AddDate(0, 0, -s.days)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.WithFields(map[string]interface{}{"deleted": result.RowsAffected}).Info("audit retention sweep completed")
	}
	return nil
}
