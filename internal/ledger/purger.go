package ledger

import (
	"context"
	"time"

	"github.com/sdko-org/media-vault/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RetentionPurger deletes view log rows older than the retention horizon.
// It stands in for a storage-level TTL policy; application code never reads
// entries that old.
type RetentionPurger struct {
	logger    *logrus.Logger
	db        *gorm.DB
	retention time.Duration
	interval  time.Duration
}

func NewRetentionPurger(logger *logrus.Logger, db *gorm.DB, retention time.Duration) *RetentionPurger {
	return &RetentionPurger{
		logger:    logger,
		db:        db,
		retention: retention,
		interval:  time.Hour,
	}
}

func (p *RetentionPurger) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log := p.logger.WithField("component", "view_log_purger")
	log.WithField("retention", p.retention).Info("Starting view log purger")

	for {
		select {
		case <-ticker.C:
			p.purgeExpired(ctx, log)
		case <-ctx.Done():
			log.Info("Stopping view log purger")
			return
		}
	}
}

func (p *RetentionPurger) purgeExpired(ctx context.Context, log *logrus.Entry) {
	cutoff := time.Now().UTC().Add(-p.retention)

	result := p.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ViewLog{})
	if result.Error != nil {
		log.WithError(result.Error).Error("View log purge failed")
		return
	}

	if result.RowsAffected > 0 {
		log.WithFields(logrus.Fields{
			"deleted": result.RowsAffected,
			"cutoff":  cutoff,
		}).Info("Purged expired view logs")
	}
}
