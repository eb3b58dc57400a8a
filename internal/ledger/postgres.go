package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sdko-org/media-vault/internal/models"
	"gorm.io/gorm"
)

// PostgresLedger stores view events in the media_view_logs table.
type PostgresLedger struct {
	db *gorm.DB
}

func NewPostgresLedger(db *gorm.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Insert(ctx context.Context, mediaID, clientIP string) (models.ViewLog, error) {
	entry := models.ViewLog{
		MediaID:   mediaID,
		ClientIP:  clientIP,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return models.ViewLog{}, fmt.Errorf("insert view log: %w", err)
	}
	return entry, nil
}

func (l *PostgresLedger) CountViews(ctx context.Context, mediaID string) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.ViewLog{}).
		Where("media_id = ?", mediaID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return count, nil
}

func (l *PostgresLedger) DistinctClients(ctx context.Context, mediaID string) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.ViewLog{}).
		Where("media_id = ?", mediaID).
		Distinct("client_ip").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count distinct clients: %w", err)
	}
	return count, nil
}

// ViewsPerDay folds timestamps into UTC day buckets in Go rather than with
// DATE_TRUNC so the Postgres and memory ledgers bucket identically regardless
// of the session time zone.
func (l *PostgresLedger) ViewsPerDay(ctx context.Context, mediaID string) ([]DayCount, error) {
	var stamps []time.Time
	err := l.db.WithContext(ctx).Model(&models.ViewLog{}).
		Where("media_id = ?", mediaID).
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, fmt.Errorf("views per day: %w", err)
	}

	buckets := make(map[string]int64)
	for _, ts := range stamps {
		buckets[dayKey(ts)]++
	}

	days := make([]DayCount, 0, len(buckets))
	for date, count := range buckets {
		days = append(days, DayCount{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (l *PostgresLedger) Recent(ctx context.Context, mediaID string, limit int) ([]models.ViewLog, error) {
	var entries []models.ViewLog
	err := l.db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("recent views: %w", err)
	}
	return entries, nil
}
