// Package ledger is the append-only store of view events and its aggregate
// query surface. Entries are never updated; old rows are removed only by the
// retention purger.
package ledger

import (
	"context"
	"time"

	"github.com/sdko-org/media-vault/internal/models"
)

// DayCount is one bucket of the per-day view histogram. Date is a UTC
// calendar date formatted YYYY-MM-DD.
type DayCount struct {
	Date  string
	Count int64
}

// ViewLedger records and aggregates view events for media assets.
type ViewLedger interface {
	Insert(ctx context.Context, mediaID, clientIP string) (models.ViewLog, error)
	CountViews(ctx context.Context, mediaID string) (int64, error)
	DistinctClients(ctx context.Context, mediaID string) (int64, error)
	// ViewsPerDay returns day buckets in ascending date order.
	ViewsPerDay(ctx context.Context, mediaID string) ([]DayCount, error)
	// Recent returns up to limit entries, most recent first.
	Recent(ctx context.Context, mediaID string, limit int) ([]models.ViewLog, error)
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
