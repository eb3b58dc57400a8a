package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sdko-org/media-vault/internal/models"
)

// MemoryLedger is an in-process ViewLedger used by tests. It mirrors the
// observable behavior of PostgresLedger.
type MemoryLedger struct {
	mu      sync.Mutex
	nextID  uint
	entries []models.ViewLog

	// Now is consulted for entry timestamps; tests override it to pin dates.
	Now func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{Now: time.Now}
}

func (l *MemoryLedger) Insert(ctx context.Context, mediaID, clientIP string) (models.ViewLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	entry := models.ViewLog{
		ID:        l.nextID,
		MediaID:   mediaID,
		ClientIP:  clientIP,
		CreatedAt: l.Now().UTC(),
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *MemoryLedger) CountViews(ctx context.Context, mediaID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var count int64
	for _, e := range l.entries {
		if e.MediaID == mediaID {
			count++
		}
	}
	return count, nil
}

func (l *MemoryLedger) DistinctClients(ctx context.Context, mediaID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{})
	for _, e := range l.entries {
		if e.MediaID == mediaID {
			seen[e.ClientIP] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (l *MemoryLedger) ViewsPerDay(ctx context.Context, mediaID string) ([]DayCount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	buckets := make(map[string]int64)
	for _, e := range l.entries {
		if e.MediaID == mediaID {
			buckets[dayKey(e.CreatedAt)]++
		}
	}

	days := make([]DayCount, 0, len(buckets))
	for date, count := range buckets {
		days = append(days, DayCount{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func (l *MemoryLedger) Recent(ctx context.Context, mediaID string, limit int) ([]models.ViewLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []models.ViewLog
	for _, e := range l.entries {
		if e.MediaID == mediaID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
