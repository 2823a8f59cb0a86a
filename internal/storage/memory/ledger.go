// Package memory provides a process-lifetime HistoryStore backed by a slice.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/tinywideclouds/go-push-service/pkg/push"
)

var _ push.HistoryStore = (*Ledger)(nil)

// Ledger keeps records in insertion order. Writers take the lock exclusively;
// readers copy what they need under a shared lock and sort the copy.
type Ledger struct {
	mu      sync.RWMutex
	records []push.HistoryRecord
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Save(_ context.Context, record push.HistoryRecord) error {
	record.Data = maps.Clone(record.Data)
	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()
	return nil
}

func (l *Ledger) FindAll(_ context.Context, limit, offset int) ([]push.HistoryRecord, error) {
	if limit <= 0 {
		limit = push.DefaultFindAllLimit
	}
	if offset < 0 {
		offset = 0
	}
	sorted := newestFirst(l.filter(nil))
	if offset >= len(sorted) {
		return []push.HistoryRecord{}, nil
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end], nil
}

func (l *Ledger) FindByTargetType(_ context.Context, targetType push.TargetType, limit int) ([]push.HistoryRecord, error) {
	matches := l.filter(func(r push.HistoryRecord) bool { return r.Target.Type == targetType })
	return capped(newestFirst(matches), limit), nil
}

func (l *Ledger) FindTestNotifications(_ context.Context, limit int) ([]push.HistoryRecord, error) {
	matches := l.filter(func(r push.HistoryRecord) bool { return r.TestMode })
	return capped(newestFirst(matches), limit), nil
}

func (l *Ledger) FindByDateRange(_ context.Context, start, end time.Time) ([]push.HistoryRecord, error) {
	matches := l.filter(func(r push.HistoryRecord) bool {
		return !r.SentAt.Before(start) && !r.SentAt.After(end)
	})
	return newestFirst(matches), nil
}

// Stats counts and picks recent activity from one snapshot, so concurrent
// saves cannot make the totals and the recent list disagree.
func (l *Ledger) Stats(_ context.Context) (push.Stats, error) {
	all := l.filter(nil)

	stats := push.Stats{TotalSent: len(all)}
	for _, r := range all {
		if r.Result.Success {
			stats.TotalSuccessful++
		}
		stats.ByType.Add(r.Target.Type)
	}
	stats.TotalFailed = stats.TotalSent - stats.TotalSuccessful

	stats.RecentActivity = capped(newestFirst(all), push.RecentActivityLimit)
	return stats, nil
}

func (l *Ledger) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records), nil
}

func (l *Ledger) Clear(_ context.Context) error {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
	return nil
}

// filter copies the matching records in insertion order, Data maps included.
// A nil keep copies all.
func (l *Ledger) filter(keep func(push.HistoryRecord) bool) []push.HistoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]push.HistoryRecord, 0, len(l.records))
	for _, r := range l.records {
		if keep == nil || keep(r) {
			r.Data = maps.Clone(r.Data)
			out = append(out, r)
		}
	}
	return out
}

func newestFirst(records []push.HistoryRecord) []push.HistoryRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SentAt.After(records[j].SentAt)
	})
	return records
}

func capped(records []push.HistoryRecord, limit int) []push.HistoryRecord {
	if limit <= 0 {
		limit = push.DefaultFilterLimit
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
