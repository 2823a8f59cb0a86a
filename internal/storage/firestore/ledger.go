package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tinywideclouds/go-push-service/pkg/push"
)

// DefaultCollection is the root collection holding history records.
const DefaultCollection = "notification_history"

var _ push.HistoryStore = (*Ledger)(nil)

// Ledger implements push.HistoryStore using Google Cloud Firestore.
type Ledger struct {
	client     *firestore.Client
	collection string
	lastSeq    atomic.Int64
}

func NewLedger(client *firestore.Client, collection string) *Ledger {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Ledger{client: client, collection: collection}
}

// historyDoc is the internal DB representation.
// Seq orders records that share a sent_at value by insertion.
type historyDoc struct {
	ID             string         `firestore:"id"`
	NotificationID string         `firestore:"notification_id"`
	Title          string         `firestore:"title"`
	Body           string         `firestore:"body"`
	Target         push.Target    `firestore:"target"`
	Result         push.Outcome   `firestore:"result"`
	SentAt         time.Time      `firestore:"sent_at"`
	Seq            int64          `firestore:"seq"`
	Data           map[string]any `firestore:"data,omitempty"`
	TestMode       bool           `firestore:"test_mode"`
}

func (s *Ledger) Save(ctx context.Context, record push.HistoryRecord) error {
	doc := historyDoc{
		ID:             record.ID,
		NotificationID: record.NotificationID,
		Title:          record.Title,
		Body:           record.Body,
		Target:         record.Target,
		Result:         record.Result,
		SentAt:         record.SentAt,
		Seq:            s.nextSeq(),
		TestMode:       record.TestMode,
	}
	if record.Data != nil {
		doc.Data = make(map[string]any, len(record.Data))
		for k, v := range record.Data {
			doc.Data[k] = v.Value()
		}
	}

	// Create rather than Set: records are append-only.
	if _, err := s.col().Doc(record.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore save history %s: %w", record.ID, err)
	}
	return nil
}

func (s *Ledger) FindAll(ctx context.Context, limit, offset int) ([]push.HistoryRecord, error) {
	if limit <= 0 {
		limit = push.DefaultFindAllLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.query(ctx, newestFirst(s.col().Query).Offset(offset).Limit(limit))
}

func (s *Ledger) FindByTargetType(ctx context.Context, targetType push.TargetType, limit int) ([]push.HistoryRecord, error) {
	q := s.col().Where("target.type", "==", string(targetType))
	return s.query(ctx, newestFirst(q).Limit(filterLimit(limit)))
}

func (s *Ledger) FindTestNotifications(ctx context.Context, limit int) ([]push.HistoryRecord, error) {
	q := s.col().Where("test_mode", "==", true)
	return s.query(ctx, newestFirst(q).Limit(filterLimit(limit)))
}

func (s *Ledger) FindByDateRange(ctx context.Context, start, end time.Time) ([]push.HistoryRecord, error) {
	q := s.col().Where("sent_at", ">=", start).Where("sent_at", "<=", end)
	return s.query(ctx, newestFirst(q))
}

// Stats scans the whole collection once, newest first, so the first
// RecentActivityLimit records double as the recent activity list.
func (s *Ledger) Stats(ctx context.Context) (push.Stats, error) {
	all, err := s.query(ctx, newestFirst(s.col().Query))
	if err != nil {
		return push.Stats{}, err
	}

	stats := push.Stats{TotalSent: len(all)}
	for _, r := range all {
		if r.Result.Success {
			stats.TotalSuccessful++
		}
		stats.ByType.Add(r.Target.Type)
	}
	stats.TotalFailed = stats.TotalSent - stats.TotalSuccessful
	stats.RecentActivity = all[:min(len(all), push.RecentActivityLimit)]
	return stats, nil
}

func (s *Ledger) Count(ctx context.Context) (int, error) {
	// Select with no fields fetches document names only.
	docs, err := s.col().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("firestore count history: %w", err)
	}
	return len(docs), nil
}

func (s *Ledger) Clear(ctx context.Context) error {
	bw := s.client.BulkWriter(ctx)
	refs := s.col().DocumentRefs(ctx)
	var firstErr error
	for {
		ref, err := refs.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			firstErr = fmt.Errorf("firestore list history: %w", err)
			break
		}
		if _, err := bw.Delete(ref); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("firestore delete %s: %w", ref.ID, err)
		}
	}
	bw.End()
	return firstErr
}

// --- Helpers ---

func (s *Ledger) query(ctx context.Context, q firestore.Query) ([]push.HistoryRecord, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	records := make([]push.HistoryRecord, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}

		var hd historyDoc
		if err := doc.DataTo(&hd); err != nil {
			return nil, fmt.Errorf("decoding history record %s: %w", doc.Ref.ID, err)
		}
		records = append(records, hd.toRecord())
	}
	return records, nil
}

func (hd historyDoc) toRecord() push.HistoryRecord {
	r := push.HistoryRecord{
		ID:             hd.ID,
		NotificationID: hd.NotificationID,
		Title:          hd.Title,
		Body:           hd.Body,
		Target:         hd.Target,
		Result:         hd.Result,
		SentAt:         hd.SentAt,
		TestMode:       hd.TestMode,
	}
	if hd.Data != nil {
		r.Data = make(map[string]push.DataValue, len(hd.Data))
		for k, raw := range hd.Data {
			if v, err := push.DataValueOf(raw); err == nil {
				r.Data[k] = v
			}
		}
	}
	return r
}

func (s *Ledger) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// nextSeq is strictly increasing within the process even when the clock
// does not advance between two saves.
func (s *Ledger) nextSeq() int64 {
	for {
		last := s.lastSeq.Load()
		next := max(time.Now().UnixNano(), last+1)
		if s.lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

func newestFirst(q firestore.Query) firestore.Query {
	return q.OrderBy("sent_at", firestore.Desc).OrderBy("seq", firestore.Asc)
}

func filterLimit(limit int) int {
	if limit <= 0 {
		return push.DefaultFilterLimit
	}
	return limit
}
