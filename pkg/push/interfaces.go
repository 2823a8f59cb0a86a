// --- File: pkg/push/interfaces.go ---
package push

import (
	"context"
	"time"
)

// HistoryStore defines the contract for the append-only ledger of send attempts.
// Reads return records ordered by SentAt, newest first, with ties kept in
// insertion order. A non-positive limit selects the store's default.
type HistoryStore interface {
	// Save appends a record. Records are never updated in place.
	Save(ctx context.Context, record HistoryRecord) error

	FindAll(ctx context.Context, limit, offset int) ([]HistoryRecord, error)
	FindByTargetType(ctx context.Context, targetType TargetType, limit int) ([]HistoryRecord, error)
	FindTestNotifications(ctx context.Context, limit int) ([]HistoryRecord, error)

	// FindByDateRange returns every record with start <= SentAt <= end.
	FindByDateRange(ctx context.Context, start, end time.Time) ([]HistoryRecord, error)

	// Stats scans the full ledger.
	Stats(ctx context.Context) (Stats, error)
	Count(ctx context.Context) (int, error)

	// Clear empties the ledger. Test and operations use only; it is not
	// exposed over HTTP.
	Clear(ctx context.Context) error
}

// Dispatcher sends notifications to the push provider and manages topic
// subscriptions. Provider failures are reported in the SendResult, never as
// an error; the error return is reserved for invalid targets.
type Dispatcher interface {
	Send(ctx context.Context, n Notification, target Target) (SendResult, error)
	SendToAll(ctx context.Context, n Notification) SendResult
	SendToUser(ctx context.Context, n Notification, token string) SendResult
	SendToTopic(ctx context.Context, n Notification, topic string) SendResult

	// SendTest validates the message with the provider without delivering it
	// and records the attempt as a test notification.
	SendTest(ctx context.Context, n Notification, target Target) (SendResult, error)

	SubscribeToTopic(ctx context.Context, token, topic string) bool
	UnsubscribeFromTopic(ctx context.Context, token, topic string) bool
}
