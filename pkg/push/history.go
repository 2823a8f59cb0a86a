package push

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// SendResult is the normalised outcome of one provider call.
// MessageID is set only on success, Error only on failure.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Target    Target `json:"target"`
}

func Succeeded(target Target, messageID string) SendResult {
	return SendResult{Success: true, MessageID: messageID, Target: target}
}

func Failed(target Target, err error) SendResult {
	return SendResult{Success: false, Error: err.Error(), Target: target}
}

// Outcome is the part of a SendResult kept in a history record.
type Outcome struct {
	Success   bool   `json:"success" firestore:"success"`
	MessageID string `json:"messageId,omitempty" firestore:"message_id,omitempty"`
	Error     string `json:"error,omitempty" firestore:"error,omitempty"`
}

// HistoryRecord is one entry in the ledger of send attempts.
// NotificationID references the Notification that was sent; records do not
// own notifications and do not reference each other.
type HistoryRecord struct {
	ID             string               `json:"id"`
	NotificationID string               `json:"notificationId"`
	Title          string               `json:"title"`
	Body           string               `json:"body"`
	Target         Target               `json:"target"`
	Result         Outcome              `json:"result"`
	SentAt         time.Time            `json:"sentAt"`
	Data           map[string]DataValue `json:"data,omitempty"`
	TestMode       bool                 `json:"testMode"`
}

// NewHistoryRecord captures a send attempt at the current time.
func NewHistoryRecord(n Notification, result SendResult, testMode bool) HistoryRecord {
	return HistoryRecord{
		ID:             uuid.NewString(),
		NotificationID: n.ID,
		Title:          n.Title,
		Body:           n.Body,
		Target:         result.Target,
		Result: Outcome{
			Success:   result.Success,
			MessageID: result.MessageID,
			Error:     result.Error,
		},
		SentAt:   time.Now(),
		Data:     maps.Clone(n.Data),
		TestMode: testMode,
	}
}

// TypeCounts holds the number of records per target type.
type TypeCounts struct {
	All    int `json:"all"`
	Single int `json:"single"`
	Topic  int `json:"topic"`
}

// Add increments the counter for t. Unknown types are ignored.
func (c *TypeCounts) Add(t TargetType) {
	switch t {
	case TargetAll:
		c.All++
	case TargetSingle:
		c.Single++
	case TargetTopic:
		c.Topic++
	}
}

// Stats is derived from the whole ledger each time it is requested.
type Stats struct {
	TotalSent       int             `json:"totalSent"`
	TotalSuccessful int             `json:"totalSuccessful"`
	TotalFailed     int             `json:"totalFailed"`
	ByType          TypeCounts      `json:"byType"`
	RecentActivity  []HistoryRecord `json:"recentActivity"`
}

// RecentActivityLimit is how many records Stats.RecentActivity holds.
const RecentActivityLimit = 10

// Default page sizes for ledger queries when the caller gives none.
const (
	DefaultFindAllLimit = 50
	DefaultFilterLimit  = 20
)
