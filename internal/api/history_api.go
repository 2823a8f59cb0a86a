// --- File: internal/api/history_api.go ---
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/response"
	"github.com/tinywideclouds/go-push-service/pkg/push"
)

var errBadQuery = errors.New("bad query")

// HistoryAPI exposes read-only views of the history ledger.
type HistoryAPI struct {
	Store  push.HistoryStore
	Logger *slog.Logger
}

func NewHistoryAPI(store push.HistoryStore, logger *slog.Logger) *HistoryAPI {
	return &HistoryAPI{
		Store:  store,
		Logger: logger.With("component", "HistoryAPI"),
	}
}

// HistoryPage is the body of a history listing. Total is the size of the
// whole ledger and is only present for unfiltered listings.
type HistoryPage struct {
	Records []push.HistoryRecord `json:"records"`
	Total   *int                 `json:"total,omitempty"`
}

// List serves one of the ledger queries, chosen by the query string:
// type, test=true, from+to (RFC 3339), or none for a paged listing with
// limit and offset. Only one filter may be given.
func (api *HistoryAPI) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r)
	if err != nil {
		response.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	var page HistoryPage
	switch {
	case q.targetType != "":
		page.Records, err = api.Store.FindByTargetType(ctx, q.targetType, q.limit)
	case q.testOnly:
		page.Records, err = api.Store.FindTestNotifications(ctx, q.limit)
	case q.ranged:
		page.Records, err = api.Store.FindByDateRange(ctx, q.from, q.to)
	default:
		page.Records, err = api.Store.FindAll(ctx, q.limit, q.offset)
		if err == nil {
			var total int
			total, err = api.Store.Count(ctx)
			page.Total = &total
		}
	}
	if err != nil {
		api.Logger.Error("History query failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if page.Records == nil {
		page.Records = []push.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *HistoryAPI) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.Store.Stats(r.Context())
	if err != nil {
		api.Logger.Error("History stats failed", "err", err)
		response.WriteJSONError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if stats.RecentActivity == nil {
		stats.RecentActivity = []push.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, stats)
}

type historyQuery struct {
	limit      int
	offset     int
	targetType push.TargetType
	testOnly   bool
	ranged     bool
	from, to   time.Time
}

func parseHistoryQuery(r *http.Request) (historyQuery, error) {
	values := r.URL.Query()
	var q historyQuery
	var err error

	if q.limit, err = intParam(values.Get("limit")); err != nil {
		return q, fmt.Errorf("%w: limit: %v", errBadQuery, err)
	}
	if q.offset, err = intParam(values.Get("offset")); err != nil {
		return q, fmt.Errorf("%w: offset: %v", errBadQuery, err)
	}

	filters := 0
	if raw := values.Get("type"); raw != "" {
		if q.targetType, err = push.ParseTargetType(raw); err != nil {
			return q, fmt.Errorf("%w: %v", errBadQuery, err)
		}
		filters++
	}
	if raw := values.Get("test"); raw != "" {
		if q.testOnly, err = strconv.ParseBool(raw); err != nil {
			return q, fmt.Errorf("%w: test: %v", errBadQuery, err)
		}
		if q.testOnly {
			filters++
		}
	}
	from, to := values.Get("from"), values.Get("to")
	if from != "" || to != "" {
		if from == "" || to == "" {
			return q, fmt.Errorf("%w: from and to must be given together", errBadQuery)
		}
		if q.from, err = time.Parse(time.RFC3339, from); err != nil {
			return q, fmt.Errorf("%w: from: %v", errBadQuery, err)
		}
		if q.to, err = time.Parse(time.RFC3339, to); err != nil {
			return q, fmt.Errorf("%w: to: %v", errBadQuery, err)
		}
		q.ranged = true
		filters++
	}
	if filters > 1 {
		return q, fmt.Errorf("%w: only one of type, test and from/to may be given", errBadQuery)
	}
	return q, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}
