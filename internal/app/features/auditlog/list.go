// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/clinicdash/internal/app/store/audit"
	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"github.com/dalemusser/clinicdash/internal/app/system/viewdata"
	"github.com/dalemusser/clinicdash/internal/domain/models"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit: the newest events first, filtered by
// category, event type, and a calendar date range in the clinic's zone.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if t, err := time.ParseInLocation(models.DateKeyLayout, startDate, h.Loc); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.ParseInLocation(models.DateKeyLayout, endDate, h.Loc); err == nil {
		endOfDay := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "A database error occurred.", "/admin")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "A database error occurred.", "/admin")
		return
	}

	names := h.resolveNames(ctx, events)

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:         e.ID.Hex(),
			When:       e.Timestamp.In(h.Loc).Format("2006-01-02 15:04:05"),
			Category:   e.Category,
			EventType:  e.EventType,
			ActorName:  nameOr(names, e.ActorID),
			TargetName: nameOr(names, e.UserID),
			IP:         e.IP,
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		})
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	prevPage := max(page-1, 1)
	nextPage := min(page+1, totalPages)

	h.render(w, r, "audit_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Audit Log", "/admin"),
		Items:      items,
		Category:   category,
		EventType:  eventType,
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(category),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   prevPage,
		NextPage:   nextPage,
	})
}

// resolveNames maps the actor and subject ids on events to display names.
// Subjects may be staff accounts or patients. Lookup failures are logged
// and leave the raw id in place.
func (h *Handler) resolveNames(ctx context.Context, events []audit.Event) map[string]string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(events)*2)
	for _, e := range events {
		for _, id := range []string{e.ActorID, e.UserID} {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}

	patients, err := h.Patients.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch patient names for audit log", zap.Error(err))
	}
	for _, p := range patients {
		if _, ok := names[p.ID]; !ok {
			names[p.ID] = p.Name
		}
	}
	return names
}

func nameOr(names map[string]string, id string) string {
	if id == "" {
		return ""
	}
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
