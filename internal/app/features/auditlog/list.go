// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/store/audit"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	userstore "github.com/dalemusser/arenahub/internal/app/store/users"
	"github.com/dalemusser/arenahub/internal/app/system/gates"
	"github.com/dalemusser/arenahub/internal/app/system/orgutil"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit?org={hex}: the organization's audit trail
// with category, event-type, and date filtering. Only org admins may read
// it; the trail covers membership changes, event lifecycle, and matches.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	org, err := orgutil.ResolveOrgFromHex(ctx, h.DB, r.URL.Query().Get("org"))
	if err != nil {
		if orgutil.IsExpectedOrgError(err) {
			uierrors.RenderNotFound(w, r, "Organization not found.", "/organizations")
			return
		}
		h.ErrLog.LogServerError(w, r, "load organization failed", err, "Unable to load organization.", "/organizations")
		return
	}
	orgURL := "/organizations/" + org.ID.Hex()

	res := gates.RequireOrgAdmin(ctx, w, r, h.DB, org.ID,
		"Only organization admins can read the audit log.", orgURL)
	if !res.OK {
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	eventType := strings.TrimSpace(r.URL.Query().Get("event_type"))
	startDate := strings.TrimSpace(r.URL.Query().Get("start_date"))
	endDate := strings.TrimSpace(r.URL.Query().Get("end_date"))

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		OrganizationID: &org.ID,
		Category:       category,
		EventType:      eventType,
		Limit:          pageSize,
		Offset:         int64((page - 1) * pageSize),
	}
	if startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartTime = &t
		}
	}
	if endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndTime = &endOfDay
		}
	}

	auditStore := audit.New(h.DB)
	events, err := auditStore.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "A database error occurred.", orgURL)
		return
	}
	total, err := auditStore.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "A database error occurred.", orgURL)
		return
	}

	items := h.buildItems(ctx, events)

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	prevPage := page - 1
	if prevPage < 1 {
		prevPage = 1
	}
	nextPage := page + 1
	if nextPage > totalPages {
		nextPage = totalPages
	}

	templates.Render(w, r, "audit_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit Log", orgURL),
		OrgID:      org.ID.Hex(),
		OrgName:    org.Name,
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
		Shown:      len(items),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   prevPage,
		NextPage:   nextPage,
	})
}

// buildItems resolves actor, target, and tournament-event names in batch
// and shapes the rows for display. Name resolution is best-effort: a
// missing user falls back to the raw ID.
func (h *Handler) buildItems(ctx context.Context, events []audit.Event) []listItem {
	userIDs := make(map[primitive.ObjectID]struct{})
	eventIDs := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		if e.ActorID != nil {
			userIDs[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			userIDs[*e.UserID] = struct{}{}
		}
		if e.EventID != nil {
			eventIDs[*e.EventID] = struct{}{}
		}
	}

	userNames := make(map[primitive.ObjectID]string)
	if len(userIDs) > 0 {
		ids := make([]primitive.ObjectID, 0, len(userIDs))
		for id := range userIDs {
			ids = append(ids, id)
		}
		users, err := userstore.New(h.DB).GetByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("fetch user names for audit log failed", zap.Error(err))
		} else {
			for _, u := range users {
				userNames[u.ID] = u.Name
			}
		}
	}

	eventNames := make(map[primitive.ObjectID]string)
	if len(eventIDs) > 0 {
		ids := make([]primitive.ObjectID, 0, len(eventIDs))
		for id := range eventIDs {
			ids = append(ids, id)
		}
		evs, err := eventstore.New(h.DB).GetByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("fetch event names for audit log failed", zap.Error(err))
		} else {
			for _, ev := range evs {
				eventNames[ev.ID] = ev.Name
			}
		}
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			IP:        e.IP,
			Success:   e.Success,
			Details:   e.Details,
		}
		if e.ActorID != nil {
			item.ActorName = nameOr(userNames, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetName = nameOr(userNames, *e.UserID)
		}
		if e.EventID != nil {
			item.EventName = nameOr(eventNames, *e.EventID)
		}
		items = append(items, item)
	}
	return items
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id.Hex()
}
