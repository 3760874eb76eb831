// internal/app/features/organizations/list.go
package organizations

import (
	"context"
	"maps"
	"net/http"

	"github.com/dalemusser/arenahub/internal/app/system/orgutil"
	"github.com/dalemusser/arenahub/internal/app/system/paging"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServeList handles GET /organizations (with optional ?q= search).
// Hidden organizations never appear in the directory; members reach
// them by direct link. Supports HTMX partial refresh of the table when
// HX-Target="orgs-table-wrap".
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")
	after := query.Get(r, "after")
	before := query.Get(r, "before")
	start := paging.ParseStart(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	db := h.DB

	base := bson.M{"visibility": bson.M{"$ne": models.VisibilityHidden}}
	if q != "" {
		if fq := text.Fold(q); fq != "" {
			base["name_ci"] = bson.M{"$gte": fq, "$lt": fq + "￿"}
		}
	}

	total, err := db.Collection("organizations").CountDocuments(ctx, base)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count organizations failed", err, "Unable to load organizations.", "")
		return
	}

	f := maps.Clone(base)
	find := options.Find()
	sortField := "name_ci"

	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, sortField)

	if ks := cfg.KeysetWindow(sortField); ks != nil {
		// name_ci carries both the search window and the cursor window;
		// combine them under $and so neither clobbers the other.
		if rangeCond, ok := base["name_ci"]; ok {
			f["$and"] = []bson.M{{"name_ci": rangeCond}, ks}
			delete(f, "name_ci")
		} else {
			maps.Copy(f, ks)
		}
	}

	type orgRow struct {
		ID         primitive.ObjectID `bson:"_id"`
		Name       string             `bson:"name"`
		NameCI     string             `bson:"name_ci"`
		Visibility string             `bson:"visibility"`
	}

	cur, err := db.Collection("organizations").Find(ctx, f, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find organizations failed", err, "Unable to load organizations.", "")
		return
	}
	defer cur.Close(ctx)

	var orgs []orgRow
	if err := cur.All(ctx, &orgs); err != nil {
		h.ErrLog.LogServerError(w, r, "decode organizations failed", err, "Unable to load organizations.", "")
		return
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(orgs)
	}

	page := paging.TrimPage(&orgs, before, after)

	shown := len(orgs)
	rng := paging.ComputeRange(start, shown)

	orgIDs := make([]primitive.ObjectID, 0, len(orgs))
	for _, o := range orgs {
		orgIDs = append(orgIDs, o.ID)
	}

	membersMap, err := orgutil.AggregateCountByField(ctx, db, "org_memberships", bson.M{
		"org_id": bson.M{"$in": orgIDs},
	}, "org_id")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "aggregate member counts failed", err, "Unable to load organization data.", "")
		return
	}

	eventsMap, err := orgutil.AggregateCountByField(ctx, db, "events", bson.M{
		"organization_id": bson.M{"$in": orgIDs},
	}, "organization_id")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "aggregate event counts failed", err, "Unable to load organization data.", "")
		return
	}

	items := make([]listItem, 0, len(orgs))
	for _, o := range orgs {
		items = append(items, listItem{
			ID:          o.ID,
			Name:        o.Name,
			NameCI:      o.NameCI,
			Visibility:  o.Visibility,
			MemberCount: membersMap[o.ID],
			EventCount:  eventsMap[o.ID],
		})
	}

	prevCur, nextCur := paging.BuildCursors(orgs,
		func(o orgRow) string { return o.NameCI },
		func(o orgRow) primitive.ObjectID { return o.ID })

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Organizations", "/"),
		Q:      q,
		Items:  items,

		Shown:      shown,
		Total:      total,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prevCur,
		NextCursor: nextCur,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
		PrevStart:  rng.PrevStart,
		NextStart:  rng.NextStart,
	}

	// HTMX partial: just the table.
	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "orgs-table-wrap" {
		templates.RenderSnippet(w, "organizations_table", data)
		return
	}

	templates.Render(w, r, "organizations_list", data)
}
