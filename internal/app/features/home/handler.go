package home

import (
	"context"
	"net/http"

	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Counts are decorative; the page renders fine without them.
	orgCount, err := h.DB.Collection("organizations").CountDocuments(ctx, bson.M{
		"visibility": bson.M{"$ne": "hidden"},
	})
	if err != nil {
		h.Log.Warn("home: count organizations failed", zap.Error(err))
	}
	matchCount, err := h.DB.Collection("matches").CountDocuments(ctx, bson.M{"status": "completed"})
	if err != nil {
		h.Log.Warn("home: count matches failed", zap.Error(err))
	}

	data := struct {
		viewdata.BaseVM
		OrgCount   int64
		MatchCount int64
	}{
		BaseVM:     viewdata.NewBaseVM(r, "Welcome", "/"),
		OrgCount:   orgCount,
		MatchCount: matchCount,
	}

	templates.Render(w, r, "home", data)
}
