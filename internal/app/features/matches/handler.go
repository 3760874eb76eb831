// internal/app/features/matches/handler.go
package matches

import (
	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	matchsvc "github.com/dalemusser/arenahub/internal/app/service/matches"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for matches: the match page,
// creation, score submission, and the administrative overrides. All state
// transitions go through the match service, which owns the consensus
// protocol.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Service  *matchsvc.Service
}

// NewHandler constructs a matches handler bound to a DB and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Service:  matchsvc.New(db, logger),
	}
}
