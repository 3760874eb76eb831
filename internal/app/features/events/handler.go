// internal/app/features/events/handler.go
package events

import (
	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/service/participation"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"github.com/dalemusser/arenahub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for tournament events: event
// pages, creation, and the enrollment actions. State transitions go
// through the participation service.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Mailer   *mailer.Mailer
	Service  *participation.Service

	// BaseURL builds absolute links for notification emails.
	BaseURL string
}

// NewHandler constructs an events handler bound to a DB and logger.
func NewHandler(
	db *mongo.Database,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	m *mailer.Mailer,
	baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Mailer:   m,
		Service:  participation.New(db, logger),
		BaseURL:  baseURL,
	}
}
