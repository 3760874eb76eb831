// internal/app/features/organizations/handler.go
package organizations

import (
	uierrors "github.com/dalemusser/arenahub/internal/app/features/errors"
	"github.com/dalemusser/arenahub/internal/app/service/membership"
	"github.com/dalemusser/arenahub/internal/app/system/auditlog"
	"github.com/dalemusser/arenahub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for organizations: the public
// directory, organization pages, and the membership actions. All state
// transitions go through the membership service; handlers only parse,
// gate, and render.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Mailer   *mailer.Mailer
	Service  *membership.Service

	// BaseURL builds absolute links for notification emails.
	BaseURL string
}

// NewHandler constructs an organizations handler bound to a DB and logger.
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
		Service:  membership.New(db, logger),
		BaseURL:  baseURL,
	}
}
