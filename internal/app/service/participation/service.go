// internal/app/service/participation/service.go
//
// Package participation implements event enrollment: applications,
// acceptance with lazy stats creation, rejection, and event-level bans.
// It mirrors the organization membership shape but is scoped to a single
// event within an organization.
package participation

import (
	"context"
	"errors"

	applicationstore "github.com/dalemusser/arenahub/internal/app/store/applications"
	banstore "github.com/dalemusser/arenahub/internal/app/store/bans"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	organizationstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"

	"github.com/dalemusser/arenahub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/arenahub/internal/app/service/fault"
	"github.com/dalemusser/arenahub/internal/app/system/txn"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service coordinates event participation state transitions.
type Service struct {
	db           *mongo.Database
	log          *zap.Logger
	orgs         *organizationstore.Store
	events       *eventstore.Store
	applications *applicationstore.Store
	participants *participantstore.Store
	bans         *banstore.Store
}

// New creates a participation Service bound to the database.
func New(db *mongo.Database, log *zap.Logger) *Service {
	return &Service{
		db:           db,
		log:          log,
		orgs:         organizationstore.New(db),
		events:       eventstore.New(db),
		applications: applicationstore.New(db),
		participants: participantstore.New(db),
		bans:         banstore.New(db),
	}
}

// CreateEvent inserts an event under the organization. Only org admins
// may create events.
func (s *Service) CreateEvent(ctx context.Context, ev models.Event, actorID primitive.ObjectID) (models.Event, error) {
	if _, err := s.loadOrg(ctx, ev.OrganizationID); err != nil {
		return models.Event{}, err
	}
	if err := s.requireOrgAdmin(ctx, ev.OrganizationID, actorID); err != nil {
		return models.Event{}, err
	}
	if ev.Visibility != "" && !models.ValidVisibility(ev.Visibility) {
		return models.Event{}, fault.Invalid("unknown visibility %q", ev.Visibility)
	}
	created, err := s.events.Create(ctx, ev)
	if err != nil {
		if errors.Is(err, eventstore.ErrDuplicateEvent) {
			return models.Event{}, fault.Conflict("%v", err)
		}
		return models.Event{}, err
	}
	return created, nil
}

// Apply requests enrollment in the event. The applicant must be a member
// of the owning organization in good standing: org bans block enrollment
// everywhere in the org, event bans block this event only. Existing
// participants and pending applicants are conflicts.
func (s *Service) Apply(ctx context.Context, eventID, userID primitive.ObjectID) error {
	ev, org, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	member, err := orgpolicy.IsMember(ctx, s.db, org.ID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fault.NotAuthorized("user is not a member of the organization")
	}
	banned, err := eventpolicy.IsBanned(ctx, s.db, ev, userID)
	if err != nil {
		return err
	}
	if banned {
		return fault.NotAuthorized("user is banned from the event")
	}
	enrolled, err := s.participants.Exists(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if enrolled {
		return fault.Conflict("user is already a participant")
	}

	if err := s.applications.CreateEvent(ctx, eventID, userID); err != nil {
		if errors.Is(err, applicationstore.ErrDuplicateApplication) {
			return fault.Conflict("%v", err)
		}
		return err
	}
	return nil
}

// Accept approves a pending event application: deletes the application,
// inserts the participant row, and lazily creates the player's stats row
// with the default rating if none exists, all in one transaction. The
// stats row survives later removal so history is never lost.
func (s *Service) Accept(ctx context.Context, eventID, userID, actorID primitive.ObjectID) error {
	ev, _, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOrgAdmin(ctx, ev.OrganizationID, actorID); err != nil {
		return err
	}
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		n, err := s.applications.DeleteEvent(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fault.NotFound("no pending application for user")
		}
		if err := s.participants.Add(ctx, eventID, userID); err != nil {
			if errors.Is(err, participantstore.ErrDuplicateParticipant) {
				return fault.Conflict("%v", err)
			}
			return err
		}
		return s.participants.EnsureStats(ctx, eventID, userID)
	})
}

// Reject deletes a pending event application.
func (s *Service) Reject(ctx context.Context, eventID, userID, actorID primitive.ObjectID) error {
	ev, _, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOrgAdmin(ctx, ev.OrganizationID, actorID); err != nil {
		return err
	}
	n, err := s.applications.DeleteEvent(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fault.NotFound("no pending application for user")
	}
	return nil
}

// BanFromEvent marks the user banned from this event only and removes
// their participant row in the same transaction. Org-level standing is
// untouched.
func (s *Service) BanFromEvent(ctx context.Context, eventID, userID, actorID primitive.ObjectID) error {
	ev, org, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOrgAdmin(ctx, ev.OrganizationID, actorID); err != nil {
		return err
	}
	if org.CreatorID == userID {
		return fault.Conflict("the organization creator cannot be banned")
	}
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.bans.SetEventBan(ctx, eventID, userID, models.BanActive); err != nil {
			return err
		}
		if _, err := s.participants.Remove(ctx, eventID, userID); err != nil {
			return err
		}
		_, err := s.applications.DeleteEvent(ctx, eventID, userID)
		return err
	})
}

// UnbanFromEvent clears the event-level ban. An active org-level ban, if
// any, continues to block the user.
func (s *Service) UnbanFromEvent(ctx context.Context, eventID, userID, actorID primitive.ObjectID) error {
	ev, _, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.requireOrgAdmin(ctx, ev.OrganizationID, actorID); err != nil {
		return err
	}
	return s.bans.SetEventBan(ctx, eventID, userID, models.BanInactive)
}

// ViewEvent loads the event for the given viewer, applying visibility
// gating: a denial surfaces as not-found so hidden events do not leak.
func (s *Service) ViewEvent(ctx context.Context, eventID, viewerID primitive.ObjectID) (models.Event, error) {
	ev, org, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}
	visible, err := eventpolicy.CanView(ctx, s.db, org, ev, viewerID)
	if err != nil {
		return models.Event{}, err
	}
	if !visible {
		return models.Event{}, fault.NotFound("event not found")
	}
	return ev, nil
}

func (s *Service) loadOrg(ctx context.Context, orgID primitive.ObjectID) (models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, fault.NotFound("organization not found")
	}
	return org, err
}

func (s *Service) loadEvent(ctx context.Context, eventID primitive.ObjectID) (models.Event, models.Organization, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, models.Organization{}, fault.NotFound("event not found")
	}
	if err != nil {
		return models.Event{}, models.Organization{}, err
	}
	org, err := s.loadOrg(ctx, ev.OrganizationID)
	if err != nil {
		return models.Event{}, models.Organization{}, err
	}
	return ev, org, nil
}

func (s *Service) requireOrgAdmin(ctx context.Context, orgID, actorID primitive.ObjectID) error {
	ok, err := orgpolicy.IsAdmin(ctx, s.db, orgID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.NotAuthorized("actor is not an organization admin")
	}
	return nil
}
