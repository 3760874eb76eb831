// internal/app/service/membership/service.go
//
// Package membership implements the organization membership lifecycle:
// applications, acceptance, promotion, removal, bans, and the cascades
// those actions trigger across event participation and match outcomes.
// Every mutating operation checks authorization first and runs its
// multi-document cascade inside txn.Run so partial failure rolls back.
package membership

import (
	"context"
	"errors"

	applicationstore "github.com/dalemusser/arenahub/internal/app/store/applications"
	banstore "github.com/dalemusser/arenahub/internal/app/store/bans"
	eventstore "github.com/dalemusser/arenahub/internal/app/store/events"
	matchstore "github.com/dalemusser/arenahub/internal/app/store/matches"
	membershipstore "github.com/dalemusser/arenahub/internal/app/store/memberships"
	organizationstore "github.com/dalemusser/arenahub/internal/app/store/organizations"
	participantstore "github.com/dalemusser/arenahub/internal/app/store/participants"

	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/arenahub/internal/app/service/fault"
	"github.com/dalemusser/arenahub/internal/app/system/txn"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service coordinates membership state transitions for organizations.
type Service struct {
	db           *mongo.Database
	log          *zap.Logger
	orgs         *organizationstore.Store
	memberships  *membershipstore.Store
	applications *applicationstore.Store
	bans         *banstore.Store
	events       *eventstore.Store
	participants *participantstore.Store
	matches      *matchstore.Store
}

// New creates a membership Service bound to the database.
func New(db *mongo.Database, log *zap.Logger) *Service {
	return &Service{
		db:           db,
		log:          log,
		orgs:         organizationstore.New(db),
		memberships:  membershipstore.New(db),
		applications: applicationstore.New(db),
		bans:         banstore.New(db),
		events:       eventstore.New(db),
		participants: participantstore.New(db),
		matches:      matchstore.New(db),
	}
}

// CreateOrganization inserts the organization and the creator's admin
// membership in one transaction. The creator_id on the organization is
// permanent; no later operation reassigns it.
func (s *Service) CreateOrganization(ctx context.Context, org models.Organization, creatorID primitive.ObjectID) (models.Organization, error) {
	if !models.ValidVisibility(org.Visibility) && org.Visibility != "" {
		return models.Organization{}, fault.Invalid("unknown visibility %q", org.Visibility)
	}
	org.CreatorID = creatorID

	var created models.Organization
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		var err error
		created, err = s.orgs.Create(ctx, org)
		if err != nil {
			if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
				return fault.Conflict("%v", err)
			}
			return err
		}
		return s.memberships.Add(ctx, created.ID, creatorID, models.RoleAdmin)
	})
	if err != nil {
		return models.Organization{}, err
	}
	return created, nil
}

// Apply requests membership in the organization. Banned users, existing
// members, and users with a pending application are rejected. Open
// organizations auto-accept: the membership row is inserted directly and
// no application is created.
func (s *Service) Apply(ctx context.Context, orgID, userID primitive.ObjectID) error {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return err
	}

	role, err := orgpolicy.RoleOf(ctx, s.db, org, userID)
	if err != nil {
		return err
	}
	switch role {
	case orgpolicy.RoleBanned:
		return fault.NotAuthorized("user is banned from the organization")
	case orgpolicy.RoleCreator, orgpolicy.RoleAdmin, orgpolicy.RoleMember:
		return fault.Conflict("user is already a member")
	case orgpolicy.RoleApplicant:
		return fault.Conflict("user already has a pending application")
	}

	if org.Visibility == models.VisibilityOpen {
		if err := s.memberships.Add(ctx, orgID, userID, models.RoleMember); err != nil {
			if errors.Is(err, membershipstore.ErrDuplicateMembership) {
				return fault.Conflict("%v", err)
			}
			return err
		}
		return nil
	}

	if err := s.applications.CreateOrg(ctx, orgID, userID); err != nil {
		if errors.Is(err, applicationstore.ErrDuplicateApplication) {
			return fault.Conflict("%v", err)
		}
		return err
	}
	return nil
}

// Accept approves a pending application: inserts the membership and
// deletes the application in one transaction.
func (s *Service) Accept(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	if err := s.requireAdmin(ctx, orgID, actorID); err != nil {
		return err
	}
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		n, err := s.applications.DeleteOrg(ctx, orgID, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fault.NotFound("no pending application for user")
		}
		if err := s.memberships.Add(ctx, orgID, userID, models.RoleMember); err != nil {
			if errors.Is(err, membershipstore.ErrDuplicateMembership) {
				return fault.Conflict("%v", err)
			}
			return err
		}
		return nil
	})
}

// Reject deletes a pending application without creating a membership.
func (s *Service) Reject(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	if err := s.requireAdmin(ctx, orgID, actorID); err != nil {
		return err
	}
	n, err := s.applications.DeleteOrg(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fault.NotFound("no pending application for user")
	}
	return nil
}

// Promote raises a member to admin. A missing membership is inserted
// first, so promoting an outsider both joins and elevates them. Promoting
// a user who is already an admin is a conflict, not a silent no-op.
func (s *Service) Promote(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	if err := s.requireAdmin(ctx, orgID, actorID); err != nil {
		return err
	}
	if err := s.memberships.Promote(ctx, orgID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrAlreadyAdmin) {
			return fault.Conflict("%v", err)
		}
		return err
	}
	return nil
}

// RemoveAdmin demotes an admin back to member. Only the creator may
// demote, and the creator can never be demoted.
func (s *Service) RemoveAdmin(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if org.CreatorID != actorID {
		return fault.NotAuthorized("only the creator can demote admins")
	}
	if org.CreatorID == userID {
		return fault.Conflict("the creator cannot be demoted")
	}
	if err := s.memberships.Demote(ctx, orgID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrNotAdmin) {
			return fault.Conflict("%v", err)
		}
		return err
	}
	return nil
}

// Kick removes a member from the organization and cascades: the
// membership row, the user's participant rows in every event the
// organization runs, and a forfeit on the user's pending matches in those
// events. All steps commit together. Completed match results are immune.
func (s *Service) Kick(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, orgID, actorID); err != nil {
		return err
	}
	if org.CreatorID == userID {
		return fault.Conflict("the creator cannot be kicked")
	}
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		n, err := s.memberships.Remove(ctx, orgID, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fault.NotFound("user is not a member")
		}
		return s.removeFromOrgEvents(ctx, orgID, userID, true)
	})
}

// Ban marks the user banned from the organization and cascades: the org
// ban is upserted to active, the user's participant rows in the org's
// events are deleted, and an active event-level ban is upserted for every
// event in the organization, including events the user never joined.
// The ban sits on top of whatever membership state the user holds; any
// membership or pending application survives and comes back into effect
// if the ban is later lifted.
func (s *Service) Ban(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, orgID, actorID); err != nil {
		return err
	}
	if org.CreatorID == userID {
		return fault.Conflict("the creator cannot be banned")
	}
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.bans.SetOrgBan(ctx, orgID, userID, models.BanActive); err != nil {
			return err
		}
		eventIDs, err := s.events.IDsByOrg(ctx, orgID)
		if err != nil {
			return err
		}
		if _, err := s.participants.RemoveFromEvents(ctx, eventIDs, userID); err != nil {
			return err
		}
		for _, eid := range eventIDs {
			if err := s.bans.SetEventBan(ctx, eid, userID, models.BanActive); err != nil {
				return err
			}
		}
		return nil
	})
}

// Unban clears the organization-level ban. Event-level bans set by an
// earlier Ban cascade are intentionally left active; admins lift those
// per event.
func (s *Service) Unban(ctx context.Context, orgID, userID, actorID primitive.ObjectID) error {
	if err := s.requireAdmin(ctx, orgID, actorID); err != nil {
		return err
	}
	return s.bans.SetOrgBan(ctx, orgID, userID, models.BanInactive)
}

// Leave is the member's own exit. The creator cannot leave. Cascades the
// same way Kick does: membership row gone, participant rows gone, pending
// matches in the org's events forfeited.
func (s *Service) Leave(ctx context.Context, orgID, userID primitive.ObjectID) error {
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if org.CreatorID == userID {
		return fault.Conflict("the creator cannot leave the organization")
	}
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		n, err := s.memberships.Remove(ctx, orgID, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fault.NotFound("user is not a member")
		}
		return s.removeFromOrgEvents(ctx, orgID, userID, true)
	})
}

// removeFromOrgEvents deletes the user's participant rows across the
// organization's events and, when forfeit is set, marks their pending
// matches in those events forfeit.
func (s *Service) removeFromOrgEvents(ctx context.Context, orgID, userID primitive.ObjectID, forfeit bool) error {
	eventIDs, err := s.events.IDsByOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if _, err := s.participants.RemoveFromEvents(ctx, eventIDs, userID); err != nil {
		return err
	}
	if !forfeit {
		return nil
	}
	n, err := s.matches.ForfeitPending(ctx, eventIDs, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("forfeited pending matches on removal",
			zap.String("org_id", orgID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Int64("matches", n))
	}
	return nil
}

func (s *Service) loadOrg(ctx context.Context, orgID primitive.ObjectID) (models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, fault.NotFound("organization not found")
	}
	return org, err
}

func (s *Service) requireAdmin(ctx context.Context, orgID, actorID primitive.ObjectID) error {
	ok, err := orgpolicy.IsAdmin(ctx, s.db, orgID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return fault.NotAuthorized("actor is not an organization admin")
	}
	return nil
}
