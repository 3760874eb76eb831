// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/arenahub/internal/app/store/audit"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	ID         string
	Timestamp  time.Time
	Category   string
	EventType  string
	ActorName  string // resolved from ActorID
	TargetName string // resolved from UserID
	EventName  string // resolved from the tournament event ID, when set
	IP         string
	Success    bool
	Details    map[string]string
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	OrgID   string
	OrgName string

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	// Filter options
	Categories []categoryOption
	EventTypes []string

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	Shown      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryMembership, Label: "Membership"},
		{Value: audit.CategoryMatch, Label: "Matches"},
		{Value: audit.CategoryAuth, Label: "Authentication"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLogout,
	}

	membershipEvents := []string{
		audit.EventOrgCreated,
		audit.EventOrgUpdated,
		audit.EventApplicationCreated,
		audit.EventApplicationAccepted,
		audit.EventApplicationRejected,
		audit.EventMemberPromoted,
		audit.EventAdminDemoted,
		audit.EventMemberKicked,
		audit.EventMemberLeft,
		audit.EventUserBanned,
		audit.EventUserUnbanned,
		audit.EventEventCreated,
		audit.EventEventUpdated,
	}

	matchEvents := []string{
		audit.EventMatchCreated,
		audit.EventScoreSubmitted,
		audit.EventMatchCompleted,
		audit.EventMatchForfeit,
		audit.EventMatchStatusSet,
		audit.EventMatchesForfeited,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryMembership:
		return membershipEvents
	case audit.CategoryMatch:
		return matchEvents
	case "":
		all := make([]string, 0, len(membershipEvents)+len(matchEvents)+len(authEvents))
		all = append(all, membershipEvents...)
		all = append(all, matchEvents...)
		all = append(all, authEvents...)
		return all
	default:
		return nil
	}
}
