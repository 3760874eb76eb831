// internal/app/features/events/types.go
package events

import (
	"html/template"

	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newData is the view model for the "New Event" page.
type newData struct {
	formutil.Base

	OrgID   string
	OrgName string

	Name            string
	Description     string
	Visibility      string
	LowestScoreWins bool
}

// standingRow is one participant on the event page, with their stats.
type standingRow struct {
	UserID        primitive.ObjectID
	Name          string
	MMR           int
	MatchesPlayed int
	Wins          int
	Losses        int
}

// applicantRow is one pending event application, shown to org admins.
type applicantRow struct {
	UserID primitive.ObjectID
	Name   string
}

// matchRow is one match in the event's match list.
type matchRow struct {
	ID      primitive.ObjectID
	Status  string
	Players string // comma-joined display names
}

// viewData is the view model for the event page.
type viewData struct {
	viewdata.BaseVM

	ID              string
	Name            string
	DescriptionHTML template.HTML
	Visibility      string
	Status          string
	LowestScoreWins bool

	OrgID   string
	OrgName string

	IsAdmin       bool
	IsParticipant bool
	CanApply      bool

	Standings  []standingRow
	Matches    []matchRow
	Applicants []applicantRow
	Banned     []applicantRow
}
