// internal/app/features/organizations/types.go
package organizations

import (
	"html/template"

	"github.com/dalemusser/arenahub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/arenahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listItem is a single row in the organizations directory.
type listItem struct {
	ID           primitive.ObjectID
	Name         string
	NameCI       string // case-insensitive name for cursor building
	Visibility   string
	MemberCount  int64
	EventCount   int64
}

// listData is the view model for the directory page.
type listData struct {
	viewdata.BaseVM

	Q     string
	Items []listItem

	// Pagination
	Shown      int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevCursor string
	NextCursor string
	RangeStart int
	RangeEnd   int
	PrevStart  int
	NextStart  int
}

// newData is the view model for the "New Organization" page.
type newData struct {
	formutil.Base

	Name        string
	Description string
	Visibility  string
}

// editData is the view model for the "Edit Organization" page.
type editData struct {
	formutil.Base

	ID          string
	Name        string
	Description string
	Visibility  string
}

// rosterRow is one member on the organization page.
type rosterRow struct {
	UserID primitive.ObjectID
	Name   string
	Role   string
}

// applicantRow is one pending application, shown to admins.
type applicantRow struct {
	UserID primitive.ObjectID
	Name   string
}

// viewData is the view model for the organization page. Role is the
// viewer's resolved standing and drives which controls render.
type viewData struct {
	viewdata.BaseVM

	ID              string
	Name            string
	DescriptionHTML template.HTML
	Visibility      string

	Role     orgpolicy.Role
	IsAdmin  bool
	CanApply bool

	Roster     []rosterRow
	Events     []models.Event
	Applicants []applicantRow
	Banned     []applicantRow
}
