// internal/app/features/matches/types.go
package matches

import (
	"time"

	"github.com/dalemusser/arenahub/internal/app/system/formutil"
	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// playerOption is one selectable participant on the New Match form.
type playerOption struct {
	UserID primitive.ObjectID
	Name   string
}

// newData is the view model for the "New Match" page.
type newData struct {
	formutil.Base

	EventID      string
	EventName    string
	Participants []playerOption
}

// playerRow is one player slot on the match page, in position order.
type playerRow struct {
	UserID     primitive.ObjectID
	Name       string
	Position   int
	FinalScore *int
	HasClaimed bool
}

// submissionRow is one live score claim, shown to event admins as a
// finalize target.
type submissionRow struct {
	ID          primitive.ObjectID
	Name        string
	Scores      string
	SubmittedAt time.Time
}

// viewData is the view model for the match page.
type viewData struct {
	viewdata.BaseVM

	ID     string
	Status string

	EventID         string
	EventName       string
	LowestScoreWins bool

	IsAdmin   bool
	CanSubmit bool

	Players     []playerRow
	Submissions []submissionRow
}
