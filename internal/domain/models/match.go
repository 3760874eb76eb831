// internal/domain/models/match.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Match statuses.
//
// pending → completed via score consensus or admin finalize;
// pending → forfeit via membership cascades (kick, ban, leave).
// Completed and forfeit matches never return to pending through normal
// operation; only a direct admin status override can move them.
const (
	MatchPending   = "pending"
	MatchCompleted = "completed"
	MatchForfeit   = "forfeit"
)

// ValidMatchStatus reports whether s is a recognized match status.
func ValidMatchStatus(s string) bool {
	switch s {
	case MatchPending, MatchCompleted, MatchForfeit:
		return true
	}
	return false
}

// Match is a scored contest between two or more event participants.
type Match struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	EventID     primitive.ObjectID `bson:"event_id" json:"event_id"`
	Status      string             `bson:"status" json:"status"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// MatchPlayer links a user to a match. Position is 1-based and stable;
// it aligns submitted score arrays to players. Exactly one document per
// (match_id, user_id). FinalScore is nil until the match completes.
type MatchPlayer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MatchID    primitive.ObjectID `bson:"match_id" json:"match_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Position   int                `bson:"position" json:"position"`
	FinalScore *int               `bson:"final_score,omitempty" json:"final_score,omitempty"`
}

// MatchSubmission is a player's current claim for a match outcome. At most
// one live document per (match_id, user_id): resubmitting deletes the old
// claim before inserting the new one.
//
// Scores holds the parsed array (index aligned to player position);
// RawScores is the canonical encoding the consensus check compares
// byte-for-byte.
type MatchSubmission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MatchID     primitive.ObjectID `bson:"match_id" json:"match_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Scores      []int              `bson:"scores" json:"scores"`
	RawScores   string             `bson:"raw_scores" json:"raw_scores"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
}
