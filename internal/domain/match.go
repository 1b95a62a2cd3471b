package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchType distinguishes matches made by the auto-matcher from ones the
// athlete linked by hand.
type MatchType string

const (
	MatchTypeAuto   MatchType = "auto"
	MatchTypeManual MatchType = "manual"
)

// WorkoutMatch links one recorded activity to one workout. The workout
// side is identified either by plan instance + workout key/stable id, or
// by a manual-workout id after an extraction re-pointed it. At most one
// match per workout identity is expected; a match gates moving the
// matched workout.
type WorkoutMatch struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ActivityID      primitive.ObjectID  `bson:"activityId" json:"activityId"`
	AthleteID       primitive.ObjectID  `bson:"athleteId" json:"athleteId"`
	PlanInstanceID  *primitive.ObjectID `bson:"planInstanceId,omitempty" json:"planInstanceId,omitempty"`
	WorkoutID       string              `bson:"workoutId,omitempty" json:"workoutId,omitempty"`   // stable plan workout id (hex), when known
	WorkoutKey      string              `bson:"workoutKey,omitempty" json:"workoutKey,omitempty"` // "<date>:<index>" position the match was made at
	ManualWorkoutID *primitive.ObjectID `bson:"manualWorkoutId,omitempty" json:"manualWorkoutId,omitempty"`
	Type            MatchType           `bson:"type" json:"type"`
	Score           int                 `bson:"score" json:"score"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}
