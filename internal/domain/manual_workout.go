package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ManualWorkout is a standalone workout that lives independently of any
// plan instance. It is created ad hoc by the athlete, or extracted from a
// plan when an edit pushed a workout outside the plan's date boundaries
// (SourcePlanInstanceID keeps the provenance in that case).
type ManualWorkout struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AthleteID            primitive.ObjectID  `bson:"athleteId" json:"athleteId"`
	Name                 string              `bson:"name" json:"name"`
	Category             string              `bson:"category" json:"category"`
	TSS                  *float64            `bson:"tss,omitempty" json:"tss,omitempty"`
	Description          string              `bson:"description,omitempty" json:"description,omitempty"`
	Segments             []WorkoutSegment    `bson:"segments,omitempty" json:"segments,omitempty"`
	Date                 string              `bson:"date" json:"date"` // YYYY-MM-DD
	SourcePlanInstanceID *primitive.ObjectID `bson:"sourcePlanInstanceId,omitempty" json:"sourcePlanInstanceId,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}
