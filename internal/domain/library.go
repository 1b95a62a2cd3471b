package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryWorkout is a reusable workout template owned by a coach. When an
// athlete inserts one into their schedule, a denormalized snapshot is
// written into the override layer so later resolution never depends on
// the library record still existing.
type LibraryWorkout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	TSS         float64            `bson:"tss" json:"tss"`
	DurationMin int                `bson:"durationMin" json:"durationMin"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Segments    []WorkoutSegment   `bson:"segments,omitempty" json:"segments,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot produces the denormalized form stored inside override copy
// records.
func (l *LibraryWorkout) Snapshot() *LibrarySnapshot {
	return &LibrarySnapshot{
		Name:        l.Name,
		Type:        l.Category,
		TSS:         l.TSS,
		DurationMin: l.DurationMin,
		Description: l.Description,
		Segments:    l.Segments,
	}
}
