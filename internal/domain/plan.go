package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus tracks the lifecycle of a plan instance.
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// IsTerminal reports whether the plan can no longer be edited.
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// WorkoutSource records where a workout came from.
type WorkoutSource string

const (
	SourcePlan    WorkoutSource = "plan"
	SourceLibrary WorkoutSource = "library"
	SourceManual  WorkoutSource = "manual"
)

// WeekdayNames in plan order. Week days are addressed by lowercase name
// inside a plan week; offset 0 is Monday.
var WeekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayOffset returns the 0-based day offset for a weekday name.
func WeekdayOffset(name string) (int, bool) {
	for i, n := range WeekdayNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// WorkoutSegment is one step of a structured workout (duration plus an
// intensity band expressed as factors of threshold).
type WorkoutSegment struct {
	Index           int     `bson:"index" json:"index"`
	Type            string  `bson:"type" json:"type"`
	DurationSeconds int     `bson:"duration" json:"duration"`
	StartFactor     float64 `bson:"startFactor" json:"start_factor"`
	EndFactor       float64 `bson:"endFactor" json:"end_factor"`
	Text            string  `bson:"text,omitempty" json:"text,omitempty"`
}

// PlanWorkout is a workout template inside a generated plan week.
// Each workout carries a permanent stable ID; the (date, index) position
// it resolves at is a derived view, not part of its identity.
type PlanWorkout struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name             string              `bson:"name" json:"name"`
	Category         string              `bson:"category" json:"category"` // e.g. "ride", "rest", "mixed"
	TSS              *float64            `bson:"tss,omitempty" json:"tss,omitempty"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty"`
	Segments         []WorkoutSegment    `bson:"segments,omitempty" json:"segments,omitempty"`
	ScheduledDate    string              `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"` // YYYY-MM-DD, set when resolved
	LibraryWorkoutID *primitive.ObjectID `bson:"libraryWorkoutId,omitempty" json:"libraryWorkoutId,omitempty"`
	Source           WorkoutSource       `bson:"source,omitempty" json:"source,omitempty"`
}

// PlanWeek is one week of a generated plan: a 1-based number, a training
// phase tag, and ordered workout lists keyed by weekday name.
type PlanWeek struct {
	Number   int                      `bson:"number" json:"number"`
	Phase    string                   `bson:"phase" json:"phase"` // e.g. "base", "build", "peak", "recovery"
	Notes    string                   `bson:"notes,omitempty" json:"notes,omitempty"`
	Workouts map[string][]PlanWorkout `bson:"workouts" json:"workouts"`
}

// PlanInstance is an athlete's instance of a generated plan. The Weeks
// tree is immutable once generated; all rearrangement lives in Overrides.
// Version guards read-modify-write cycles on the override layer.
type PlanInstance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	CoachID   primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Status    PlanStatus         `bson:"status" json:"status"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   time.Time          `bson:"endDate" json:"endDate"`
	Weeks     []PlanWeek         `bson:"weeks" json:"weeks"`
	Overrides OverrideLayer      `bson:"overrides,omitempty" json:"overrides,omitempty"`
	Version   int64              `bson:"version" json:"version"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContainsDate reports whether d (local-date granularity) falls within
// the instance's [StartDate, EndDate] range.
func (p *PlanInstance) ContainsDate(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(p.StartDate.Year(), p.StartDate.Month(), p.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(p.EndDate.Year(), p.EndDate.Month(), p.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// FindWorkoutByID scans the plan's weeks for a workout with the given ID.
func (p *PlanInstance) FindWorkoutByID(id string) *PlanWorkout {
	for wi := range p.Weeks {
		for _, day := range WeekdayNames {
			workouts := p.Weeks[wi].Workouts[day]
			for i := range workouts {
				if workouts[i].ID.Hex() == id {
					return &workouts[i]
				}
			}
		}
	}
	return nil
}
