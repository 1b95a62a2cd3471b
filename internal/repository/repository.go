package repository

import (
	"context"

	"veloplan/training-app/internal/builder"
	"veloplan/training-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound        = RepositoryError("not found")
	ErrUpdateFailed    = RepositoryError("update failed")
	ErrDeleteFailed    = RepositoryError("delete failed")
	ErrVersionConflict = RepositoryError("version conflict")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// PlanRepository stores plan instances (weeks plus override layer).
// UpdateOverrides is the single write path for schedule edits: it only
// succeeds against the version the caller read, so concurrent edits fail
// with ErrVersionConflict instead of silently last-write-winning.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.PlanInstance) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanInstance, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.PlanInstance, error)
	GetActiveByAthlete(ctx context.Context, athleteID primitive.ObjectID, onOrAfterStart string) ([]domain.PlanInstance, error)
	UpdateOverrides(ctx context.Context, planID primitive.ObjectID, overrides domain.OverrideLayer, expectedVersion int64) error
	UpdateStatus(ctx context.Context, planID primitive.ObjectID, status domain.PlanStatus) error
}

// ManualWorkoutRepository stores workouts that live outside any plan.
type ManualWorkoutRepository interface {
	Create(ctx context.Context, workout *domain.ManualWorkout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ManualWorkout, error)
	GetByAthleteAndDateRange(ctx context.Context, athleteID primitive.ObjectID, fromDate, toDate string) ([]domain.ManualWorkout, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MatchRepository stores activity-to-workout match records.
type MatchRepository interface {
	Create(ctx context.Context, match *domain.WorkoutMatch) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutMatch, error)
	// GetByPlanWorkout finds the match for a plan workout identified by
	// stable id and/or position key. Either argument may be empty.
	GetByPlanWorkout(ctx context.Context, planID primitive.ObjectID, workoutID, workoutKey string) (*domain.WorkoutMatch, error)
	// RepointToManual rewrites a plan-bound match so it references a
	// manual workout instead (extraction support).
	RepointToManual(ctx context.Context, matchID, manualWorkoutID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ActivityRepository stores recorded activity metadata.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Activity, error)
	GetByUUID(ctx context.Context, uuid string) (*domain.Activity, error)
	SetFileObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
}

// LibraryWorkoutRepository stores reusable workout templates.
type LibraryWorkoutRepository interface {
	Create(ctx context.Context, workout *domain.LibraryWorkout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.LibraryWorkout, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.LibraryWorkout, error)
}

// DraftRepository persists a coach's plan-authoring state between
// sessions. One draft state per (coach, draft id).
type DraftRepository interface {
	Put(ctx context.Context, coachID primitive.ObjectID, draftID string, state builder.State) error
	Get(ctx context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error)
	Delete(ctx context.Context, coachID primitive.ObjectID, draftID string) error
}
