package service

import (
	"context"
	"testing"
	"time"

	"veloplan/training-app/internal/builder"
	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDraftRepo struct {
	states   map[string]builder.State
	failPuts bool
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{states: make(map[string]builder.State)}
}

func draftKey(coachID primitive.ObjectID, draftID string) string {
	return coachID.Hex() + "/" + draftID
}

func (r *fakeDraftRepo) Put(_ context.Context, coachID primitive.ObjectID, draftID string, state builder.State) error {
	if r.failPuts {
		return repository.ErrUpdateFailed
	}
	r.states[draftKey(coachID, draftID)] = state
	return nil
}

func (r *fakeDraftRepo) Get(_ context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error) {
	state, ok := r.states[draftKey(coachID, draftID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &state, nil
}

func (r *fakeDraftRepo) Delete(_ context.Context, coachID primitive.ObjectID, draftID string) error {
	delete(r.states, draftKey(coachID, draftID))
	return nil
}

func TestGetDraftStartsFresh(t *testing.T) {
	svc := NewBuilderService(newFakeDraftRepo(), newFakePlanRepo(), 10)

	state, err := svc.GetDraft(context.Background(), primitive.NewObjectID(), "draft-1")
	require.NoError(t, err)
	assert.Empty(t, state.Draft.Weeks)
	assert.Equal(t, 10, state.HistoryLimit)
	assert.False(t, state.Dirty)
}

func TestApplyActionPersistsState(t *testing.T) {
	drafts := newFakeDraftRepo()
	svc := NewBuilderService(drafts, newFakePlanRepo(), 10)
	ctx := context.Background()
	coachID := primitive.NewObjectID()

	state, err := svc.ApplyAction(ctx, coachID, "draft-1", builder.AddWeek{Phase: "base"})
	require.NoError(t, err)
	require.Len(t, state.Draft.Weeks, 1)
	assert.True(t, state.Dirty)

	// Undo works across requests because history is persisted.
	state, err = svc.ApplyAction(ctx, coachID, "draft-1", builder.Undo{})
	require.NoError(t, err)
	assert.Empty(t, state.Draft.Weeks)
}

func TestSaveDraftLifecycle(t *testing.T) {
	drafts := newFakeDraftRepo()
	svc := NewBuilderService(drafts, newFakePlanRepo(), 10)
	ctx := context.Background()
	coachID := primitive.NewObjectID()

	_, err := svc.ApplyAction(ctx, coachID, "draft-1", builder.AddWeek{Phase: "base"})
	require.NoError(t, err)

	state, err := svc.SaveDraft(ctx, coachID, "draft-1")
	require.NoError(t, err)
	assert.False(t, state.Dirty)
	assert.False(t, state.Saving)

	drafts.failPuts = true
	_, err = svc.ApplyAction(ctx, coachID, "draft-1", builder.AddWeek{Phase: "build"})
	require.Error(t, err)
}

func TestCreatePlanFromDraft(t *testing.T) {
	drafts := newFakeDraftRepo()
	planRepo := newFakePlanRepo()
	svc := NewBuilderService(drafts, planRepo, 10)
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	athleteID := primitive.NewObjectID()

	_, err := svc.ApplyAction(ctx, coachID, "draft-1", builder.InitPlan{Draft: builder.Draft{Name: "Spring Base"}})
	require.NoError(t, err)
	_, err = svc.ApplyAction(ctx, coachID, "draft-1", builder.AddWeek{Phase: "base"})
	require.NoError(t, err)
	_, err = svc.ApplyAction(ctx, coachID, "draft-1", builder.AddWorkout{
		Week: 0, Day: 2,
		Placement: builder.Placement{Name: "Intervals", Category: "ride", TSS: 95},
	})
	require.NoError(t, err)

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	plan, err := svc.CreatePlanFromDraft(ctx, coachID, "draft-1", athleteID, start)
	require.NoError(t, err)

	assert.Equal(t, "Spring Base", plan.Name)
	assert.Equal(t, athleteID, plan.AthleteID)
	assert.Equal(t, coachID, plan.CoachID)
	assert.Equal(t, domain.PlanStatusActive, plan.Status)
	assert.Equal(t, start.AddDate(0, 0, 6), plan.EndDate)

	require.Len(t, plan.Weeks, 1)
	workouts := plan.Weeks[0].Workouts["wednesday"]
	require.Len(t, workouts, 1)
	assert.Equal(t, "Intervals", workouts[0].Name)
	assert.Equal(t, "2025-03-05", workouts[0].ScheduledDate)
	require.NotNil(t, workouts[0].TSS)
	assert.Equal(t, 95.0, *workouts[0].TSS)
}

func TestCreatePlanFromDraftRejectsEmptyOrInvalid(t *testing.T) {
	drafts := newFakeDraftRepo()
	svc := NewBuilderService(drafts, newFakePlanRepo(), 10)
	ctx := context.Background()
	coachID := primitive.NewObjectID()
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreatePlanFromDraft(ctx, coachID, "empty", primitive.NewObjectID(), start)
	assert.ErrorIs(t, err, ErrDraftHasNoWeek)

	// A week without a phase fails validation.
	_, err = svc.ApplyAction(ctx, coachID, "invalid", builder.AddWeek{})
	require.NoError(t, err)
	_, err = svc.CreatePlanFromDraft(ctx, coachID, "invalid", primitive.NewObjectID(), start)
	assert.ErrorIs(t, err, ErrDraftNotValid)
}
