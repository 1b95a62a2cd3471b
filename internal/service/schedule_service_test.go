package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"
	"veloplan/training-app/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakePlanRepo struct {
	plans       map[primitive.ObjectID]*domain.PlanInstance
	failUpdates bool
	updates     int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.PlanInstance)}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.PlanInstance) (primitive.ObjectID, error) {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	plan.Version = 1
	r.plans[plan.ID] = plan
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanInstance, error) {
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (r *fakePlanRepo) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.PlanInstance, error) {
	var out []domain.PlanInstance
	for _, p := range r.plans {
		if p.AthleteID == athleteID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) GetActiveByAthlete(_ context.Context, athleteID primitive.ObjectID, onOrAfterStart string) ([]domain.PlanInstance, error) {
	var out []domain.PlanInstance
	for _, p := range r.plans {
		if p.AthleteID == athleteID && p.Status == domain.PlanStatusActive &&
			p.StartDate.Format(schedule.DateLayout) <= onOrAfterStart {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) UpdateOverrides(_ context.Context, planID primitive.ObjectID, overrides domain.OverrideLayer, expectedVersion int64) error {
	if r.failUpdates {
		return repository.ErrUpdateFailed
	}
	plan, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	if plan.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	plan.Overrides = overrides
	plan.Version++
	r.updates++
	return nil
}

func (r *fakePlanRepo) UpdateStatus(_ context.Context, planID primitive.ObjectID, status domain.PlanStatus) error {
	plan, ok := r.plans[planID]
	if !ok {
		return repository.ErrNotFound
	}
	plan.Status = status
	return nil
}

type fakeManualRepo struct {
	workouts map[primitive.ObjectID]*domain.ManualWorkout
	deleted  []primitive.ObjectID
}

func newFakeManualRepo() *fakeManualRepo {
	return &fakeManualRepo{workouts: make(map[primitive.ObjectID]*domain.ManualWorkout)}
}

func (r *fakeManualRepo) Create(_ context.Context, w *domain.ManualWorkout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	w.ID = id
	r.workouts[id] = w
	return id, nil
}

func (r *fakeManualRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ManualWorkout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func (r *fakeManualRepo) GetByAthleteAndDateRange(_ context.Context, athleteID primitive.ObjectID, fromDate, toDate string) ([]domain.ManualWorkout, error) {
	var out []domain.ManualWorkout
	for _, w := range r.workouts {
		if w.AthleteID == athleteID && w.Date >= fromDate && w.Date <= toDate {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeManualRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeMatchRepo struct {
	matches map[primitive.ObjectID]*domain.WorkoutMatch
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[primitive.ObjectID]*domain.WorkoutMatch)}
}

func (r *fakeMatchRepo) Create(_ context.Context, m *domain.WorkoutMatch) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	m.ID = id
	r.matches[id] = m
	return id, nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutMatch, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) GetByPlanWorkout(_ context.Context, planID primitive.ObjectID, workoutID, workoutKey string) (*domain.WorkoutMatch, error) {
	for _, m := range r.matches {
		if m.PlanInstanceID == nil || *m.PlanInstanceID != planID {
			continue
		}
		if (workoutID != "" && m.WorkoutID == workoutID) || (workoutKey != "" && m.WorkoutKey == workoutKey) {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMatchRepo) RepointToManual(_ context.Context, matchID, manualWorkoutID primitive.ObjectID) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repository.ErrNotFound
	}
	m.PlanInstanceID = nil
	m.WorkoutID = ""
	m.WorkoutKey = ""
	m.ManualWorkoutID = &manualWorkoutID
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.matches, id)
	return nil
}

type fakeLibraryRepo struct {
	workouts map[primitive.ObjectID]*domain.LibraryWorkout
}

func newFakeLibraryRepo() *fakeLibraryRepo {
	return &fakeLibraryRepo{workouts: make(map[primitive.ObjectID]*domain.LibraryWorkout)}
}

func (r *fakeLibraryRepo) Create(_ context.Context, w *domain.LibraryWorkout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	w.ID = id
	r.workouts[id] = w
	return id, nil
}

func (r *fakeLibraryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.LibraryWorkout, error) {
	w, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func (r *fakeLibraryRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.LibraryWorkout, error) {
	var out []domain.LibraryWorkout
	for _, w := range r.workouts {
		if w.CoachID == coachID {
			out = append(out, *w)
		}
	}
	return out, nil
}

// --- Fixtures ---

var (
	planStart = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // a Monday
	clockNow  = time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

type scheduleFixture struct {
	svc       *scheduleService
	planRepo  *fakePlanRepo
	manual    *fakeManualRepo
	matches   *fakeMatchRepo
	library   *fakeLibraryRepo
	plan      *domain.PlanInstance
	athleteID primitive.ObjectID
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()

	athleteID := primitive.NewObjectID()
	plan := &domain.PlanInstance{
		AthleteID: athleteID,
		CoachID:   primitive.NewObjectID(),
		Name:      "Spring Base",
		Status:    domain.PlanStatusActive,
		StartDate: planStart,
		EndDate:   planStart.AddDate(0, 0, 13),
		Weeks: []domain.PlanWeek{
			{
				Number: 1,
				Phase:  "base",
				Workouts: map[string][]domain.PlanWorkout{
					"monday": {
						{ID: primitive.NewObjectID(), Name: "Endurance 1", Category: "ride", TSS: fptr(80)},
						{ID: primitive.NewObjectID(), Name: "Openers", Category: "ride", TSS: fptr(30)},
					},
					"wednesday": {
						{ID: primitive.NewObjectID(), Name: "Intervals", Category: "ride", TSS: fptr(95)},
					},
				},
			},
			{
				Number: 2,
				Phase:  "build",
				Workouts: map[string][]domain.PlanWorkout{
					"tuesday": {
						{ID: primitive.NewObjectID(), Name: "Sweet Spot", Category: "ride", TSS: fptr(70)},
					},
				},
			},
		},
	}

	planRepo := newFakePlanRepo()
	_, err := planRepo.Create(context.Background(), plan)
	require.NoError(t, err)

	manual := newFakeManualRepo()
	matches := newFakeMatchRepo()
	library := newFakeLibraryRepo()

	svc := &scheduleService{
		planRepo:    planRepo,
		manualRepo:  manual,
		matchRepo:   matches,
		libraryRepo: library,
		now:         func() time.Time { return clockNow },
	}

	return &scheduleFixture{
		svc: svc, planRepo: planRepo, manual: manual, matches: matches,
		library: library, plan: plan, athleteID: athleteID,
	}
}

// --- Tests ---

func TestMoveWithinPlan(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	result, err := f.svc.Move(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	require.NoError(t, err)
	assert.False(t, result.Extracted)

	stored := f.planRepo.plans[f.plan.ID]
	assert.Equal(t, int64(2), stored.Version)
	require.Contains(t, stored.Overrides.Moves, "2025-03-07:0")
	rec := stored.Overrides.Moves["2025-03-07:0"]
	assert.Equal(t, f.plan.Weeks[0].Workouts["wednesday"][0].ID.Hex(), rec.OriginalWorkoutID)

	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, sched["2025-03-05"])
	require.Len(t, sched["2025-03-07"], 1)
	assert.Equal(t, "Intervals", sched["2025-03-07"][0].Name)
}

func TestMoveByWorkoutID(t *testing.T) {
	f := newScheduleFixture(t)

	workoutID := f.plan.Weeks[0].Workouts["monday"][1].ID.Hex()
	result, err := f.svc.Move(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{WorkoutID: workoutID},
		WorkoutRef{Date: "2025-03-08"},
	)
	require.NoError(t, err)
	assert.False(t, result.Extracted)
	assert.Contains(t, f.planRepo.plans[f.plan.ID].Overrides.Moves, "2025-03-08:0")
}

func TestMoveRejectsPastTarget(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.svc.Move(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-01"},
	)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Equal(t, 0, f.planRepo.updates)
}

func TestMoveRejectsPastSource(t *testing.T) {
	f := newScheduleFixture(t)
	f.svc.now = func() time.Time {
		return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	}

	_, err := f.svc.Move(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-03", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Equal(t, 0, f.planRepo.updates)
}

func TestMoveAllowsSourceScheduledToday(t *testing.T) {
	// The source date string is interpreted in the server's zone, same
	// as the target date. A workout scheduled today is not past even
	// when local midnight lags UTC.
	f := newScheduleFixture(t)
	honolulu := time.FixedZone("UTC-10", -10*60*60)
	f.svc.now = func() time.Time {
		return time.Date(2025, 3, 3, 10, 0, 0, 0, honolulu)
	}

	_, err := f.svc.Move(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-03", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-05"},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, f.planRepo.updates)
}

func TestCopyRejectsPastTarget(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.svc.Copy(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-01"},
	)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Equal(t, 0, f.planRepo.updates)
}

func TestDeleteRejectsPastWorkout(t *testing.T) {
	f := newScheduleFixture(t)
	f.svc.now = func() time.Time {
		return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	}

	err := f.svc.Delete(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-03", Index: iptr(0)},
	)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Equal(t, 0, f.planRepo.updates)
}

func TestMoveRejectsUnknownWorkout(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.svc.Move(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-06", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestMoveRejectsMatchedWorkout(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	workoutID := f.plan.Weeks[0].Workouts["wednesday"][0].ID.Hex()
	_, err := f.matches.Create(ctx, &domain.WorkoutMatch{
		ActivityID:     primitive.NewObjectID(),
		AthleteID:      f.athleteID,
		PlanInstanceID: &f.plan.ID,
		WorkoutID:      workoutID,
		WorkoutKey:     "2025-03-05:0",
		Type:           domain.MatchTypeAuto,
	})
	require.NoError(t, err)

	_, err = f.svc.Move(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	assert.ErrorIs(t, err, ErrWorkoutMatched)

	// Copying the same workout is still allowed.
	result, err := f.svc.Copy(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	require.NoError(t, err)
	assert.False(t, result.Extracted)
}

func TestMoveEnforcesOwnershipAndStatus(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()
	src := WorkoutRef{Date: "2025-03-05", Index: iptr(0)}
	tgt := WorkoutRef{Date: "2025-03-07"}

	_, err := f.svc.Move(ctx, primitive.NewObjectID(), f.plan.ID, src, tgt)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)

	_, err = f.svc.Move(ctx, f.athleteID, primitive.NewObjectID(), src, tgt)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	f.planRepo.plans[f.plan.ID].Status = domain.PlanStatusCompleted
	_, err = f.svc.Move(ctx, f.athleteID, f.plan.ID, src, tgt)
	assert.ErrorIs(t, err, ErrPlanNotEditable)
}

func TestMoveOutsideBoundaryExtracts(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	result, err := f.svc.Move(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-20"}, // past the plan's end
	)
	require.NoError(t, err)
	assert.True(t, result.Extracted)
	require.NotNil(t, result.ManualWorkout)
	assert.Equal(t, "Intervals", result.ManualWorkout.Name)
	assert.Equal(t, "2025-03-20", result.ManualWorkout.Date)
	require.NotNil(t, result.ManualWorkout.SourcePlanInstanceID)
	assert.Equal(t, f.plan.ID, *result.ManualWorkout.SourcePlanInstanceID)

	// Source slot suppressed in the plan.
	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, sched["2025-03-05"])
}

func TestExtractionRollsBackOnPersistFailure(t *testing.T) {
	f := newScheduleFixture(t)
	f.planRepo.failUpdates = true

	_, err := f.svc.Move(context.Background(), f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-20"},
	)
	require.Error(t, err)

	// The manual workout created mid-flight was compensated away.
	assert.Empty(t, f.manual.workouts)
	assert.Len(t, f.manual.deleted, 1)
}

func TestMoveVersionConflict(t *testing.T) {
	f := newScheduleFixture(t)
	// Simulate a concurrent edit bumping the version after our read.
	f.planRepo.plans[f.plan.ID].Version = 7

	svcPlan, err := f.svc.getOwnedEditablePlan(context.Background(), f.athleteID, f.plan.ID)
	require.NoError(t, err)
	svcPlan.Version = 6

	err = f.svc.persistOverrides(context.Background(), svcPlan, svcPlan.Overrides)
	assert.ErrorIs(t, err, ErrConcurrentEdit)
}

func TestCopyOutsideBoundaryKeepsOriginal(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	result, err := f.svc.Copy(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-20"},
	)
	require.NoError(t, err)
	assert.True(t, result.Extracted)
	require.NotNil(t, result.ManualWorkout)

	// Copy semantics: no plan-side write at all.
	assert.Equal(t, 0, f.planRepo.updates)
	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, sched["2025-03-05"], 1)
}

func TestDeleteSuppressesWorkout(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	err := f.svc.Delete(ctx, f.athleteID, f.plan.ID, WorkoutRef{Date: "2025-03-05", Index: iptr(0)})
	require.NoError(t, err)

	stored := f.planRepo.plans[f.plan.ID]
	assert.Contains(t, stored.Overrides.Deleted, "2025-03-05:0")

	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, sched["2025-03-05"])
}

func TestInsertFromLibrary(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	lib := &domain.LibraryWorkout{
		CoachID:  f.plan.CoachID,
		Name:     "VO2 Max Repeats",
		Category: "ride",
		TSS:      110,
	}
	libID, err := f.library.Create(ctx, lib)
	require.NoError(t, err)

	result, err := f.svc.InsertFromLibrary(ctx, f.athleteID, f.plan.ID, libID, "2025-03-06")
	require.NoError(t, err)
	assert.False(t, result.Extracted)

	stored := f.planRepo.plans[f.plan.ID]
	key := "2025-03-06:100"
	require.Contains(t, stored.Overrides.Copies, key)
	rec := stored.Overrides.Copies[key]
	assert.True(t, rec.IsLibrary())
	require.NotNil(t, rec.LibraryWorkout)
	assert.Equal(t, "VO2 Max Repeats", rec.LibraryWorkout.Name)

	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, sched["2025-03-06"], 1)
	assert.Equal(t, schedule.SourceLibrary, sched["2025-03-06"][0].Source)
}

func TestInsertFromLibraryUnknownWorkout(t *testing.T) {
	f := newScheduleFixture(t)

	_, err := f.svc.InsertFromLibrary(context.Background(), f.athleteID, f.plan.ID, primitive.NewObjectID(), "2025-03-06")
	assert.ErrorIs(t, err, ErrLibraryWorkoutNotFound)
}

func TestGetEffectiveScheduleMigratesLegacyMoves(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	stored := f.planRepo.plans[f.plan.ID]
	stored.Overrides = domain.OverrideLayer{
		Moves: map[string]domain.MoveRecord{
			"2025-03-07:0": {OriginalDate: "2025-03-05", OriginalIndex: iptr(0)},
		},
	}

	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, sched["2025-03-07"], 1)
	assert.Equal(t, "Intervals", sched["2025-03-07"][0].Name)

	// The migrated record now carries the stable id.
	migrated := f.planRepo.plans[f.plan.ID].Overrides.Moves["2025-03-07:0"]
	assert.Equal(t, f.plan.Weeks[0].Workouts["wednesday"][0].ID.Hex(), migrated.OriginalWorkoutID)
}

func TestGetCalendarMergesManualWorkouts(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.manual.Create(ctx, &domain.ManualWorkout{
		AthleteID: f.athleteID,
		Name:      "Coffee Spin",
		Category:  "ride",
		Date:      "2025-03-06",
	})
	require.NoError(t, err)

	cal, err := f.svc.GetCalendar(ctx, f.athleteID, "2025-03-03", "2025-03-09")
	require.NoError(t, err)
	require.Len(t, cal.Manual, 1)
	assert.Equal(t, "Coffee Spin", cal.Manual[0].Name)
	assert.Len(t, cal.Scheduled["2025-03-03"], 2)
	assert.Empty(t, cal.Scheduled["2025-03-11"], "outside the range")

	_, err = f.svc.GetCalendar(ctx, f.athleteID, "bad", "2025-03-09")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMoveAnAlreadyMovedWorkoutRetargets(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	_, err := f.svc.Move(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	require.NoError(t, err)

	_, err = f.svc.Move(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-07", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-08"},
	)
	require.NoError(t, err)

	stored := f.planRepo.plans[f.plan.ID]
	assert.NotContains(t, stored.Overrides.Moves, "2025-03-07:0")
	require.Contains(t, stored.Overrides.Moves, "2025-03-08:0")

	sched, err := f.svc.GetEffectiveSchedule(ctx, f.athleteID, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, sched["2025-03-07"])
	require.Len(t, sched["2025-03-08"], 1)
	assert.Equal(t, "Intervals", sched["2025-03-08"][0].Name)
}

func TestErrorsAreDistinct(t *testing.T) {
	// HTTP mapping depends on these staying distinguishable.
	sentinels := []error{
		ErrPlanNotFound, ErrPlanAccessDenied, ErrPlanNotEditable,
		ErrPastDate, ErrWorkoutMatched, ErrWorkoutNotFound,
		ErrLibraryWorkoutNotFound, ErrInvalidDate, ErrConcurrentEdit,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b))
			}
		}
	}
}
