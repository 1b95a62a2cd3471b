package service

import (
	"context"
	"testing"

	"veloplan/training-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMatcherFixture(t *testing.T) (*scheduleFixture, MatcherService) {
	t.Helper()
	f := newScheduleFixture(t)
	return f, NewMatcherService(f.planRepo, f.matches)
}

func TestMatchActivityRidingSameLoad(t *testing.T) {
	f, matcher := newMatcherFixture(t)

	// Wednesday's Intervals is planned at 95 TSS; 92 is within 10%.
	activity := &domain.Activity{
		ID:        primitive.NewObjectID(),
		AthleteID: f.athleteID,
		Name:      "Morning Ride",
		Category:  domain.CategoryRide,
		Date:      "2025-03-05",
		TSS:       fptr(92),
	}

	match, err := matcher.MatchActivity(context.Background(), activity)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 90, match.Score) // 50 base + 20 category + 20 load
	assert.Equal(t, "2025-03-05:0", match.WorkoutKey)
	assert.Equal(t, domain.MatchTypeAuto, match.Type)
	require.NotNil(t, match.PlanInstanceID)
	assert.Equal(t, f.plan.ID, *match.PlanInstanceID)
	assert.Len(t, f.matches.matches, 1)
}

func TestMatchActivityBaseScoreOnly(t *testing.T) {
	f, matcher := newMatcherFixture(t)

	// Non-riding activity with no load data still clears the threshold.
	activity := &domain.Activity{
		ID:        primitive.NewObjectID(),
		AthleteID: f.athleteID,
		Name:      "Gym Session",
		Category:  "strength",
		Date:      "2025-03-05",
	}

	match, err := matcher.MatchActivity(context.Background(), activity)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 50, match.Score)
}

func TestMatchActivityLoadLadder(t *testing.T) {
	// Planned 100 TSS; bonuses step down with relative difference.
	workoutTSS := fptr(100)
	cases := []struct {
		activityTSS float64
		bonus       int
	}{
		{95, 20},  // <10%
		{85, 15},  // <20%
		{75, 10},  // <30%
		{55, 5},   // <50%
		{40, 0},   // >=50%
		{105, 20}, // symmetric
	}
	for _, tc := range cases {
		got := loadSimilarityBonus(&tc.activityTSS, workoutTSS)
		assert.Equal(t, tc.bonus, got, "activity tss %.0f", tc.activityTSS)
	}

	assert.Equal(t, 0, loadSimilarityBonus(nil, workoutTSS))
	assert.Equal(t, 0, loadSimilarityBonus(fptr(80), nil))
}

func TestMatchActivitySkipsAlreadyMatched(t *testing.T) {
	f, matcher := newMatcherFixture(t)
	ctx := context.Background()

	// Monday has two workouts; take the first slot for an earlier activity.
	first := &domain.Activity{
		ID: primitive.NewObjectID(), AthleteID: f.athleteID,
		Category: domain.CategoryRide, Date: "2025-03-03", TSS: fptr(80),
	}
	m1, err := matcher.MatchActivity(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, m1)
	assert.Equal(t, "2025-03-03:0", m1.WorkoutKey)

	// First fit moves on to the next unmatched candidate.
	second := &domain.Activity{
		ID: primitive.NewObjectID(), AthleteID: f.athleteID,
		Category: domain.CategoryRide, Date: "2025-03-03", TSS: fptr(31),
	}
	m2, err := matcher.MatchActivity(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, m2)
	assert.Equal(t, "2025-03-03:1", m2.WorkoutKey)
}

func TestMatchActivityNoWorkoutsThatDay(t *testing.T) {
	f, matcher := newMatcherFixture(t)

	activity := &domain.Activity{
		ID: primitive.NewObjectID(), AthleteID: f.athleteID,
		Category: domain.CategoryRide, Date: "2025-03-06",
	}
	match, err := matcher.MatchActivity(context.Background(), activity)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Empty(t, f.matches.matches)
}

func TestMatchActivityIgnoresOtherAthletesPlans(t *testing.T) {
	f, matcher := newMatcherFixture(t)

	activity := &domain.Activity{
		ID: primitive.NewObjectID(), AthleteID: primitive.NewObjectID(),
		Category: domain.CategoryRide, Date: "2025-03-05", TSS: fptr(95),
	}
	match, err := matcher.MatchActivity(context.Background(), activity)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Empty(t, f.matches.matches)
}

func TestMatchActivityRespectsOverrides(t *testing.T) {
	f, matcher := newMatcherFixture(t)
	ctx := context.Background()

	// Move Wednesday's workout to Friday; the matcher follows the
	// effective schedule, not the base plan.
	_, err := f.svc.Move(ctx, f.athleteID, f.plan.ID,
		WorkoutRef{Date: "2025-03-05", Index: iptr(0)},
		WorkoutRef{Date: "2025-03-07"},
	)
	require.NoError(t, err)

	onOldDate := &domain.Activity{
		ID: primitive.NewObjectID(), AthleteID: f.athleteID,
		Category: domain.CategoryRide, Date: "2025-03-05", TSS: fptr(95),
	}
	match, err := matcher.MatchActivity(ctx, onOldDate)
	require.NoError(t, err)
	assert.Nil(t, match)

	onNewDate := &domain.Activity{
		ID: primitive.NewObjectID(), AthleteID: f.athleteID,
		Category: domain.CategoryRide, Date: "2025-03-07", TSS: fptr(95),
	}
	match, err = matcher.MatchActivity(ctx, onNewDate)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "2025-03-07:0", match.WorkoutKey)
}
