package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"
	"veloplan/training-app/internal/schedule"
)

// Scoring weights for activity-to-workout matching. A candidate is
// accepted as soon as its score reaches MatchThreshold; candidates are
// tried in schedule order and the first acceptable one wins.
const (
	MatchBaseScore     = 50
	MatchCategoryBonus = 20
	MatchThreshold     = 50
)

type MatcherService interface {
	MatchActivity(ctx context.Context, activity *domain.Activity) (*domain.WorkoutMatch, error)
}

type matcherService struct {
	planRepo  repository.PlanRepository
	matchRepo repository.MatchRepository
}

// NewMatcherService creates a new instance of matcherService.
func NewMatcherService(planRepo repository.PlanRepository, matchRepo repository.MatchRepository) MatcherService {
	return &matcherService{planRepo: planRepo, matchRepo: matchRepo}
}

// MatchActivity looks for a scheduled workout that the recorded activity
// plausibly fulfils and records the match. Returns nil without error
// when no candidate clears the threshold.
func (s *matcherService) MatchActivity(ctx context.Context, activity *domain.Activity) (*domain.WorkoutMatch, error) {
	plans, err := s.planRepo.GetActiveByAthlete(ctx, activity.AthleteID, activity.Date)
	if err != nil {
		return nil, err
	}

	for i := range plans {
		plan := &plans[i]
		sched := schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate)
		for _, workout := range sched[activity.Date] {
			taken, err := s.alreadyMatched(ctx, plan, &workout)
			if err != nil {
				log.Printf("WARN: skipping match candidate %s on plan %s: %v", workout.Key, plan.ID.Hex(), err)
				continue
			}
			if taken {
				continue
			}

			score := scoreCandidate(activity, &workout)
			if score < MatchThreshold {
				continue
			}

			match := &domain.WorkoutMatch{
				ActivityID:     activity.ID,
				AthleteID:      activity.AthleteID,
				PlanInstanceID: &plan.ID,
				WorkoutID:      workout.WorkoutID,
				WorkoutKey:     workout.Key,
				Type:           domain.MatchTypeAuto,
				Score:          score,
				CreatedAt:      time.Now().UTC(),
			}
			matchID, err := s.matchRepo.Create(ctx, match)
			if err != nil {
				return nil, err
			}
			match.ID = matchID
			log.Printf("INFO: matched activity %s to workout %s (plan %s, score %d)",
				activity.ID.Hex(), workout.Key, plan.ID.Hex(), score)
			return match, nil
		}
	}
	return nil, nil
}

func (s *matcherService) alreadyMatched(ctx context.Context, plan *domain.PlanInstance, w *schedule.EffectiveWorkout) (bool, error) {
	_, err := s.matchRepo.GetByPlanWorkout(ctx, plan.ID, w.WorkoutID, w.Key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// scoreCandidate rates how well an activity fits a scheduled workout.
// Every same-day candidate starts from the base score; a riding activity
// against a non-rest workout earns the category bonus, and load
// similarity (relative TSS difference) earns a graded bonus on top.
func scoreCandidate(activity *domain.Activity, workout *schedule.EffectiveWorkout) int {
	score := MatchBaseScore

	if domain.IsRidingCategory(activity.Category) && workout.Category != domain.CategoryRest {
		score += MatchCategoryBonus
	}

	score += loadSimilarityBonus(activity.TSS, workout.TSS)
	return score
}

func loadSimilarityBonus(activityTSS, workoutTSS *float64) int {
	if activityTSS == nil || workoutTSS == nil || *workoutTSS == 0 {
		return 0
	}
	diff := math.Abs(*activityTSS-*workoutTSS) / *workoutTSS
	switch {
	case diff < 0.10:
		return 20
	case diff < 0.20:
		return 15
	case diff < 0.30:
		return 10
	case diff < 0.50:
		return 5
	default:
		return 0
	}
}
