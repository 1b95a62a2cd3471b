package service

import (
	"context"
	"errors"
	"log"
	"time"

	"veloplan/training-app/internal/builder"
	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"
	"veloplan/training-app/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrDraftNotFound  = errors.New("draft not found")
	ErrDraftNotValid  = errors.New("draft does not pass validation")
	ErrDraftHasNoWeek = errors.New("draft has no weeks")
)

type BuilderService interface {
	GetDraft(ctx context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error)
	ApplyAction(ctx context.Context, coachID primitive.ObjectID, draftID string, action builder.Action) (*builder.State, error)
	SaveDraft(ctx context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error)
	DiscardDraft(ctx context.Context, coachID primitive.ObjectID, draftID string) error
	CreatePlanFromDraft(ctx context.Context, coachID primitive.ObjectID, draftID string, athleteID primitive.ObjectID, startDate time.Time) (*domain.PlanInstance, error)
}

// --- Service Implementation ---

// builderService implements the BuilderService interface. All draft
// transitions go through the pure reducer; this layer only loads and
// persists the resulting state.
type builderService struct {
	draftRepo    repository.DraftRepository
	planRepo     repository.PlanRepository
	historyLimit int
}

// NewBuilderService creates a new instance of builderService.
func NewBuilderService(draftRepo repository.DraftRepository, planRepo repository.PlanRepository, historyLimit int) BuilderService {
	return &builderService{
		draftRepo:    draftRepo,
		planRepo:     planRepo,
		historyLimit: historyLimit,
	}
}

// GetDraft loads the coach's authoring state, starting a fresh one if
// none is stored yet.
func (s *builderService) GetDraft(ctx context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error) {
	state, err := s.draftRepo.Get(ctx, coachID, draftID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fresh := builder.NewState(s.historyLimit)
			return &fresh, nil
		}
		return nil, err
	}
	if state.HistoryLimit <= 0 {
		state.HistoryLimit = s.historyLimit
	}
	return state, nil
}

// ApplyAction runs one reducer step and persists the new state.
func (s *builderService) ApplyAction(ctx context.Context, coachID primitive.ObjectID, draftID string, action builder.Action) (*builder.State, error) {
	state, err := s.GetDraft(ctx, coachID, draftID)
	if err != nil {
		return nil, err
	}

	next := builder.Reduce(*state, action)
	if err := s.draftRepo.Put(ctx, coachID, draftID, next); err != nil {
		return nil, err
	}
	return &next, nil
}

// SaveDraft marks the draft saved after a successful persist, or records
// the failure in the state so the client can surface it.
func (s *builderService) SaveDraft(ctx context.Context, coachID primitive.ObjectID, draftID string) (*builder.State, error) {
	state, err := s.GetDraft(ctx, coachID, draftID)
	if err != nil {
		return nil, err
	}

	saving := builder.Reduce(*state, builder.MarkSaving{})
	if err := s.draftRepo.Put(ctx, coachID, draftID, saving); err != nil {
		failed := builder.Reduce(saving, builder.SaveError{Err: err.Error()})
		return &failed, err
	}

	saved := builder.Reduce(saving, builder.MarkSaved{})
	if err := s.draftRepo.Put(ctx, coachID, draftID, saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *builderService) DiscardDraft(ctx context.Context, coachID primitive.ObjectID, draftID string) error {
	return s.draftRepo.Delete(ctx, coachID, draftID)
}

// CreatePlanFromDraft materializes the draft as a plan instance for an
// athlete. The draft must validate cleanly and have at least one week.
func (s *builderService) CreatePlanFromDraft(ctx context.Context, coachID primitive.ObjectID, draftID string, athleteID primitive.ObjectID, startDate time.Time) (*domain.PlanInstance, error) {
	state, err := s.GetDraft(ctx, coachID, draftID)
	if err != nil {
		return nil, err
	}
	if len(state.Draft.Weeks) == 0 {
		return nil, ErrDraftHasNoWeek
	}
	if problems := builder.Reduce(*state, builder.Validate{}).Validation; len(problems) > 0 {
		log.Printf("WARN: draft %s failed validation: %v", draftID, problems)
		return nil, ErrDraftNotValid
	}

	plan := &domain.PlanInstance{
		AthleteID: athleteID,
		CoachID:   coachID,
		Name:      state.Draft.Name,
		Status:    domain.PlanStatusActive,
		StartDate: startDate,
		EndDate:   startDate.AddDate(0, 0, len(state.Draft.Weeks)*7-1),
		Weeks:     weeksFromDraft(state.Draft, startDate),
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID

	log.Printf("INFO: created plan %s for athlete %s from draft %s (%d weeks)",
		planID.Hex(), athleteID.Hex(), draftID, len(plan.Weeks))
	return plan, nil
}

// weeksFromDraft converts authored weeks into plan weeks. Placement ids
// are authoring-session identities; the plan repository assigns fresh
// stable ObjectIDs on insert.
func weeksFromDraft(draft builder.Draft, startDate time.Time) []domain.PlanWeek {
	weeks := make([]domain.PlanWeek, 0, len(draft.Weeks))
	for _, w := range draft.Weeks {
		week := domain.PlanWeek{
			Number:   w.Number,
			Phase:    w.Phase,
			Notes:    w.Notes,
			Workouts: make(map[string][]domain.PlanWorkout),
		}
		for day, placements := range w.Days {
			if len(placements) == 0 {
				continue
			}
			name := domain.WeekdayNames[day]
			date := startDate.AddDate(0, 0, (w.Number-1)*7+day).Format(schedule.DateLayout)
			workouts := make([]domain.PlanWorkout, 0, len(placements))
			for _, p := range placements {
				tss := p.TSS
				pw := domain.PlanWorkout{
					Name:          p.Name,
					Category:      p.Category,
					TSS:           &tss,
					ScheduledDate: date,
					Source:        domain.SourcePlan,
				}
				if p.LibraryWorkoutID != "" {
					if libID, err := primitive.ObjectIDFromHex(p.LibraryWorkoutID); err == nil {
						pw.LibraryWorkoutID = &libID
						pw.Source = domain.SourceLibrary
					}
				}
				workouts = append(workouts, pw)
			}
			week.Workouts[name] = workouts
		}
		weeks = append(weeks, week)
	}
	return weeks
}
