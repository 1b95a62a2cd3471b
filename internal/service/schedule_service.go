package service

import (
	"context"
	"errors"
	"log"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"
	"veloplan/training-app/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound           = errors.New("plan instance not found")
	ErrPlanAccessDenied       = errors.New("plan instance does not belong to this athlete")
	ErrPlanNotEditable        = errors.New("plan instance is completed or cancelled")
	ErrPastDate               = errors.New("date is in the past")
	ErrWorkoutMatched         = errors.New("workout already has a matched activity; copy it instead of moving")
	ErrWorkoutNotFound        = errors.New("workout not found in schedule")
	ErrLibraryWorkoutNotFound = errors.New("library workout not found")
	ErrInvalidDate            = errors.New("invalid date, expected YYYY-MM-DD")
	ErrConcurrentEdit         = errors.New("schedule was modified concurrently, reload and retry")
)

// WorkoutRef addresses a workout in a schedule, either by position
// (date plus optional index) or by stable workout id.
type WorkoutRef struct {
	Date      string
	Index     *int
	WorkoutID string
}

// EditResult reports the outcome of a move/copy operation. Extracted is
// set when the target date fell outside the plan boundaries and the
// workout became (or was duplicated as) a standalone manual workout.
type EditResult struct {
	Extracted     bool
	ManualWorkout *domain.ManualWorkout
}

// Calendar is the merged view of an athlete's date range: resolved plan
// workouts plus standalone manual workouts.
type Calendar struct {
	Scheduled schedule.Schedule      `json:"scheduled"`
	Manual    []domain.ManualWorkout `json:"manual"`
}

type ScheduleService interface {
	GetEffectiveSchedule(ctx context.Context, athleteID, planID primitive.ObjectID) (schedule.Schedule, error)
	GetCalendar(ctx context.Context, athleteID primitive.ObjectID, fromDate, toDate string) (*Calendar, error)
	Move(ctx context.Context, athleteID, planID primitive.ObjectID, source, target WorkoutRef) (*EditResult, error)
	Copy(ctx context.Context, athleteID, planID primitive.ObjectID, source, target WorkoutRef) (*EditResult, error)
	Delete(ctx context.Context, athleteID, planID primitive.ObjectID, target WorkoutRef) error
	InsertFromLibrary(ctx context.Context, athleteID, planID, libraryWorkoutID primitive.ObjectID, targetDate string) (*EditResult, error)
}

// --- Service Implementation ---

// scheduleService implements the ScheduleService interface. All edits go
// through a shared validation pipeline and end in a single versioned
// write of the override layer; the base plan weeks are never rewritten.
type scheduleService struct {
	planRepo    repository.PlanRepository
	manualRepo  repository.ManualWorkoutRepository
	matchRepo   repository.MatchRepository
	libraryRepo repository.LibraryWorkoutRepository
	now         func() time.Time
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	planRepo repository.PlanRepository,
	manualRepo repository.ManualWorkoutRepository,
	matchRepo repository.MatchRepository,
	libraryRepo repository.LibraryWorkoutRepository,
) ScheduleService {
	return &scheduleService{
		planRepo:    planRepo,
		manualRepo:  manualRepo,
		matchRepo:   matchRepo,
		libraryRepo: libraryRepo,
		now:         time.Now,
	}
}

// === Schedule Resolution ===

// GetEffectiveSchedule resolves the athlete's current schedule for a
// plan. Legacy index-addressed move records are migrated to stable-id
// addressing on the way through; the migrated layer is persisted
// best-effort.
func (s *scheduleService) GetEffectiveSchedule(ctx context.Context, athleteID, planID primitive.ObjectID) (schedule.Schedule, error) {
	plan, err := s.getOwnedPlan(ctx, athleteID, planID)
	if err != nil {
		return nil, err
	}

	migrated, changed := schedule.MigrateLegacyOverrides(plan.Weeks, &plan.Overrides, plan.StartDate)
	if changed {
		if err := s.planRepo.UpdateOverrides(ctx, plan.ID, *migrated, plan.Version); err != nil {
			// Migration is repeatable; a lost race here just defers it.
			log.Printf("WARN: legacy override migration for plan %s not persisted: %v", plan.ID.Hex(), err)
		}
		plan.Overrides = *migrated
	}

	return schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate), nil
}

// GetCalendar merges the athlete's resolved active-plan workouts with
// their standalone manual workouts over a date range.
func (s *scheduleService) GetCalendar(ctx context.Context, athleteID primitive.ObjectID, fromDate, toDate string) (*Calendar, error) {
	if _, err := time.Parse(schedule.DateLayout, fromDate); err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := time.Parse(schedule.DateLayout, toDate); err != nil {
		return nil, ErrInvalidDate
	}

	plans, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	merged := make(schedule.Schedule)
	for i := range plans {
		plan := &plans[i]
		if plan.Status != domain.PlanStatusActive {
			continue
		}
		for date, workouts := range schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate) {
			if date < fromDate || date > toDate {
				continue
			}
			merged[date] = append(merged[date], workouts...)
		}
	}

	manual, err := s.manualRepo.GetByAthleteAndDateRange(ctx, athleteID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	return &Calendar{Scheduled: merged, Manual: manual}, nil
}

// === Edit Operations ===

// Move relocates a workout to a new date. Within plan boundaries this is
// a pure override-layer rewrite; outside them the workout is extracted
// into a standalone manual workout.
func (s *scheduleService) Move(ctx context.Context, athleteID, planID primitive.ObjectID, source, target WorkoutRef) (*EditResult, error) {
	plan, err := s.getOwnedEditablePlan(ctx, athleteID, planID)
	if err != nil {
		return nil, err
	}

	targetDay, err := s.futureDate(target.Date)
	if err != nil {
		return nil, err
	}

	sched := schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate)
	src := locate(sched, source)
	if src == nil {
		return nil, ErrWorkoutNotFound
	}

	// Moving cannot rewrite history: the source slot must not be in the
	// past either.
	if _, err := s.futureDate(src.Date); err != nil {
		return nil, err
	}

	// A matched workout stays put; the athlete is told to copy instead.
	existingMatch, err := s.findMatch(ctx, planID, src)
	if err != nil {
		return nil, err
	}
	if existingMatch != nil {
		return nil, ErrWorkoutMatched
	}

	if !plan.ContainsDate(targetDay) {
		return s.extractMove(ctx, plan, src, target.Date)
	}

	overrides := cloneLayer(plan.Overrides)

	targetIndex := s.pickIndex(sched, &overrides, target, 0)
	targetKey := schedule.FormatKey(target.Date, targetIndex)

	switch src.Source {
	case schedule.SourceMoved:
		// Re-moving a moved workout: retarget the existing record.
		rec := overrides.Moves[src.Key]
		delete(overrides.Moves, src.Key)
		rec.MovedAt = s.now().UTC()
		overrides.Moves[targetKey] = rec
	case schedule.SourceCopied, schedule.SourceLibrary:
		// Moving an override-created workout: relocate its copy record.
		rec := overrides.Copies[src.Key]
		delete(overrides.Copies, src.Key)
		overrides.Copies[targetKey] = rec
	default:
		idx := src.Index
		overrides.Moves[targetKey] = domain.MoveRecord{
			OriginalWorkoutID: src.WorkoutID,
			OriginalDate:      src.Date,
			OriginalIndex:     &idx,
			MovedAt:           s.now().UTC(),
		}
	}
	removeDeleted(&overrides, targetKey)

	if err := s.persistOverrides(ctx, plan, overrides); err != nil {
		return nil, err
	}

	log.Printf("AUDIT: athlete=%s plan=%s op=move source=%s target=%s outcome=ok",
		athleteID.Hex(), planID.Hex(), src.Key, targetKey)
	return &EditResult{}, nil
}

// Copy duplicates a workout onto a new date. The original is untouched,
// so copying is permitted even for matched workouts.
func (s *scheduleService) Copy(ctx context.Context, athleteID, planID primitive.ObjectID, source, target WorkoutRef) (*EditResult, error) {
	plan, err := s.getOwnedEditablePlan(ctx, athleteID, planID)
	if err != nil {
		return nil, err
	}

	targetDay, err := s.futureDate(target.Date)
	if err != nil {
		return nil, err
	}

	sched := schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate)
	src := locate(sched, source)
	if src == nil {
		return nil, ErrWorkoutNotFound
	}

	if !plan.ContainsDate(targetDay) {
		manual := manualFromEffective(plan, src, target.Date)
		manualID, err := s.manualRepo.Create(ctx, manual)
		if err != nil {
			return nil, err
		}
		manual.ID = manualID
		log.Printf("AUDIT: athlete=%s plan=%s op=copy source=%s target=%s outcome=ok extracted=true",
			athleteID.Hex(), planID.Hex(), src.Key, target.Date)
		return &EditResult{Extracted: true, ManualWorkout: manual}, nil
	}

	overrides := cloneLayer(plan.Overrides)

	targetIndex := s.pickIndex(sched, &overrides, target, 0)
	targetKey := schedule.FormatKey(target.Date, targetIndex)

	if rec, ok := overrides.Copies[src.Key]; ok {
		// Copying a copy: duplicate the record (library snapshot included)
		// so the new entry never depends on the first one.
		rec.CopiedAt = s.now().UTC()
		overrides.Copies[targetKey] = rec
	} else {
		srcDate, srcIndex, ok := baseSlotOf(plan, src)
		if !ok {
			return nil, ErrWorkoutNotFound
		}
		overrides.Copies[targetKey] = domain.CopyRecord{
			SourceDate:  srcDate,
			SourceIndex: &srcIndex,
			CopiedAt:    s.now().UTC(),
		}
	}
	removeDeleted(&overrides, targetKey)

	if err := s.persistOverrides(ctx, plan, overrides); err != nil {
		return nil, err
	}

	log.Printf("AUDIT: athlete=%s plan=%s op=copy source=%s target=%s outcome=ok",
		athleteID.Hex(), planID.Hex(), src.Key, targetKey)
	return &EditResult{}, nil
}

// Delete suppresses a workout from the effective schedule. The base plan
// keeps the workout; only the override layer records the suppression.
func (s *scheduleService) Delete(ctx context.Context, athleteID, planID primitive.ObjectID, target WorkoutRef) error {
	plan, err := s.getOwnedEditablePlan(ctx, athleteID, planID)
	if err != nil {
		return err
	}

	sched := schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate)
	tgt := locate(sched, target)
	if tgt == nil {
		return ErrWorkoutNotFound
	}
	if _, err := s.futureDate(tgt.Date); err != nil {
		return err
	}

	overrides := cloneLayer(plan.Overrides)
	if !overrides.IsDeleted(tgt.Key) {
		overrides.Deleted = append(overrides.Deleted, tgt.Key)
	}

	if err := s.persistOverrides(ctx, plan, overrides); err != nil {
		return err
	}

	log.Printf("AUDIT: athlete=%s plan=%s op=delete target=%s outcome=ok",
		athleteID.Hex(), planID.Hex(), tgt.Key)
	return nil
}

// InsertFromLibrary places a library workout onto a schedule date. The
// override entry carries a full snapshot so resolution never re-fetches
// the library.
func (s *scheduleService) InsertFromLibrary(ctx context.Context, athleteID, planID, libraryWorkoutID primitive.ObjectID, targetDate string) (*EditResult, error) {
	plan, err := s.getOwnedEditablePlan(ctx, athleteID, planID)
	if err != nil {
		return nil, err
	}

	targetDay, err := s.futureDate(targetDate)
	if err != nil {
		return nil, err
	}

	lib, err := s.libraryRepo.GetByID(ctx, libraryWorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLibraryWorkoutNotFound
		}
		return nil, err
	}

	if !plan.ContainsDate(targetDay) {
		tss := lib.TSS
		manual := &domain.ManualWorkout{
			AthleteID:            plan.AthleteID,
			Name:                 lib.Name,
			Category:             lib.Category,
			TSS:                  &tss,
			Description:          lib.Description,
			Segments:             lib.Segments,
			Date:                 targetDate,
			SourcePlanInstanceID: &plan.ID,
		}
		manualID, err := s.manualRepo.Create(ctx, manual)
		if err != nil {
			return nil, err
		}
		manual.ID = manualID
		return &EditResult{Extracted: true, ManualWorkout: manual}, nil
	}

	overrides := cloneLayer(plan.Overrides)

	sched := schedule.Resolve(plan.Weeks, &plan.Overrides, plan.StartDate)
	targetIndex := s.pickIndex(sched, &overrides, WorkoutRef{Date: targetDate}, schedule.LibraryIndexBase)
	targetKey := schedule.FormatKey(targetDate, targetIndex)

	overrides.Copies[targetKey] = domain.CopyRecord{
		SourceDate:     domain.LibrarySourcePrefix + libraryWorkoutID.Hex(),
		CopiedAt:       s.now().UTC(),
		LibraryWorkout: lib.Snapshot(),
	}
	removeDeleted(&overrides, targetKey)

	if err := s.persistOverrides(ctx, plan, overrides); err != nil {
		return nil, err
	}

	log.Printf("AUDIT: athlete=%s plan=%s op=library-insert library=%s target=%s outcome=ok",
		athleteID.Hex(), planID.Hex(), libraryWorkoutID.Hex(), targetKey)
	return &EditResult{}, nil
}

// === Extraction ===

// extractMove converts an in-plan workout into a standalone manual
// workout because the target date left the plan's boundaries. The two
// stores have no shared transaction; a failed plan-side write triggers a
// compensating delete of the just-created manual workout.
func (s *scheduleService) extractMove(ctx context.Context, plan *domain.PlanInstance, src *schedule.EffectiveWorkout, targetDate string) (*EditResult, error) {
	manual := manualFromEffective(plan, src, targetDate)
	manualID, err := s.manualRepo.Create(ctx, manual)
	if err != nil {
		return nil, err
	}
	manual.ID = manualID

	// Matches recorded under the manual linking scheme may still
	// reference this workout; they follow it out of the plan.
	if m, err := s.findMatch(ctx, plan.ID, src); err == nil && m != nil {
		if err := s.matchRepo.RepointToManual(ctx, m.ID, manualID); err != nil {
			log.Printf("WARN: failed to repoint match %s to manual workout %s: %v", m.ID.Hex(), manualID.Hex(), err)
		}
	}

	overrides := cloneLayer(plan.Overrides)
	if !overrides.IsDeleted(src.Key) {
		overrides.Deleted = append(overrides.Deleted, src.Key)
	}

	if err := s.persistOverrides(ctx, plan, overrides); err != nil {
		// Compensating rollback: without it the manual workout would be
		// an orphan duplicating an unmoved plan workout.
		if delErr := s.manualRepo.Delete(ctx, manualID); delErr != nil {
			log.Printf("CRITICAL: orphaned manual workout %s after failed extraction of plan %s: %v",
				manualID.Hex(), plan.ID.Hex(), delErr)
		}
		return nil, err
	}

	log.Printf("AUDIT: athlete=%s plan=%s op=move source=%s target=%s outcome=ok extracted=true manual=%s",
		plan.AthleteID.Hex(), plan.ID.Hex(), src.Key, targetDate, manualID.Hex())
	return &EditResult{Extracted: true, ManualWorkout: manual}, nil
}

// === Validation Helpers ===

func (s *scheduleService) getOwnedPlan(ctx context.Context, athleteID, planID primitive.ObjectID) (*domain.PlanInstance, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.AthleteID != athleteID && plan.CoachID != athleteID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func (s *scheduleService) getOwnedEditablePlan(ctx context.Context, athleteID, planID primitive.ObjectID) (*domain.PlanInstance, error) {
	plan, err := s.getOwnedPlan(ctx, athleteID, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status.IsTerminal() {
		return nil, ErrPlanNotEditable
	}
	return plan, nil
}

// today returns the server-local date at midnight.
func (s *scheduleService) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// futureDate parses a date string and rejects dates before today.
func (s *scheduleService) futureDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(schedule.DateLayout, date, s.now().Location())
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if day.Before(s.today()) {
		return time.Time{}, ErrPastDate
	}
	return day, nil
}

func (s *scheduleService) findMatch(ctx context.Context, planID primitive.ObjectID, w *schedule.EffectiveWorkout) (*domain.WorkoutMatch, error) {
	m, err := s.matchRepo.GetByPlanWorkout(ctx, planID, w.WorkoutID, w.Key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *scheduleService) persistOverrides(ctx context.Context, plan *domain.PlanInstance, overrides domain.OverrideLayer) error {
	err := s.planRepo.UpdateOverrides(ctx, plan.ID, overrides, plan.Version)
	if errors.Is(err, repository.ErrVersionConflict) {
		return ErrConcurrentEdit
	}
	return err
}

// cloneLayer deep-copies an override layer so edits never alias the
// plan the repository handed out.
func cloneLayer(layer domain.OverrideLayer) domain.OverrideLayer {
	out := domain.OverrideLayer{
		Moves:  make(map[string]domain.MoveRecord, len(layer.Moves)),
		Copies: make(map[string]domain.CopyRecord, len(layer.Copies)),
	}
	for k, v := range layer.Moves {
		out.Moves[k] = v
	}
	for k, v := range layer.Copies {
		out.Copies[k] = v
	}
	out.Deleted = append([]string(nil), layer.Deleted...)
	return out
}

// pickIndex chooses the slot index for a new override entry at the
// target date: the requested index if given, otherwise the first index
// at or above base not taken by a resolved workout or an override key.
func (s *scheduleService) pickIndex(sched schedule.Schedule, overrides *domain.OverrideLayer, target WorkoutRef, base int) int {
	if target.Index != nil && *target.Index >= base {
		return *target.Index
	}
	used := make(map[int]bool)
	for _, w := range sched[target.Date] {
		used[w.Index] = true
	}
	markKey := func(key string) {
		if d, i, err := schedule.ParseKey(key); err == nil && d == target.Date {
			used[i] = true
		}
	}
	for key := range overrides.Moves {
		markKey(key)
	}
	for key := range overrides.Copies {
		markKey(key)
	}
	for _, key := range overrides.Deleted {
		markKey(key)
	}
	idx := base
	for used[idx] {
		idx++
	}
	return idx
}

// --- Free Helpers ---

// locate finds the referenced workout in a resolved schedule, by stable
// id when given, otherwise by position key.
func locate(sched schedule.Schedule, ref WorkoutRef) *schedule.EffectiveWorkout {
	if ref.WorkoutID != "" {
		for date := range sched {
			for i := range sched[date] {
				if sched[date][i].WorkoutID == ref.WorkoutID {
					return &sched[date][i]
				}
			}
		}
		return nil
	}
	if ref.Date == "" || ref.Index == nil {
		return nil
	}
	return sched.WorkoutAt(schedule.FormatKey(ref.Date, *ref.Index))
}

// baseSlotOf finds the base-plan (date, index) coordinates backing an
// effective workout, following a move back to its original slot.
func baseSlotOf(plan *domain.PlanInstance, w *schedule.EffectiveWorkout) (string, int, bool) {
	if w.Source == schedule.SourcePlan {
		return w.Date, w.Index, true
	}
	if w.WorkoutID == "" {
		return "", 0, false
	}
	for wi := range plan.Weeks {
		week := &plan.Weeks[wi]
		for _, day := range domain.WeekdayNames {
			offset, _ := domain.WeekdayOffset(day)
			date := plan.StartDate.AddDate(0, 0, (week.Number-1)*7+offset).Format(schedule.DateLayout)
			workouts := week.Workouts[day]
			for i := range workouts {
				if workouts[i].ID.Hex() == w.WorkoutID {
					return date, i, true
				}
			}
		}
	}
	return "", 0, false
}

func manualFromEffective(plan *domain.PlanInstance, w *schedule.EffectiveWorkout, date string) *domain.ManualWorkout {
	return &domain.ManualWorkout{
		AthleteID:            plan.AthleteID,
		Name:                 w.Name,
		Category:             w.Category,
		TSS:                  w.TSS,
		Description:          w.Description,
		Segments:             w.Segments,
		Date:                 date,
		SourcePlanInstanceID: &plan.ID,
	}
}

func removeDeleted(overrides *domain.OverrideLayer, key string) {
	for i, k := range overrides.Deleted {
		if k == key {
			overrides.Deleted = append(append([]string(nil), overrides.Deleted[:i]...), overrides.Deleted[i+1:]...)
			return
		}
	}
}
