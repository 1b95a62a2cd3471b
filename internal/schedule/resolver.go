// Package schedule derives the per-date schedule an athlete actually
// sees from an immutable plan and its override layer.
//
// Resolve is a total function: it never fails on a persisted override
// layer, however stale. Dangling move/copy references are dropped and a
// missing library snapshot yields a fixed placeholder. Resolving twice
// with identical inputs yields identical output, so callers may re-derive
// freely instead of caching.
package schedule

import (
	"sort"
	"time"

	"veloplan/training-app/internal/domain"
)

// Effective workout source tags.
const (
	SourcePlan    = "plan"
	SourceMoved   = "moved"
	SourceCopied  = "copied"
	SourceLibrary = "library"
)

// Placeholder used when a library copy record has lost its snapshot.
const (
	PlaceholderName     = "Library Workout"
	PlaceholderCategory = "mixed"
	PlaceholderTSS      = 50.0
)

// EffectiveWorkout is one resolved schedule entry. Key is its addressable
// identity ("<date>:<index>"); WorkoutID carries the stable plan workout
// id when the entry is backed by a base workout, and is empty for
// synthesized copies whose identity is the key itself.
type EffectiveWorkout struct {
	Key              string                  `json:"key"`
	Date             string                  `json:"date"`
	Index            int                     `json:"index"`
	WorkoutID        string                  `json:"workoutId,omitempty"`
	Name             string                  `json:"name"`
	Category         string                  `json:"category"`
	TSS              *float64                `json:"tss,omitempty"`
	Description      string                  `json:"description,omitempty"`
	Segments         []domain.WorkoutSegment `json:"segments,omitempty"`
	LibraryWorkoutID string                  `json:"libraryWorkoutId,omitempty"`
	Source           string                  `json:"source"`
	Modified         bool                    `json:"modified"`
}

// Schedule maps "YYYY-MM-DD" dates to the ordered workouts resolved on
// that date.
type Schedule map[string][]EffectiveWorkout

// WorkoutAt returns the resolved workout with the given key, if any.
func (s Schedule) WorkoutAt(key string) *EffectiveWorkout {
	date := KeyDate(key)
	for i := range s[date] {
		if s[date][i].Key == key {
			return &s[date][i]
		}
	}
	return nil
}

// --- Override normalization ---

// overrideOp is the tagged-variant kind for a single override key. The
// persisted layer encodes moves, copies and deletions as separate maps
// with overlapping key spaces; normalization collapses them so "moved AND
// deleted" becomes one explicit state (deletion wins).
type overrideOp int

const (
	opMoved overrideOp = iota
	opCopied
	opLibrary
	opDeleted
)

type override struct {
	op   overrideOp
	move domain.MoveRecord
	cp   domain.CopyRecord
}

// normalize folds the three persisted maps/sets into a single collection
// keyed by target position. A nil layer normalizes to empty.
func normalize(layer *domain.OverrideLayer) map[string]override {
	out := make(map[string]override)
	if layer == nil {
		return out
	}
	for key, rec := range layer.Moves {
		out[key] = override{op: opMoved, move: rec}
	}
	for key, rec := range layer.Copies {
		if rec.IsLibrary() {
			out[key] = override{op: opLibrary, cp: rec}
		} else {
			out[key] = override{op: opCopied, cp: rec}
		}
	}
	for _, key := range layer.Deleted {
		out[key] = override{op: opDeleted}
	}
	return out
}

// --- Resolution ---

type baseSlot struct {
	workout *domain.PlanWorkout
	date    string
	index   int
}

// Resolve derives the effective schedule for a plan's weeks, override
// layer and start date. startDate is the calendar date of the plan's
// first Monday; week N day D resolves to startDate + (N-1)*7 + D.
func Resolve(weeks []domain.PlanWeek, overrides *domain.OverrideLayer, startDate time.Time) Schedule {
	entries := normalize(overrides)

	// Index every base workout by its computed key and stable id.
	byKey := make(map[string]baseSlot)
	byID := make(map[string]baseSlot)
	for wi := range weeks {
		week := &weeks[wi]
		for _, day := range domain.WeekdayNames {
			offset, _ := domain.WeekdayOffset(day)
			date := startDate.AddDate(0, 0, (week.Number-1)*7+offset).Format(DateLayout)
			workouts := week.Workouts[day]
			for i := range workouts {
				slot := baseSlot{workout: &workouts[i], date: date, index: i}
				byKey[FormatKey(date, i)] = slot
				if !workouts[i].ID.IsZero() {
					byID[workouts[i].ID.Hex()] = slot
				}
			}
		}
	}

	// Slots vacated by a move must not also resolve at their original
	// position. This walks the raw move map rather than the normalized
	// entries: a move whose target key was later deleted still keeps its
	// original slot vacated.
	movedFromKeys := make(map[string]bool)
	movedFromIDs := make(map[string]bool)
	var moves map[string]domain.MoveRecord
	if overrides != nil {
		moves = overrides.Moves
	}
	for _, rec := range moves {
		if rec.OriginalWorkoutID != "" {
			movedFromIDs[rec.OriginalWorkoutID] = true
		}
		if rec.OriginalDate != "" && rec.OriginalIndex != nil {
			movedFromKeys[FormatKey(rec.OriginalDate, *rec.OriginalIndex)] = true
		}
	}

	out := make(Schedule)
	attach := func(w EffectiveWorkout) {
		out[w.Date] = append(out[w.Date], w)
	}

	// Unmodified base workouts.
	for key, slot := range byKey {
		if e, ok := entries[key]; ok && e.op == opDeleted {
			continue
		}
		if movedFromKeys[key] || (!slot.workout.ID.IsZero() && movedFromIDs[slot.workout.ID.Hex()]) {
			continue
		}
		attach(fromBase(slot.workout, slot.date, slot.index, SourcePlan, false))
	}

	// Moved and copied entries attach at their target key.
	for key, e := range entries {
		date, index, err := ParseKey(key)
		if err != nil {
			continue // malformed persisted key, drop
		}
		switch e.op {
		case opMoved:
			slot, ok := lookupOriginal(e.move, byKey, byID)
			if !ok {
				continue // dangling move, original no longer in the plan
			}
			attach(fromBase(slot.workout, date, index, SourceMoved, true))
		case opCopied:
			src, ok := byKey[sourceKey(e.cp)]
			if !ok {
				continue // dangling copy
			}
			w := fromBase(src.workout, date, index, SourceCopied, false)
			w.WorkoutID = "" // fresh identity: the copy is addressed by its key
			attach(w)
		case opLibrary:
			attach(fromSnapshot(e.cp, date, index))
		}
	}

	for date := range out {
		day := out[date]
		sort.SliceStable(day, func(i, j int) bool { return day[i].Index < day[j].Index })
	}
	return out
}

func lookupOriginal(rec domain.MoveRecord, byKey, byID map[string]baseSlot) (baseSlot, bool) {
	if rec.OriginalWorkoutID != "" {
		slot, ok := byID[rec.OriginalWorkoutID]
		if ok {
			return slot, true
		}
	}
	if rec.OriginalDate != "" && rec.OriginalIndex != nil {
		slot, ok := byKey[FormatKey(rec.OriginalDate, *rec.OriginalIndex)]
		return slot, ok
	}
	return baseSlot{}, false
}

func sourceKey(rec domain.CopyRecord) string {
	idx := 0
	if rec.SourceIndex != nil {
		idx = *rec.SourceIndex
	}
	return FormatKey(rec.SourceDate, idx)
}

func fromBase(w *domain.PlanWorkout, date string, index int, source string, modified bool) EffectiveWorkout {
	return EffectiveWorkout{
		Key:         FormatKey(date, index),
		Date:        date,
		Index:       index,
		WorkoutID:   w.ID.Hex(),
		Name:        w.Name,
		Category:    w.Category,
		TSS:         w.TSS,
		Description: w.Description,
		Segments:    w.Segments,
		Source:      source,
		Modified:    modified,
	}
}

func fromSnapshot(rec domain.CopyRecord, date string, index int) EffectiveWorkout {
	w := EffectiveWorkout{
		Key:              FormatKey(date, index),
		Date:             date,
		Index:            index,
		LibraryWorkoutID: rec.LibraryWorkoutID(),
		Source:           SourceLibrary,
	}
	snap := rec.LibraryWorkout
	if snap == nil {
		// Snapshot lost; resolution still must not fail.
		tss := PlaceholderTSS
		w.Name = PlaceholderName
		w.Category = PlaceholderCategory
		w.TSS = &tss
		return w
	}
	tss := snap.TSS
	w.Name = snap.Name
	w.Category = snap.Type
	w.TSS = &tss
	w.Description = snap.Description
	w.Segments = snap.Segments
	return w
}

// MigrateLegacyOverrides rewrites move records that address their
// original workout by date+index into stable-id addressing, using the
// plan's current weeks. Returns the migrated layer and whether anything
// changed; the input layer is not mutated. Records whose original slot no
// longer resolves are left as-is (the resolver drops them anyway).
func MigrateLegacyOverrides(weeks []domain.PlanWeek, overrides *domain.OverrideLayer, startDate time.Time) (*domain.OverrideLayer, bool) {
	if overrides == nil || len(overrides.Moves) == 0 {
		return overrides, false
	}

	byKey := make(map[string]*domain.PlanWorkout)
	for wi := range weeks {
		week := &weeks[wi]
		for _, day := range domain.WeekdayNames {
			offset, _ := domain.WeekdayOffset(day)
			date := startDate.AddDate(0, 0, (week.Number-1)*7+offset).Format(DateLayout)
			workouts := week.Workouts[day]
			for i := range workouts {
				byKey[FormatKey(date, i)] = &workouts[i]
			}
		}
	}

	changed := false
	migrated := *overrides
	migrated.Moves = make(map[string]domain.MoveRecord, len(overrides.Moves))
	for key, rec := range overrides.Moves {
		if rec.OriginalWorkoutID == "" && rec.OriginalDate != "" && rec.OriginalIndex != nil {
			if w, ok := byKey[FormatKey(rec.OriginalDate, *rec.OriginalIndex)]; ok && !w.ID.IsZero() {
				rec.OriginalWorkoutID = w.ID.Hex()
				changed = true
			}
		}
		migrated.Moves[key] = rec
	}
	if !changed {
		return overrides, false
	}
	return &migrated, true
}
