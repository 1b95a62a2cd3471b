// Package builder holds the plan-authoring state machine used while a
// coach assembles a plan template, before it becomes a plan instance.
//
// Reduce is a pure transition function: it never mutates its input state
// and every transition returns a fresh value, so callers can detect
// change with a plain equality check. Undo/redo is linear: any structural
// action taken after an undo discards the redo entries.
package builder

import (
	"strconv"

	"github.com/google/uuid"
)

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 25

// DaysPerWeek placements are grouped by weekday offset, 0 = Monday.
const DaysPerWeek = 7

// Placement is one workout dropped onto a draft day.
type Placement struct {
	ID               string  `bson:"id" json:"id"`
	Name             string  `bson:"name" json:"name"`
	Category         string  `bson:"category" json:"category"`
	TSS              float64 `bson:"tss" json:"tss"`
	LibraryWorkoutID string  `bson:"libraryWorkoutId,omitempty" json:"libraryWorkoutId,omitempty"`
}

// Week is one draft week. TotalTSS is recomputed after every structural
// action as the sum of the week's placement loads.
type Week struct {
	Number   int                      `bson:"number" json:"number"`
	Phase    string                   `bson:"phase" json:"phase"`
	Notes    string                   `bson:"notes,omitempty" json:"notes,omitempty"`
	TotalTSS float64                  `bson:"totalTss" json:"totalTss"`
	Days     [DaysPerWeek][]Placement `bson:"days" json:"days"`
}

// Draft is the authored plan content: metadata plus ordered weeks.
type Draft struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Weeks       []Week `bson:"weeks" json:"weeks"`
}

// State is the full authoring state: the current draft, bounded undo and
// redo stacks of draft snapshots, and transient save/validation flags.
type State struct {
	Draft        Draft    `bson:"draft" json:"draft"`
	History      []Draft  `bson:"history,omitempty" json:"-"`
	Future       []Draft  `bson:"future,omitempty" json:"-"`
	HistoryLimit int      `bson:"historyLimit" json:"-"`
	Dirty        bool     `bson:"dirty" json:"dirty"`
	Saving       bool     `bson:"saving" json:"saving"`
	LastError    string   `bson:"lastError,omitempty" json:"lastError,omitempty"`
	Validation   []string `bson:"validation,omitempty" json:"validation,omitempty"`
}

// NewState returns an empty authoring state with the given history bound.
func NewState(historyLimit int) State {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return State{HistoryLimit: historyLimit}
}

// --- Actions ---

// Action is a draft transition request. Structural actions snapshot the
// pre-action draft for undo; bookkeeping actions do not touch history.
type Action interface{ isAction() }

type AddWeek struct{ Phase string }
type RemoveWeek struct{ Index int }
type UpdateWeekPhase struct {
	Index int
	Phase string
}
type UpdateWeekNotes struct {
	Index int
	Notes string
}
type CopyWeek struct{ Index int }
type AddWorkout struct {
	Week, Day int
	Placement Placement
}
type RemoveWorkout struct{ Week, Day, Index int }
type MoveWorkout struct {
	FromWeek, FromDay, FromIndex int
	ToWeek, ToDay, ToIndex       int
}
type ReorderWorkouts struct {
	Week, Day int
	Order     []int // new order as indices into the current list
}

type Undo struct{}
type Redo struct{}
type MarkSaving struct{}
type MarkSaved struct{}
type SaveError struct{ Err string }
type Validate struct{}
type ClearValidation struct{}
type InitPlan struct{ Draft Draft }

func (AddWeek) isAction()         {}
func (RemoveWeek) isAction()      {}
func (UpdateWeekPhase) isAction() {}
func (UpdateWeekNotes) isAction() {}
func (CopyWeek) isAction()        {}
func (AddWorkout) isAction()      {}
func (RemoveWorkout) isAction()   {}
func (MoveWorkout) isAction()     {}
func (ReorderWorkouts) isAction() {}
func (Undo) isAction()            {}
func (Redo) isAction()            {}
func (MarkSaving) isAction()      {}
func (MarkSaved) isAction()       {}
func (SaveError) isAction()       {}
func (Validate) isAction()        {}
func (ClearValidation) isAction() {}
func (InitPlan) isAction()        {}

// --- Reducer ---

// Reduce applies an action to a state and returns the next state.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case Undo:
		if len(s.History) == 0 {
			return s
		}
		next := s
		next.Future = append(cloneDrafts(s.Future), s.Draft.clone())
		next.Draft = s.History[len(s.History)-1].clone()
		next.History = cloneDrafts(s.History[:len(s.History)-1])
		next.Dirty = true
		return next

	case Redo:
		if len(s.Future) == 0 {
			return s
		}
		next := s
		next.History = append(cloneDrafts(s.History), s.Draft.clone())
		next.Draft = s.Future[len(s.Future)-1].clone()
		next.Future = cloneDrafts(s.Future[:len(s.Future)-1])
		next.Dirty = true
		return next

	case MarkSaving:
		next := s
		next.Saving = true
		next.LastError = ""
		return next

	case MarkSaved:
		next := s
		next.Saving = false
		next.Dirty = false
		next.LastError = ""
		return next

	case SaveError:
		next := s
		next.Saving = false
		next.LastError = act.Err
		return next

	case Validate:
		next := s
		next.Validation = validateDraft(s.Draft)
		return next

	case ClearValidation:
		next := s
		next.Validation = nil
		return next

	case InitPlan:
		// Loading a draft resets history entirely.
		return State{Draft: act.Draft.clone(), HistoryLimit: s.HistoryLimit}

	default:
		return reduceStructural(s, a)
	}
}

// reduceStructural handles every draft-shape action: snapshot the
// pre-action draft, discard redo entries, apply, recompute week totals.
func reduceStructural(s State, a Action) State {
	draft := s.Draft.clone()

	switch act := a.(type) {
	case AddWeek:
		draft.Weeks = append(draft.Weeks, Week{
			Number: len(draft.Weeks) + 1,
			Phase:  act.Phase,
		})

	case RemoveWeek:
		if act.Index < 0 || act.Index >= len(draft.Weeks) {
			return s
		}
		draft.Weeks = append(draft.Weeks[:act.Index], draft.Weeks[act.Index+1:]...)
		renumberWeeks(draft.Weeks)

	case UpdateWeekPhase:
		if act.Index < 0 || act.Index >= len(draft.Weeks) {
			return s
		}
		draft.Weeks[act.Index].Phase = act.Phase

	case UpdateWeekNotes:
		if act.Index < 0 || act.Index >= len(draft.Weeks) {
			return s
		}
		draft.Weeks[act.Index].Notes = act.Notes

	case CopyWeek:
		if act.Index < 0 || act.Index >= len(draft.Weeks) {
			return s
		}
		dup := draft.Weeks[act.Index].clone()
		// Deep-cloned placements receive fresh identities.
		for d := range dup.Days {
			for i := range dup.Days[d] {
				dup.Days[d][i].ID = uuid.NewString()
			}
		}
		draft.Weeks = append(draft.Weeks, dup)
		renumberWeeks(draft.Weeks)

	case AddWorkout:
		if !validDay(draft, act.Week, act.Day) {
			return s
		}
		p := act.Placement
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		draft.Weeks[act.Week].Days[act.Day] = append(draft.Weeks[act.Week].Days[act.Day], p)

	case RemoveWorkout:
		if !validDay(draft, act.Week, act.Day) {
			return s
		}
		day := draft.Weeks[act.Week].Days[act.Day]
		if act.Index < 0 || act.Index >= len(day) {
			return s
		}
		draft.Weeks[act.Week].Days[act.Day] = append(day[:act.Index], day[act.Index+1:]...)

	case MoveWorkout:
		if !validDay(draft, act.FromWeek, act.FromDay) || !validDay(draft, act.ToWeek, act.ToDay) {
			return s
		}
		from := draft.Weeks[act.FromWeek].Days[act.FromDay]
		if act.FromIndex < 0 || act.FromIndex >= len(from) {
			return s
		}
		p := from[act.FromIndex]
		draft.Weeks[act.FromWeek].Days[act.FromDay] = append(from[:act.FromIndex], from[act.FromIndex+1:]...)
		to := draft.Weeks[act.ToWeek].Days[act.ToDay]
		at := act.ToIndex
		if at < 0 || at > len(to) {
			at = len(to)
		}
		to = append(to, Placement{})
		copy(to[at+1:], to[at:])
		to[at] = p
		draft.Weeks[act.ToWeek].Days[act.ToDay] = to

	case ReorderWorkouts:
		if !validDay(draft, act.Week, act.Day) {
			return s
		}
		day := draft.Weeks[act.Week].Days[act.Day]
		if len(act.Order) != len(day) {
			return s
		}
		reordered := make([]Placement, 0, len(day))
		seen := make(map[int]bool)
		for _, i := range act.Order {
			if i < 0 || i >= len(day) || seen[i] {
				return s
			}
			seen[i] = true
			reordered = append(reordered, day[i])
		}
		draft.Weeks[act.Week].Days[act.Day] = reordered

	default:
		return s
	}

	for i := range draft.Weeks {
		draft.Weeks[i].TotalTSS = weekTotal(&draft.Weeks[i])
	}

	next := s
	next.History = pushBounded(s.History, s.Draft.clone(), s.HistoryLimit)
	next.Future = nil
	next.Draft = draft
	next.Dirty = true
	return next
}

// --- Helpers ---

func validDay(d Draft, week, day int) bool {
	return week >= 0 && week < len(d.Weeks) && day >= 0 && day < DaysPerWeek
}

func renumberWeeks(weeks []Week) {
	for i := range weeks {
		weeks[i].Number = i + 1
	}
}

func weekTotal(w *Week) float64 {
	var total float64
	for d := range w.Days {
		for _, p := range w.Days[d] {
			total += p.TSS
		}
	}
	return total
}

func pushBounded(history []Draft, snapshot Draft, limit int) []Draft {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	next := append(cloneDrafts(history), snapshot)
	if len(next) > limit {
		next = next[len(next)-limit:]
	}
	return next
}

func validateDraft(d Draft) []string {
	var problems []string
	if d.Name == "" {
		problems = append(problems, "plan name is required")
	}
	if len(d.Weeks) == 0 {
		problems = append(problems, "plan needs at least one week")
	}
	for _, w := range d.Weeks {
		if w.Phase == "" {
			problems = append(problems, "week "+strconv.Itoa(w.Number)+" has no phase")
		}
	}
	return problems
}

func (d Draft) clone() Draft {
	out := d
	out.Weeks = make([]Week, len(d.Weeks))
	for i := range d.Weeks {
		out.Weeks[i] = d.Weeks[i].clone()
	}
	return out
}

func (w Week) clone() Week {
	out := w
	for d := range w.Days {
		if w.Days[d] != nil {
			out.Days[d] = append([]Placement(nil), w.Days[d]...)
		}
	}
	return out
}

func cloneDrafts(ds []Draft) []Draft {
	out := make([]Draft, len(ds))
	for i := range ds {
		out[i] = ds[i].clone()
	}
	return out
}
