package domain

import (
	"strings"
	"time"
)

// LibrarySourcePrefix marks a copy record whose source is a library
// workout rather than a plan slot. The full source marker is the literal
// string "library:<libraryWorkoutId>".
const LibrarySourcePrefix = "library:"

// MoveRecord says that the workout which used to resolve at the original
// location now resolves at the record's key and no longer appears at the
// original one. Older records address the original by date+index; newer
// records carry the workout's stable ID. Both must keep resolving.
type MoveRecord struct {
	OriginalDate      string    `bson:"original_date,omitempty" json:"original_date,omitempty"`
	OriginalIndex     *int      `bson:"original_index,omitempty" json:"original_index,omitempty"`
	OriginalWorkoutID string    `bson:"original_workout_id,omitempty" json:"original_workout_id,omitempty"`
	MovedAt           time.Time `bson:"moved_at" json:"moved_at"`
}

// LibrarySnapshot is a fully denormalized copy of a library workout taken
// at insertion time, so resolution never needs to re-fetch the library.
type LibrarySnapshot struct {
	Name        string           `bson:"name" json:"name"`
	Type        string           `bson:"type" json:"type"`
	TSS         float64          `bson:"tss" json:"tss"`
	DurationMin int              `bson:"duration_min" json:"duration_min"`
	Description string           `bson:"description,omitempty" json:"description,omitempty"`
	Segments    []WorkoutSegment `bson:"segments,omitempty" json:"segments,omitempty"`
}

// CopyRecord places a duplicate of a source workout at the record's key.
// SourceDate is either a plan date or a "library:<id>" marker; in the
// library case the snapshot carries the workout body.
type CopyRecord struct {
	SourceDate     string           `bson:"source_date" json:"source_date"`
	SourceIndex    *int             `bson:"source_index,omitempty" json:"source_index,omitempty"`
	CopiedAt       time.Time        `bson:"copied_at" json:"copied_at"`
	LibraryWorkout *LibrarySnapshot `bson:"library_workout,omitempty" json:"library_workout,omitempty"`
}

// IsLibrary reports whether the copy sources from the workout library.
func (c CopyRecord) IsLibrary() bool {
	return strings.HasPrefix(c.SourceDate, LibrarySourcePrefix)
}

// LibraryWorkoutID returns the library workout id from a library source
// marker, or "" when the copy is plan-sourced.
func (c CopyRecord) LibraryWorkoutID() string {
	if !c.IsLibrary() {
		return ""
	}
	return strings.TrimPrefix(c.SourceDate, LibrarySourcePrefix)
}

// OverrideLayer is the persisted record of how an athlete has rearranged
// a plan instance relative to its immutable weeks. Keys are the stable
// string "<date>:<index>"; indices >= 100 are reserved for library
// insertions so they never collide with original-plan indices.
type OverrideLayer struct {
	Moves   map[string]MoveRecord `bson:"moves,omitempty" json:"moves,omitempty"`
	Copies  map[string]CopyRecord `bson:"copies,omitempty" json:"copies,omitempty"`
	Deleted []string              `bson:"deleted,omitempty" json:"deleted,omitempty"`
}

// IsDeleted reports whether a key is in the suppression set.
func (o *OverrideLayer) IsDeleted(key string) bool {
	for _, k := range o.Deleted {
		if k == key {
			return true
		}
	}
	return false
}

// EnsureMaps initializes nil maps so callers can assign without checking.
func (o *OverrideLayer) EnsureMaps() {
	if o.Moves == nil {
		o.Moves = make(map[string]MoveRecord)
	}
	if o.Copies == nil {
		o.Copies = make(map[string]CopyRecord)
	}
}
