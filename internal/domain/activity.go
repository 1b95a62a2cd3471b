package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Riding-type activity categories. The auto-matcher treats any of these
// as category-compatible with a non-rest planned workout.
const (
	CategoryRide         = "ride"
	CategoryVirtualRide  = "virtual_ride"
	CategoryEBikeRide    = "ebike_ride"
	CategoryMountainRide = "mountain_bike_ride"
	CategoryGravelRide   = "gravel_ride"
	CategoryRest         = "rest"
)

var ridingCategories = map[string]bool{
	CategoryRide:         true,
	CategoryVirtualRide:  true,
	CategoryEBikeRide:    true,
	CategoryMountainRide: true,
	CategoryGravelRide:   true,
}

// IsRidingCategory reports whether the category is one of the enumerated
// riding types.
func IsRidingCategory(category string) bool {
	return ridingCategories[category]
}

// Activity is a recorded training session. The raw recording file, if
// any, resides in object storage under FileObjectKey; only metadata and
// the precomputed training load live here.
type Activity struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID     primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	UUID          string             `bson:"uuid" json:"uuid"` // external identity from the recording device
	Name          string             `bson:"name" json:"name"`
	Category      string             `bson:"category" json:"category"`
	Date          string             `bson:"date" json:"date"` // YYYY-MM-DD
	TSS           *float64           `bson:"tss,omitempty" json:"tss,omitempty"`
	DurationSec   int                `bson:"durationSec,omitempty" json:"durationSec,omitempty"`
	FileObjectKey string             `bson:"fileObjectKey,omitempty" json:"-"` // raw file location in object storage
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
