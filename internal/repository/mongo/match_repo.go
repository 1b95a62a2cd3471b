package mongo

import (
	"context"
	"errors"
	"time"

	"veloplan/training-app/internal/domain"
	"veloplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const matchCollectionName = "workout_matches"

// mongoMatchRepository implements repository.MatchRepository
type mongoMatchRepository struct {
	collection *mongo.Collection
}

// NewMongoMatchRepository creates a new WorkoutMatch repository.
func NewMongoMatchRepository(db *mongo.Database) repository.MatchRepository {
	return &mongoMatchRepository{
		collection: db.Collection(matchCollectionName),
	}
}

// Create inserts a new match record.
func (r *mongoMatchRepository) Create(ctx context.Context, match *domain.WorkoutMatch) (primitive.ObjectID, error) {
	if match.ActivityID == primitive.NilObjectID || match.AthleteID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("match requires activityId and athleteId")
	}
	if match.PlanInstanceID == nil && match.ManualWorkoutID == nil {
		return primitive.NilObjectID, errors.New("match requires a plan or manual workout reference")
	}
	match.ID = primitive.NewObjectID()
	match.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, match)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted match ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single match by its ID.
func (r *mongoMatchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutMatch, error) {
	var match domain.WorkoutMatch
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// GetByPlanWorkout finds the match for a plan workout addressed by stable
// id and/or position key. Records were written under either addressing
// scheme over time, so both are checked.
func (r *mongoMatchRepository) GetByPlanWorkout(ctx context.Context, planID primitive.ObjectID, workoutID, workoutKey string) (*domain.WorkoutMatch, error) {
	var identity []bson.M
	if workoutID != "" {
		identity = append(identity, bson.M{"workoutId": workoutID})
	}
	if workoutKey != "" {
		identity = append(identity, bson.M{"workoutKey": workoutKey})
	}
	if len(identity) == 0 {
		return nil, errors.New("workout id or key is required")
	}

	filter := bson.M{"planInstanceId": planID, "$or": identity}
	var match domain.WorkoutMatch
	err := r.collection.FindOne(ctx, filter).Decode(&match)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// RepointToManual rewrites a plan-bound match to reference a manual
// workout instead, clearing the plan-side identity.
func (r *mongoMatchRepository) RepointToManual(ctx context.Context, matchID, manualWorkoutID primitive.ObjectID) error {
	filter := bson.M{"_id": matchID}
	updateDoc := bson.M{
		"$set":   bson.M{"manualWorkoutId": manualWorkoutID},
		"$unset": bson.M{"planInstanceId": "", "workoutId": "", "workoutKey": ""},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a match record.
func (r *mongoMatchRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMatchIndexes creates necessary indexes. Call during startup.
func EnsureMatchIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planInstanceId", Value: 1}, {Key: "workoutKey", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "planInstanceId", Value: 1}, {Key: "workoutId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "activityId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "manualWorkoutId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
